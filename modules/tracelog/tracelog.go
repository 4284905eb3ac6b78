// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tracelog wraps logrus the way modules/trace does for hugescm:
// callers get the function name and line of the log site attached
// automatically (Errorf and Warnf only), and
// Errorf both logs and returns an error in one call.
package tracelog

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

func location(skip int) (string, int) {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return "?", line
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "?", line
	}
	return fn.Name(), line
}

// Errorf logs at Error level with the caller's location and returns an
// error carrying the same message.
func Errorf(format string, a ...any) error {
	fn, line := location(2)
	msg := fmt.Sprintf(format, a...)
	logrus.WithField("at", fmt.Sprintf("%s:%d", fn, line)).Error(msg)
	return errors.New(msg)
}

// Warnf logs a warning with the caller's location. Used for conditions
// that are handled (constraint violations reduced to no-ops, response
// encoding failures) but worth surfacing for diagnosis.
func Warnf(format string, a ...any) {
	fn, line := location(2)
	logrus.WithField("at", fmt.Sprintf("%s:%d", fn, line)).Warnf(format, a...)
}

// Debugf logs at Debug level without a caller location; output stays
// silent unless the caller raised the log level. Nothing in this
// repository calls it.
func Debugf(format string, a ...any) {
	logrus.Debugf(format, a...)
}

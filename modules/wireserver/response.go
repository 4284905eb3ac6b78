// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wireserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/antgroup/hugetree/modules/tracelog"
)

const jsonMIME = "application/json"

func renderFailure(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", jsonMIME)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(&ErrorCode{Code: code, Message: message}); err != nil {
		tracelog.Warnf("wireserver: encode error response: %v", err)
	}
}

func renderFailureFormat(w http.ResponseWriter, code int, format string, a ...any) {
	renderFailure(w, code, fmt.Sprintf(format, a...))
}

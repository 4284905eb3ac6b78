// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package changeerrors defines the error kinds shared across the changeset
// engine (spec §7): a handful of sentinels for conditions with no payload,
// and typed structs with IsXxx predicates for conditions that carry one.
package changeerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedSeqNum is returned when addSequencedChange is fed a
	// commit out of sequencer order. Programming error, unrecoverable.
	ErrUnexpectedSeqNum = errors.New("edit-manager: sequenced change fed out of order")

	// ErrIncompatibleSchemaVersion is returned on summary load when the
	// format version is newer than this build understands.
	ErrIncompatibleSchemaVersion = errors.New("edit-manager: incompatible summary format version")

	// ErrNoActiveTransaction is returned by Commit/Abort when no
	// transaction is open on the edit-manager's local branch.
	ErrNoActiveTransaction = errors.New("edit-manager: no active transaction")
)

// ErrOutOfSchema indicates a change would produce a tree the schema
// collaborator rejects. The change is reported to the caller and dropped.
type ErrOutOfSchema struct {
	Reason string
}

func (e *ErrOutOfSchema) Error() string { return fmt.Sprintf("out of schema: %s", e.Reason) }

func NewErrOutOfSchema(format string, a ...any) error {
	return &ErrOutOfSchema{Reason: fmt.Sprintf(format, a...)}
}

func IsErrOutOfSchema(err error) bool {
	var e *ErrOutOfSchema
	return errors.As(err, &e)
}

// ErrMissingRefresher indicates a rebase or delta derivation needed a
// detached subtree that is neither in the forest nor in the changeset's
// refreshers map. Fatal for the commit being processed.
type ErrMissingRefresher struct {
	CAI fmt.Stringer
}

func (e *ErrMissingRefresher) Error() string {
	return fmt.Sprintf("missing refresher for %s", e.CAI)
}

func NewErrMissingRefresher(cai fmt.Stringer) error {
	return &ErrMissingRefresher{CAI: cai}
}

func IsErrMissingRefresher(err error) bool {
	var e *ErrMissingRefresher
	return errors.As(err, &e)
}

// ErrInvalidChangeset indicates malformed input, e.g. a sequence-field mark
// list whose counts don't sum to the field length. Fatal to the op.
type ErrInvalidChangeset struct {
	Reason string
}

func (e *ErrInvalidChangeset) Error() string { return fmt.Sprintf("invalid changeset: %s", e.Reason) }

func NewErrInvalidChangeset(format string, a ...any) error {
	return &ErrInvalidChangeset{Reason: fmt.Sprintf(format, a...)}
}

func IsErrInvalidChangeset(err error) bool {
	var e *ErrInvalidChangeset
	return errors.As(err, &e)
}

// ErrInvalidRange is returned by the range-map when a caller supplies a
// non-positive interval length.
type ErrInvalidRange struct {
	Start, Length int64
}

func (e *ErrInvalidRange) Error() string {
	return fmt.Sprintf("invalid range [%d, %d)", e.Start, e.Start+e.Length)
}

func NewErrInvalidRange(start, length int64) error {
	return &ErrInvalidRange{Start: start, Length: length}
}

func IsErrInvalidRange(err error) bool {
	var e *ErrInvalidRange
	return errors.As(err, &e)
}

// ConstraintViolation is not propagated to the caller as an error: per
// spec §7 a violated constraint silently reduces the offending commit to a
// no-op. The type exists so callers of rebase can distinguish "reduced to
// no-op" from "succeeded" without inventing a separate boolean everywhere.
type ConstraintViolation struct {
	Reason string
}

func (e *ConstraintViolation) Error() string { return fmt.Sprintf("constraint violation: %s", e.Reason) }

func NewConstraintViolation(format string, a ...any) error {
	return &ConstraintViolation{Reason: fmt.Sprintf(format, a...)}
}

func IsConstraintViolation(err error) bool {
	var e *ConstraintViolation
	return errors.As(err, &e)
}

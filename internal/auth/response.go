// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/wire"
)

// ErrorCode is the integer rejection reason carried on the wire. Bad username
// shape and bad password share CodeInvalidCredentials so the client cannot
// tell which check failed.
type ErrorCode int64

// Wire error codes.
const (
	CodeInvalidCredentials ErrorCode = 0
	CodeVersionMismatch    ErrorCode = 1
)

// responsePayloadIndex is the position of the single payload field in both
// response shapes.
const responsePayloadIndex uint8 = 1

// BuildError constructs an AuthenticateError message. The error code rides in
// a nested object holding one int field.
func BuildError(code ErrorCode) *wire.Object {
	inner := wire.NewObject()
	inner.Set(0, wire.IntField(int64(code)))

	msg := wire.NewObject()
	msg.SetOpcode(wire.OpcodeAuthenticateError)
	msg.Set(responsePayloadIndex, wire.ObjectField(inner))
	return msg
}

// BuildSuccess constructs an Authenticate success message carrying the
// account's privilege bitmask as a single int field.
func BuildSuccess(privileges Privilege) *wire.Object {
	msg := wire.NewObject()
	msg.SetOpcode(wire.OpcodeAuthenticate)
	msg.Set(responsePayloadIndex, wire.IntField(int64(privileges)))
	return msg
}

// WireCode maps a handshake error to the code sent to the client. Returns
// false for errors with no wire representation (store failures, malformed
// requests); those abort the handshake without a response.
func WireCode(err error) (ErrorCode, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return 0, false
	}
	switch oopsErr.Code() {
	case "AUTH_INVALID_CREDENTIALS":
		return CodeInvalidCredentials, true
	case "AUTH_VERSION_MISMATCH":
		return CodeVersionMismatch, true
	default:
		return 0, false
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package wire

import "github.com/samber/oops"

// Opcode identifies the message type carried by an Object. It is always
// stored as the int field at index 0.
type Opcode int64

// Opcodes understood by the authentication service.
const (
	OpcodeNone Opcode = iota
	OpcodeAuthenticate
	OpcodeAuthenticateError
)

// opcodeFieldIndex is the fixed position of the opcode within a message.
const opcodeFieldIndex = 0

// String returns the opcode name.
func (op Opcode) String() string {
	switch op {
	case OpcodeAuthenticate:
		return "Authenticate"
	case OpcodeAuthenticateError:
		return "AuthenticateError"
	default:
		return "None"
	}
}

// Opcode reads the message opcode from field 0.
func (o *Object) Opcode() (Opcode, error) {
	n, err := o.IntAt(opcodeFieldIndex)
	if err != nil {
		return OpcodeNone, oops.Code("WIRE_NO_OPCODE").Wrap(err)
	}
	return Opcode(n), nil
}

// SetOpcode stores the message opcode at field 0.
func (o *Object) SetOpcode(op Opcode) {
	o.Set(opcodeFieldIndex, IntField(int64(op)))
}

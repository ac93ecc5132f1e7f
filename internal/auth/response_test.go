// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegasus-emu/pegasus/internal/auth"
	"github.com/pegasus-emu/pegasus/internal/wire"
)

func TestBuildError(t *testing.T) {
	msg := auth.BuildError(auth.CodeVersionMismatch)

	op, err := msg.Opcode()
	require.NoError(t, err)
	assert.Equal(t, wire.OpcodeAuthenticateError, op)

	inner, err := msg.ObjectAt(1)
	require.NoError(t, err)
	code, err := inner.IntAt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(auth.CodeVersionMismatch), code)
}

func TestBuildSuccess(t *testing.T) {
	msg := auth.BuildSuccess(auth.PrivilegePlay | auth.PrivilegeBuild)

	op, err := msg.Opcode()
	require.NoError(t, err)
	assert.Equal(t, wire.OpcodeAuthenticate, op)

	privileges, err := msg.IntAt(1)
	require.NoError(t, err)
	assert.Equal(t, int64(auth.PrivilegePlay|auth.PrivilegeBuild), privileges)
}

func TestWireCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode auth.ErrorCode
		wantOK   bool
	}{
		{
			name:     "invalid credentials maps to 0",
			err:      oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("nope"),
			wantCode: auth.CodeInvalidCredentials,
			wantOK:   true,
		},
		{
			name:     "version mismatch maps to 1",
			err:      oops.Code("AUTH_VERSION_MISMATCH").Errorf("nope"),
			wantCode: auth.CodeVersionMismatch,
			wantOK:   true,
		},
		{
			name:   "store failure has no wire code",
			err:    oops.Code("AUTH_STORE_UNAVAILABLE").Errorf("down"),
			wantOK: false,
		},
		{
			name:   "plain error has no wire code",
			err:    errors.New("boom"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := auth.WireCode(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCode, code)
			}
		})
	}
}

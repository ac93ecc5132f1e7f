// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegasus-emu/pegasus/internal/auth"
	"github.com/pegasus-emu/pegasus/pkg/errutil"
)

func TestPrivilegeHas(t *testing.T) {
	assert.True(t, auth.PrivilegeAll.Has(auth.PrivilegeModerate))
	assert.True(t, auth.PrivilegeAll.Has(auth.PrivilegePlay|auth.PrivilegeAdmin))
	assert.False(t, auth.PrivilegePlay.Has(auth.PrivilegeBuild))
	assert.True(t, auth.PrivilegeNone.Has(auth.PrivilegeNone))
}

func TestParsePrivilege(t *testing.T) {
	tests := []struct {
		name string
		want auth.Privilege
	}{
		{"none", auth.PrivilegeNone},
		{"play", auth.PrivilegePlay},
		{"build", auth.PrivilegeBuild},
		{"moderate", auth.PrivilegeModerate},
		{"admin", auth.PrivilegeAdmin},
		{"all", auth.PrivilegeAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.ParsePrivilege(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("names are case-insensitive", func(t *testing.T) {
		got, err := auth.ParsePrivilege(" All ")
		require.NoError(t, err)
		assert.Equal(t, auth.PrivilegeAll, got)
	})

	t.Run("rejects unknown name", func(t *testing.T) {
		_, err := auth.ParsePrivilege("root")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PRIVILEGE")
	})
}

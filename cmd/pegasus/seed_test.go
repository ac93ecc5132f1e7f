// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegasus-emu/pegasus/pkg/errutil"
)

func TestParseSeedFile(t *testing.T) {
	t.Run("parses accounts", func(t *testing.T) {
		seeds, err := parseSeedFile([]byte(`
accounts:
  - username: alice
    password: hunter2
    privileges: all
  - username: bob
    password: swordfish
`))
		require.NoError(t, err)
		require.Len(t, seeds.Accounts, 2)
		assert.Equal(t, "alice", seeds.Accounts[0].Username)
		assert.Equal(t, "all", seeds.Accounts[0].Privileges)
		assert.Empty(t, seeds.Accounts[1].Privileges)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := parseSeedFile([]byte("accounts: [unclosed"))
		errutil.AssertErrorCode(t, err, "SEED_FILE_INVALID")
	})

	t.Run("rejects missing username", func(t *testing.T) {
		_, err := parseSeedFile([]byte(`
accounts:
  - password: hunter2
`))
		errutil.AssertErrorCode(t, err, "SEED_FILE_INVALID")
	})

	t.Run("rejects missing password", func(t *testing.T) {
		_, err := parseSeedFile([]byte(`
accounts:
  - username: alice
`))
		errutil.AssertErrorCode(t, err, "SEED_FILE_INVALID")
	})

	t.Run("rejects unknown privileges", func(t *testing.T) {
		_, err := parseSeedFile([]byte(`
accounts:
  - username: alice
    password: hunter2
    privileges: root
`))
		errutil.AssertErrorCode(t, err, "SEED_FILE_INVALID")
	})

	t.Run("empty document is valid", func(t *testing.T) {
		seeds, err := parseSeedFile([]byte(""))
		require.NoError(t, err)
		assert.Empty(t, seeds.Accounts)
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned by AccountStore.Create when another account
// already holds the username. The provisioner treats it as losing the
// get-or-create race and falls back to a lookup.
var ErrUsernameTaken = errors.New("username taken")

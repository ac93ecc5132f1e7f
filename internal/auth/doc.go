// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

// Package auth implements the Pegasus authentication handshake.
//
// A handshake turns one Authenticate message into either a signed-in session
// bound to a persisted account, or a structured rejection:
//
//	decode -> Validator -> Provisioner -> response -> Binder
//
// The Handler orchestrates those steps and is the only place where the
// ordering and branching live. The Validator is pure, the Provisioner owns the
// lookup-or-create step against the AccountStore, and the Binder assigns the
// per-login sequence number and flips the session to signed-in exactly once
// per successful handshake.
//
// Bad username shape and bad password deliberately share wire error code 0 so
// the client cannot tell which check failed.
package auth

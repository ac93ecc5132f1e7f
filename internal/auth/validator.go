// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// SupportedProtocolVersion is the single client version the server accepts.
const SupportedProtocolVersion = "1.0.1.14"

// MaxUsernameLength is the longest username the handshake accepts, counted
// in runes.
const MaxUsernameLength = 20

// DefaultReservedUsernames are the username patterns no one may log in with.
// "Anonymous" is the leftover of a guest-login path that never shipped; the
// literal stays forbidden.
var DefaultReservedUsernames = []string{"Anonymous"}

// Validator checks the syntactic validity of a login request. It is pure:
// no I/O, no side effects, deterministic for a given configuration.
type Validator struct {
	version  string
	reserved []glob.Glob
}

// NewValidator creates a Validator accepting the given protocol version and
// rejecting usernames that match any of the reserved patterns
// (case-sensitive globs).
func NewValidator(version string, reservedPatterns []string) (*Validator, error) {
	if version == "" {
		return nil, oops.Errorf("protocol version is required")
	}

	reserved := make([]glob.Glob, 0, len(reservedPatterns))
	for _, pattern := range reservedPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, oops.Code("AUTH_INVALID_RESERVED_PATTERN").
				With("pattern", pattern).
				Wrap(err)
		}
		reserved = append(reserved, g)
	}

	return &Validator{version: version, reserved: reserved}, nil
}

// NewDefaultValidator creates a Validator with the supported protocol version
// and the default reserved usernames.
func NewDefaultValidator() *Validator {
	v, err := NewValidator(SupportedProtocolVersion, DefaultReservedUsernames)
	if err != nil {
		// Defaults are compile-time constants; this cannot fail.
		panic(err)
	}
	return v
}

// Validate checks the request. The first failing check wins and no further
// checks run: username shape first (wire code 0), then protocol version
// (wire code 1).
func (v *Validator) Validate(req *LoginRequest) error {
	if err := v.validateUsername(req.Username); err != nil {
		return err
	}
	if req.ProtocolVersion != v.version {
		return oops.Code("AUTH_VERSION_MISMATCH").
			With("supported", v.version).
			With("got", req.ProtocolVersion).
			Errorf("unsupported protocol version")
	}
	return nil
}

func (v *Validator) validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("username cannot be empty")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_CREDENTIALS").
			With("max", MaxUsernameLength).
			Errorf("username exceeds %d characters", MaxUsernameLength)
	}
	for _, g := range v.reserved {
		if g.Match(username) {
			return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("username is reserved")
		}
	}
	return nil
}

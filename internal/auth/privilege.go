// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"strings"

	"github.com/samber/oops"
)

// Privilege is a bitmask of account capabilities carried in the success
// response.
type Privilege uint32

// PrivilegeNone grants nothing.
const PrivilegeNone Privilege = 0

// Privilege bits.
const (
	PrivilegePlay Privilege = 1 << iota
	PrivilegeBuild
	PrivilegeModerate
	PrivilegeAdmin
)

// PrivilegeAll grants every capability. It is the default for newly created
// accounts: every first-time login gets full privileges. That mirrors the
// historical server behavior and is intentional, not an oversight; override
// it via the provisioner's default privileges.
const PrivilegeAll = PrivilegePlay | PrivilegeBuild | PrivilegeModerate | PrivilegeAdmin

// Has reports whether all bits of q are set.
func (p Privilege) Has(q Privilege) bool {
	return p&q == q
}

// ParsePrivilege converts a config name to a privilege value.
func ParsePrivilege(name string) (Privilege, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return PrivilegeNone, nil
	case "play":
		return PrivilegePlay, nil
	case "build":
		return PrivilegeBuild, nil
	case "moderate":
		return PrivilegeModerate, nil
	case "admin":
		return PrivilegeAdmin, nil
	case "all":
		return PrivilegeAll, nil
	default:
		return PrivilegeNone, oops.Code("AUTH_INVALID_PRIVILEGE").
			With("name", name).
			Errorf("unknown privilege %q", name)
	}
}

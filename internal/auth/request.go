// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/wire"
)

// Login request field positions within the Authenticate message.
const (
	loginFieldUsername    uint8 = 2
	loginFieldPassword    uint8 = 3
	loginFieldCharacter   uint8 = 4
	loginFieldVersion     uint8 = 5
	loginFieldDisplayName uint8 = 6
)

// characterFieldName is the display name position within the character payload.
const characterFieldName uint8 = 0

// LoginRequest is the decoded form of one Authenticate message. It lives for
// a single handshake; the plaintext password is never persisted.
type LoginRequest struct {
	Username        string
	Password        string
	ProtocolVersion string
	DisplayName     string
	Character       *CharacterSnapshot
}

// CharacterSnapshot is the transient character state carried in the login
// request. The sequence number is assigned by the Binder on successful
// sign-in; it is zero until then.
type CharacterSnapshot struct {
	Name     string
	Sequence uint64
}

// CharacterFromObject decodes a character snapshot from the request's nested
// payload.
func CharacterFromObject(obj *wire.Object) (*CharacterSnapshot, error) {
	name, err := obj.StringAt(characterFieldName)
	if err != nil {
		return nil, oops.Code("AUTH_MALFORMED_REQUEST").
			With("field", "character name").
			Wrap(err)
	}
	return &CharacterSnapshot{Name: name}, nil
}

// ParseLoginRequest decodes the fields of an Authenticate message. A message
// missing any field, or carrying a wrong-kind field, is malformed; the
// connection handler drops such clients rather than guessing.
func ParseLoginRequest(obj *wire.Object) (*LoginRequest, error) {
	username, err := obj.StringAt(loginFieldUsername)
	if err != nil {
		return nil, oops.Code("AUTH_MALFORMED_REQUEST").With("field", "username").Wrap(err)
	}
	password, err := obj.StringAt(loginFieldPassword)
	if err != nil {
		return nil, oops.Code("AUTH_MALFORMED_REQUEST").With("field", "password").Wrap(err)
	}
	payload, err := obj.ObjectAt(loginFieldCharacter)
	if err != nil {
		return nil, oops.Code("AUTH_MALFORMED_REQUEST").With("field", "character").Wrap(err)
	}
	character, err := CharacterFromObject(payload)
	if err != nil {
		return nil, err
	}
	version, err := obj.StringAt(loginFieldVersion)
	if err != nil {
		return nil, oops.Code("AUTH_MALFORMED_REQUEST").With("field", "version").Wrap(err)
	}
	displayName, err := obj.StringAt(loginFieldDisplayName)
	if err != nil {
		return nil, oops.Code("AUTH_MALFORMED_REQUEST").With("field", "display name").Wrap(err)
	}

	return &LoginRequest{
		Username:        username,
		Password:        password,
		ProtocolVersion: version,
		DisplayName:     displayName,
		Character:       character,
	}, nil
}

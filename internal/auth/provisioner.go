// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Provisioner resolves a username/password pair to an account, creating the
// account on first contact.
type Provisioner struct {
	store             AccountStore
	hasher            PasswordHasher
	defaultPrivileges Privilege
	logger            *slog.Logger
}

// NewProvisioner creates a Provisioner with a no-op logger. New accounts are
// created with the given default privileges.
func NewProvisioner(store AccountStore, hasher PasswordHasher, defaultPrivileges Privilege) (*Provisioner, error) {
	return NewProvisionerWithLogger(store, hasher, defaultPrivileges, slog.New(slog.DiscardHandler))
}

// NewProvisionerWithLogger creates a Provisioner with the provided logger.
func NewProvisionerWithLogger(store AccountStore, hasher PasswordHasher, defaultPrivileges Privilege, logger *slog.Logger) (*Provisioner, error) {
	if store == nil {
		return nil, oops.Errorf("account store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Provisioner{
		store:             store,
		hasher:            hasher,
		defaultPrivileges: defaultPrivileges,
		logger:            logger,
	}, nil
}

// Resolve looks up the account by exact username, creating it if absent.
// For an existing account the password is verified against the stored hash;
// a mismatch fails with AUTH_INVALID_CREDENTIALS and mutates nothing. On
// success (either branch) the account's last known address is updated
// best-effort: a failed write logs a warning, the handshake continues.
//
// Two concurrent first logins for the same username race on the store's
// unique constraint: the loser gets ErrUsernameTaken, re-reads the winner's
// row, and verifies its password against it like any existing account.
func (p *Provisioner) Resolve(ctx context.Context, username, password, remoteAddr string) (*Account, error) {
	account, err := p.store.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if verifyErr := p.verify(password, account); verifyErr != nil {
			return nil, verifyErr
		}

	case errors.Is(err, ErrNotFound):
		account, err = p.create(ctx, username, password, remoteAddr)
		if err != nil {
			return nil, err
		}

	default:
		return nil, oops.Code("AUTH_STORE_UNAVAILABLE").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}

	if updateErr := p.store.UpdateAddress(ctx, account.ID, remoteAddr); updateErr != nil {
		p.logger.Warn("failed to update last known address",
			"username", account.Username,
			"error", updateErr.Error(),
		)
	} else {
		account.LastKnownAddress = remoteAddr
	}

	return account, nil
}

// create provisions a new account, falling back to lookup+verify when the
// insert loses a concurrent race.
func (p *Provisioner) create(ctx context.Context, username, password, remoteAddr string) (*Account, error) {
	hash, err := p.hasher.Hash(password)
	if err != nil {
		// An empty password is a client fault, not a provisioning fault:
		// the client gets a structured rejection and may retry.
		if errors.Is(err, ErrEmptyPassword) {
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("password cannot be empty")
		}
		return nil, oops.Code("AUTH_PROVISION_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(username, hash, remoteAddr, p.defaultPrivileges)
	if err != nil {
		return nil, oops.Code("AUTH_PROVISION_FAILED").
			With("operation", "build account").
			Wrap(err)
	}

	createErr := p.store.Create(ctx, account)
	if createErr == nil {
		p.logger.Info("account created",
			"username", account.Username,
			"privileges", uint32(account.Privileges),
		)
		return account, nil
	}

	if errors.Is(createErr, ErrUsernameTaken) {
		existing, getErr := p.store.GetByUsername(ctx, username)
		if getErr != nil {
			return nil, oops.Code("AUTH_STORE_UNAVAILABLE").
				With("operation", "re-read account after create conflict").
				With("username", username).
				Wrap(getErr)
		}
		if verifyErr := p.verify(password, existing); verifyErr != nil {
			return nil, verifyErr
		}
		return existing, nil
	}

	return nil, oops.Code("AUTH_STORE_UNAVAILABLE").
		With("operation", "create account").
		With("username", username).
		Wrap(createErr)
}

func (p *Provisioner) verify(password string, account *Account) error {
	ok, err := p.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_PROVISION_FAILED").
			With("operation", "verify password").
			With("username", account.Username).
			Wrap(err)
	}
	if !ok {
		return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/pegasus-emu/pegasus/internal/auth"
	"github.com/pegasus-emu/pegasus/internal/wire"
)

// MockAccountStore is a mock implementation of auth.AccountStore.
type MockAccountStore struct {
	mock.Mock
}

// NewMockAccountStore creates a MockAccountStore that asserts its
// expectations at test cleanup.
func NewMockAccountStore(t *testing.T) *MockAccountStore {
	m := &MockAccountStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// GetByUsername mocks auth.AccountStore.GetByUsername.
func (m *MockAccountStore) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	args := m.Called(ctx, username)
	if acct := args.Get(0); acct != nil {
		return acct.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

// Create mocks auth.AccountStore.Create.
func (m *MockAccountStore) Create(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// UpdateAddress mocks auth.AccountStore.UpdateAddress.
func (m *MockAccountStore) UpdateAddress(ctx context.Context, id ulid.ULID, remoteAddr string) error {
	args := m.Called(ctx, id, remoteAddr)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher that asserts its
// expectations at test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash mocks auth.PasswordHasher.Hash.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// Verify mocks auth.PasswordHasher.Verify.
func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockSession is a mock implementation of auth.Session.
type MockSession struct {
	mock.Mock
}

// NewMockSession creates a MockSession that asserts its expectations at test
// cleanup.
func NewMockSession(t *testing.T) *MockSession {
	m := &MockSession{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EnqueueMessage mocks auth.Session.EnqueueMessage.
func (m *MockSession) EnqueueMessage(msg *wire.Object) {
	m.Called(msg)
}

// SignIn mocks auth.Session.SignIn.
func (m *MockSession) SignIn(account *auth.Account, displayName string, character *auth.CharacterSnapshot) error {
	args := m.Called(account, displayName, character)
	return args.Error(0)
}

// RemoteAddr mocks auth.Session.RemoteAddr.
func (m *MockSession) RemoteAddr() string {
	args := m.Called()
	return args.String(0)
}

// Compile-time interface checks.
var (
	_ auth.AccountStore   = (*MockAccountStore)(nil)
	_ auth.PasswordHasher = (*MockPasswordHasher)(nil)
	_ auth.Session        = (*MockSession)(nil)
)

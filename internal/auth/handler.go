// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/wire"
)

// Handler orchestrates the authentication handshake:
//
//	decode -> validate -> provision -> respond -> bind
//
// A rejected handshake enqueues an error response and returns nil; the
// session stays unauthenticated and the client may retry. A nil-response
// failure (store unavailable, malformed message) returns a non-nil error and
// the caller is expected to drop the connection.
type Handler struct {
	validator   *Validator
	provisioner *Provisioner
	binder      *Binder
	logger      *slog.Logger
}

// NewHandler creates a Handler with a no-op logger.
func NewHandler(validator *Validator, provisioner *Provisioner, binder *Binder) (*Handler, error) {
	return NewHandlerWithLogger(validator, provisioner, binder, slog.New(slog.DiscardHandler))
}

// NewHandlerWithLogger creates a Handler with the provided logger.
func NewHandlerWithLogger(validator *Validator, provisioner *Provisioner, binder *Binder, logger *slog.Logger) (*Handler, error) {
	if validator == nil {
		return nil, oops.Errorf("validator is required")
	}
	if provisioner == nil {
		return nil, oops.Errorf("provisioner is required")
	}
	if binder == nil {
		return nil, oops.Errorf("binder is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Handler{
		validator:   validator,
		provisioner: provisioner,
		binder:      binder,
		logger:      logger,
	}, nil
}

// HandleAuthenticate processes one Authenticate message for the session.
func (h *Handler) HandleAuthenticate(ctx context.Context, session Session, msg *wire.Object) error {
	req, err := ParseLoginRequest(msg)
	if err != nil {
		return err
	}

	if err := h.validator.Validate(req); err != nil {
		return h.reject(session, err)
	}

	account, err := h.provisioner.Resolve(ctx, req.Username, req.Password, session.RemoteAddr())
	if err != nil {
		return h.reject(session, err)
	}

	h.logger.Info("account signed in",
		"username", account.Username,
		"character", req.Character.Name,
	)

	// The success response is enqueued before the bind so the client sees
	// it ahead of any post-sign-in traffic.
	session.EnqueueMessage(BuildSuccess(account.Privileges))

	return h.binder.Bind(session, account, req.DisplayName, req.Character)
}

// reject sends a structured error for failures that have a wire code and
// propagates the rest. Store failures deliberately have no wire
// representation: the connection is dropped instead of inventing an error
// code the client does not know.
func (h *Handler) reject(session Session, err error) error {
	code, ok := WireCode(err)
	if !ok {
		return err
	}

	h.logger.Debug("handshake rejected",
		"wire_code", int64(code),
		"error", err.Error(),
	)
	session.EnqueueMessage(BuildError(code))
	return nil
}

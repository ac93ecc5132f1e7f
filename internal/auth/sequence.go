// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import "sync/atomic"

// SequenceSource dispenses unique, monotonically increasing sequence numbers.
// One is consumed per successful login, shared across all sessions for the
// process lifetime. Injected rather than ambient so tests can substitute a
// deterministic stub.
type SequenceSource interface {
	// Next returns the next sequence number. Safe for concurrent use.
	Next() uint64
}

// SequenceCounter is an atomic SequenceSource starting at 1.
type SequenceCounter struct {
	n atomic.Uint64
}

// NewSequenceCounter creates a counter whose first Next returns 1.
func NewSequenceCounter() *SequenceCounter {
	return &SequenceCounter{}
}

// Next returns the next sequence number.
func (c *SequenceCounter) Next() uint64 {
	return c.n.Add(1)
}

// Compile-time interface check.
var _ SequenceSource = (*SequenceCounter)(nil)

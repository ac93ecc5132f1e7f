// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pegasus-emu/pegasus/internal/auth"
)

func TestSequenceCounter(t *testing.T) {
	t.Run("starts at one and increments", func(t *testing.T) {
		c := auth.NewSequenceCounter()
		assert.Equal(t, uint64(1), c.Next())
		assert.Equal(t, uint64(2), c.Next())
		assert.Equal(t, uint64(3), c.Next())
	})

	t.Run("concurrent draws are unique", func(t *testing.T) {
		const workers = 8
		const perWorker = 100

		c := auth.NewSequenceCounter()
		var mu sync.Mutex
		seen := make(map[uint64]struct{}, workers*perWorker)

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWorker {
					n := c.Next()
					mu.Lock()
					seen[n] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, workers*perWorker)
	})
}

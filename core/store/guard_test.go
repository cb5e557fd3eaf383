package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-portal/core"
)

func TestGuard_Do(t *testing.T) {
	var g Guard
	calls := 0

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- g.Do(func() error {
			calls++
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	assert.True(t, g.Pending())
	// double click while pending
	err := g.Do(func() error {
		calls++
		return nil
	})
	assert.Equal(t, core.ErrBusy, err)

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, g.Pending())
	assert.Equal(t, 1, calls)

	// enabled again once settled
	assert.NoError(t, g.Do(func() error { calls++; return nil }))
	assert.Equal(t, 2, calls)
}

package cart

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardRejectsOverlap(t *testing.T) {
	var g Guard

	assert.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire(), "une mutation en vol rejette les suivantes")

	g.Release()
	assert.True(t, g.TryAcquire())
	g.Release()
}

func TestGuardSingleWinnerUnderConcurrency(t *testing.T) {
	var g Guard
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactement une mutation gagne")
}

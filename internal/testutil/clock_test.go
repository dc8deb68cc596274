package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_StartsAtEpoch(t *testing.T) {
	clock := NewStepClock(time.Second)
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())
	assert.Equal(t, 2, clock.Reads())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()

	assert.Equal(t, 0, clock.Reads())
	assert.Equal(t, Epoch, clock.Now())
}

func TestStepClock_Concurrent(t *testing.T) {
	clock := NewStepClock(time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				clock.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, clock.Reads())
	assert.Equal(t, Epoch.Add(1000*time.Millisecond), clock.Now())
}

func TestFixedRunID(t *testing.T) {
	assert.Equal(t, "test-run-default", NewFixedRunID("").Generate())

	g := NewFixedRunID("sweep-1")
	assert.Equal(t, "sweep-1", g.Generate())
	assert.Equal(t, "sweep-1", g.Generate())
}

func TestRunIDSequence(t *testing.T) {
	var s RunIDSequence
	assert.Equal(t, "test-run-0001", s.Generate())
	assert.Equal(t, "test-run-0002", s.Generate())
}

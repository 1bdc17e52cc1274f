package payment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateEnforcesFreeLimit(t *testing.T) {
	g := NewGate(2)

	assert.True(t, g.Allow(1))
	g.Record(1)
	assert.Equal(t, 1, g.Remaining(1))

	assert.True(t, g.Allow(1))
	g.Record(1)
	assert.Equal(t, 0, g.Remaining(1))

	assert.False(t, g.Allow(1), "third calculation requires payment")
}

func TestGateIsolatesUsers(t *testing.T) {
	g := NewGate(1)

	g.Record(1)
	assert.False(t, g.Allow(1))
	assert.True(t, g.Allow(2), "other users keep their own quota")
}

func TestGateMarkPaidLiftsLimit(t *testing.T) {
	g := NewGate(1)

	g.Record(1)
	assert.False(t, g.Allow(1))

	g.MarkPaid(1)
	assert.True(t, g.Allow(1))
	assert.Equal(t, -1, g.Remaining(1))
}

func TestGateUnlimited(t *testing.T) {
	g := NewGate(Unlimited)

	for i := 0; i < 100; i++ {
		g.Record(42)
	}
	assert.True(t, g.Allow(42))
	assert.Equal(t, -1, g.Remaining(42))
}

func TestGateConcurrentRecords(t *testing.T) {
	g := NewGate(1000)

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			g.Record(7)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000-workers, g.Remaining(7))
}

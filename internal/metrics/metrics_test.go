package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Load())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc(AssignmentsAuto)
		}()
	}
	wg.Wait()
	r.Inc(CapacityExhausted)
	r.Add(BackgroundTaskMillis, 7)
	r.Add(BackgroundTaskMillis, 5)

	assert.Equal(t, uint64(50), r.Value(AssignmentsAuto))
	assert.Equal(t, uint64(12), r.Value(BackgroundTaskMillis))
	assert.Equal(t, []Sample{
		{Name: AssignmentsAuto, Value: 50},
		{Name: BackgroundTaskMillis, Value: 12},
		{Name: CapacityExhausted, Value: 1},
	}, r.Snapshot())
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	r.Inc(AssignmentsAuto)
	r.Add(BackgroundTaskMillis, 3)
	assert.Equal(t, uint64(0), r.Value(AssignmentsAuto))
	assert.Nil(t, r.Snapshot())
}

func TestTimer(t *testing.T) {
	tm := StartTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, tm.Duration(), time.Millisecond)
}

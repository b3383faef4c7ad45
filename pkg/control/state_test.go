package control

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(-9, Bounds{})
	require.NoError(t, err)
	assert.Equal(t, -9, s.Setpoint())

	_, err = New(0, Bounds{Enabled: true, Min: 10, Max: 0})
	assert.ErrorIs(t, err, ErrBounds)
}

func TestNew_ClampsInitial(t *testing.T) {
	s, err := New(500, Bounds{Enabled: true, Min: 0, Max: 99})
	require.NoError(t, err)
	assert.Equal(t, 99, s.Setpoint())
}

func TestAdjust_Unbounded(t *testing.T) {
	s, err := New(0, Bounds{})
	require.NoError(t, err)

	s.Adjust(10)
	s.Adjust(10)
	s.Adjust(-1)
	assert.Equal(t, 19, s.Setpoint())

	for i := 0; i < 50; i++ {
		s.Adjust(-10)
	}
	assert.Equal(t, -481, s.Setpoint())
}

func TestAdjust_SaturatesAtCellLimits(t *testing.T) {
	s, err := New(math.MaxInt32-5, Bounds{})
	require.NoError(t, err)

	s.Adjust(10)
	assert.Equal(t, math.MaxInt32, s.Setpoint())

	s, err = New(math.MinInt32+5, Bounds{})
	require.NoError(t, err)

	s.Adjust(-10)
	assert.Equal(t, math.MinInt32, s.Setpoint())
}

func TestAdjust_Bounded(t *testing.T) {
	s, err := New(95, Bounds{Enabled: true, Min: -9, Max: 99})
	require.NoError(t, err)

	s.Adjust(10)
	assert.Equal(t, 99, s.Setpoint())

	for i := 0; i < 20; i++ {
		s.Adjust(-10)
	}
	assert.Equal(t, -9, s.Setpoint())
}

func TestSamples(t *testing.T) {
	s, err := New(0, Bounds{})
	require.NoError(t, err)

	assert.False(t, s.Sample(Channel1).Valid)

	want := ResolvedSample{Celsius: 25, Ohms: 10000, Valid: true}
	prev := s.Store(Channel1, want)
	assert.False(t, prev.Valid)
	assert.Equal(t, want, s.Sample(Channel1))
	assert.False(t, s.Sample(Channel2).Valid)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Setpoint)
	assert.Equal(t, want, snap.Samples[Channel1])
}

func TestStore_ReturnsPrevious(t *testing.T) {
	s, err := New(0, Bounds{})
	require.NoError(t, err)

	open := ResolvedSample{Celsius: -30, Ohms: math.Inf(1), Clamped: true, Valid: true}
	s.Store(Channel2, open)

	prev := s.Store(Channel2, open)
	assert.Equal(t, open, prev)

	prev = s.Store(Channel2, ResolvedSample{Celsius: 22, Ohms: 11700, Valid: true})
	assert.True(t, prev.Clamped)
	assert.False(t, s.Sample(Channel2).Clamped)
	assert.False(t, s.Sample(Channel1).Valid)
}

func TestChannel_String(t *testing.T) {
	assert.Equal(t, "T1", Channel1.String())
	assert.Equal(t, "T2", Channel2.String())
}

func TestConcurrentReaders(t *testing.T) {
	s, err := New(0, Bounds{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)

	// Single writer of the setpoint, as in the tick context.
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Adjust(1)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := s.Setpoint()
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 1000)
			s.Store(Channel2, ResolvedSample{Celsius: i, Valid: true})
			_ = s.Snapshot()
		}
	}()

	wg.Wait()
	assert.Equal(t, 1000, s.Setpoint())
}

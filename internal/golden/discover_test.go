package golden

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/signal"
)

func newDevice(t *testing.T, order, taps int) *signal.Scope {
	t.Helper()
	root := signal.NewScope("dut")
	integ, err := root.AddScope(IntegratorScope)
	require.NoError(t, err)
	for i := 0; i <= order; i++ {
		_, err := integ.AddSignal(fmt.Sprintf("stage%d", i), 32, true)
		require.NoError(t, err)
	}
	comb, err := root.AddScope(CombDelayScope)
	require.NoError(t, err)
	for i := 0; i < taps; i++ {
		_, err := comb.AddSignal(fmt.Sprintf("tap%d", i), 32, true)
		require.NoError(t, err)
	}
	_, err = root.AddSignal(DecimationCounter, 8, false)
	require.NoError(t, err)
	return root
}

func TestDiscoverStructure(t *testing.T) {
	tests := []struct {
		name      string
		stages    int
		taps      int
		wantOrder int
		wantDelay int
	}{
		{name: "reference", stages: 3, taps: 3, wantOrder: 3, wantDelay: 1},
		{name: "double_delay", stages: 2, taps: 4, wantOrder: 2, wantDelay: 2},
		{name: "single_stage", stages: 1, taps: 1, wantOrder: 1, wantDelay: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, delay, err := DiscoverStructure(newDevice(t, tt.stages, tt.taps))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrder, order)
			assert.Equal(t, tt.wantDelay, delay)
		})
	}
}

func TestDiscoverStructure_Malformed(t *testing.T) {
	_, _, err := DiscoverStructure(newDevice(t, 3, 4))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, _, err = DiscoverStructure(signal.NewScope("empty"))
	assert.ErrorIs(t, err, signal.ErrNotFound)
}

// countDown plays the decimation counter of a ratio-r device fed on every
// edge, starting from start.
func countDown(counter *signal.Signal, start, r int) engine.TaskFunc {
	return func(p *engine.Proc) (any, error) {
		c := start
		for i := 0; i < 3*r; i++ {
			if err := p.Delay(10); err != nil {
				return nil, err
			}
			if c == 0 {
				c = r - 1
			} else {
				c--
			}
			p.Set(counter, int64(c))
		}
		return nil, nil
	}
}

func TestDiscoverRatio(t *testing.T) {
	tests := []struct {
		name  string
		start int
		ratio int
	}{
		{name: "already_zero", start: 0, ratio: 4},
		{name: "mid_count", start: 2, ratio: 4},
		{name: "large", start: 17, ratio: 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newDevice(t, 3, 3)
			counter, err := dev.Signal(DecimationCounter)
			require.NoError(t, err)

			s := engine.New()
			s.Start("counter", countDown(counter, tt.start, tt.ratio))
			if tt.start != 0 {
				// Move the counter to the starting point before discovery runs.
				_, err = counter.Store(counter.Encode(int64(tt.start)))
				require.NoError(t, err)
			}

			got, err := s.Run(context.Background(), "discover", func(p *engine.Proc) (any, error) {
				return DiscoverRatio(p, dev)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.ratio, got)
		})
	}
}

func TestDiscover(t *testing.T) {
	dev := newDevice(t, 2, 4)
	_, err := dev.AddSignal("sAxisTData", 1, false)
	require.NoError(t, err)
	_, err = dev.AddSignal("mAxisTData", 10, true)
	require.NoError(t, err)
	counter, err := dev.Signal(DecimationCounter)
	require.NoError(t, err)

	s := engine.New()
	s.Start("counter", countDown(counter, 0, 8))
	got, err := s.Run(context.Background(), "discover", func(p *engine.Proc) (any, error) {
		return Discover(p, dev)
	})
	require.NoError(t, err)
	assert.Equal(t, Params{Order: 2, TapDelay: 2, Ratio: 8, InputWidth: 1, OutputWidth: 10}, got)
}

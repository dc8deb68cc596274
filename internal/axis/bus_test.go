package axis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/signal"
)

func newPorts(t *testing.T, inWidth int) *signal.Scope {
	t.Helper()
	root := signal.NewScope("dut")
	for _, p := range []struct {
		name   string
		width  int
		signed bool
	}{
		{Clock, 1, false},
		{ResetN, 1, false},
		{InputData, inWidth, inWidth > 1},
		{InputValid, 1, false},
		{OutputData, 8, true},
		{OutputValid, 1, false},
		{OutputReady, 1, false},
	} {
		_, err := root.AddSignal(p.name, p.width, p.signed)
		require.NoError(t, err)
	}
	return root
}

// loopback registers the input port onto the output port on every rising
// edge, one cycle of latency, as long as reset is released.
func loopback(b *Bus) engine.TaskFunc {
	return func(p *engine.Proc) (any, error) {
		for {
			if err := p.RisingEdge(b.Clk); err != nil {
				return nil, err
			}
			if !b.ResetN.High() {
				p.Set(b.MValid, 0)
				continue
			}
			p.Set(b.MValid, b.SValid.Int())
			p.Set(b.MData, b.SData.Int())
		}
	}
}

type fixture struct {
	s   *engine.Scheduler
	bus *Bus
}

func newFixture(t *testing.T, inWidth int) *fixture {
	t.Helper()
	bus, err := Bind(newPorts(t, inWidth))
	require.NoError(t, err)

	s := engine.New(engine.WithMaxTime(10_000))
	_, err = s.StartClock(bus.Clk, 10)
	require.NoError(t, err)
	s.Start("loopback", loopback(bus))
	return &fixture{s: s, bus: bus}
}

func TestBind_MissingPort(t *testing.T) {
	root := signal.NewScope("dut")
	_, err := root.AddSignal(Clock, 1, false)
	require.NoError(t, err)

	_, err = Bind(root)
	assert.ErrorIs(t, err, signal.ErrNotFound)
	assert.Contains(t, err.Error(), ResetN)
}

func TestBind_WideControlLine(t *testing.T) {
	root := signal.NewScope("dut")
	_, err := root.AddSignal(Clock, 2, false)
	require.NoError(t, err)

	_, err = Bind(root)
	assert.ErrorIs(t, err, signal.ErrWidth)
}

func TestReset_ReleasesAfterSettleAndOneEdge(t *testing.T) {
	f := newFixture(t, 8)

	got, err := f.s.Run(context.Background(), "main", func(p *engine.Proc) (any, error) {
		if err := f.bus.Reset(p, DefaultSettle); err != nil {
			return nil, err
		}
		return p.Now(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, engine.Time(105), got)
	assert.True(t, f.bus.ResetN.High())
	assert.False(t, f.bus.SValid.High())
	assert.False(t, f.bus.MReady.High())
}

func TestCollect_LoopbackLosesOnlyInFlightSample(t *testing.T) {
	f := newFixture(t, 8)

	got, err := f.s.Run(context.Background(), "main", func(p *engine.Proc) (any, error) {
		if err := f.bus.Reset(p, DefaultSettle); err != nil {
			return nil, err
		}
		drv := p.Start("driver", f.bus.Driver([]int64{5, -6, 7, 8}, DefaultDriveOptions()))
		samples, err := f.bus.Collect(p, drv)
		if err != nil {
			return nil, err
		}
		n, err := drv.Result()
		if err != nil {
			return nil, err
		}
		return []any{samples, n}, nil
	})
	require.NoError(t, err)
	// The last value is sampled on the edge the driver finishes on; its echo
	// would appear one edge later.
	assert.Equal(t, []any{[]int64{5, -6, 7}, 4}, got)
}

func TestDriveInput_SingleBitInput(t *testing.T) {
	f := newFixture(t, 1)

	got, err := f.s.Run(context.Background(), "main", func(p *engine.Proc) (any, error) {
		if err := f.bus.Reset(p, DefaultSettle); err != nil {
			return nil, err
		}
		drv := p.Start("driver", f.bus.Driver([]int64{-3, 0, 5, 1, 2}, DefaultDriveOptions()))
		return f.bus.Collect(p, drv)
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 1, 1}, got)
}

func TestCollect_ReadyLowCapturesNothing(t *testing.T) {
	f := newFixture(t, 8)

	got, err := f.s.Run(context.Background(), "main", func(p *engine.Proc) (any, error) {
		if err := f.bus.Reset(p, DefaultSettle); err != nil {
			return nil, err
		}
		drv := p.Start("driver", f.bus.Driver([]int64{1, 2, 3}, DriveOptions{VTrue: true}))
		return f.bus.Collect(p, drv)
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollect_FinishedDriverDoesNotSuspend(t *testing.T) {
	f := newFixture(t, 8)

	got, err := f.s.Run(context.Background(), "main", func(p *engine.Proc) (any, error) {
		drv := p.Start("driver", f.bus.Driver(nil, DefaultDriveOptions()))
		if _, err := p.Join(drv); err != nil {
			return nil, err
		}
		at := p.Now()
		samples, err := f.bus.Collect(p, drv)
		if err != nil {
			return nil, err
		}
		return []any{len(samples), at, p.Now()}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{0, engine.Time(0), engine.Time(0)}, got)
}

func TestSamples_StopEarly(t *testing.T) {
	f := newFixture(t, 8)

	got, err := f.s.Run(context.Background(), "main", func(p *engine.Proc) (any, error) {
		if err := f.bus.Reset(p, DefaultSettle); err != nil {
			return nil, err
		}
		drv := p.Start("driver", f.bus.Driver([]int64{1, 2, 3, 4, 5, 6}, DefaultDriveOptions()))
		var first []int64
		for v, err := range f.bus.Samples(p, drv) {
			if err != nil {
				return nil, err
			}
			first = append(first, v)
			if len(first) == 2 {
				break
			}
		}
		return first, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
}

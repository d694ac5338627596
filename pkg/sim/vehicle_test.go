package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnvoice/pkg/route"
)

func testRoute(t *testing.T) *route.Route {
	t.Helper()
	r, err := route.Build(route.FromLegs(orb.Point{8.54, 47.37}, []route.Leg{
		{Bearing: 0, Length: 600},
		{Bearing: 90, Length: 400},
	}))
	require.NoError(t, err)
	return r
}

func TestNewVehicle_Validation(t *testing.T) {
	r := testRoute(t)

	_, err := NewVehicle(nil, []SpeedStep{{0, 10}})
	assert.ErrorIs(t, err, ErrNoRoute)

	tests := []struct {
		name    string
		profile []SpeedStep
	}{
		{"empty", nil},
		{"starts late", []SpeedStep{{100, 10}}},
		{"zero speed", []SpeedStep{{0, 10}, {300, 0}}},
		{"negative speed", []SpeedStep{{0, -5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVehicle(r, tt.profile)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestVehicle_Step(t *testing.T) {
	r := testRoute(t)
	v, err := NewVehicle(r, []SpeedStep{{500, 5}, {0, 20}})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.GetState())

	f := v.Step(time.Second)
	assert.InDelta(t, 20.0, f.Along, 1e-9)
	assert.InDelta(t, 20.0, f.SpeedMps, 1e-9)
	assert.Equal(t, time.Second, f.Elapsed)
	assert.False(t, f.Done)
	assert.Equal(t, StateDriving, v.GetState())

	// Drive to 500m, then the slower step applies
	for i := 0; i < 24; i++ {
		f = v.Step(time.Second)
	}
	assert.InDelta(t, 500.0, f.Along, 1e-9)
	f = v.Step(time.Second)
	assert.InDelta(t, 505.0, f.Along, 1e-9)
	assert.Less(t, f.SpeedMps, 20.0)
	assert.Greater(t, f.SpeedMps, 5.0)
}

func TestVehicle_Arrives(t *testing.T) {
	r := testRoute(t)
	v, err := NewVehicle(r, []SpeedStep{{0, 300}})
	require.NoError(t, err)

	var f Fix
	for i := 0; i < 10 && !f.Done; i++ {
		f = v.Step(time.Second)
	}
	require.True(t, f.Done)
	assert.Equal(t, r.Length(), f.Along)
	assert.Equal(t, r.Path()[2], f.Point)
	assert.Equal(t, StateArrived, v.GetState())

	// Further steps do not move or advance the clock
	again := v.Step(time.Second)
	assert.Equal(t, f.Along, again.Along)
	assert.Equal(t, f.Elapsed, again.Elapsed)
	assert.True(t, again.Done)
}

func TestRun(t *testing.T) {
	r := testRoute(t)

	t.Run("runs to arrival", func(t *testing.T) {
		v, err := NewVehicle(r, []SpeedStep{{0, 50}})
		require.NoError(t, err)

		var fixes []Fix
		err = Run(context.Background(), v, time.Second, false, func(_ context.Context, f Fix) error {
			fixes = append(fixes, f)
			return nil
		})
		require.NoError(t, err)
		require.NotEmpty(t, fixes)
		assert.True(t, fixes[len(fixes)-1].Done)
		for i := 1; i < len(fixes); i++ {
			assert.Greater(t, fixes[i].Along, fixes[i-1].Along)
		}
	})

	t.Run("callback error stops", func(t *testing.T) {
		v, err := NewVehicle(r, []SpeedStep{{0, 10}})
		require.NoError(t, err)

		boom := errors.New("boom")
		calls := 0
		err = Run(context.Background(), v, time.Second, false, func(context.Context, Fix) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		v, err := NewVehicle(r, []SpeedStep{{0, 1}})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = Run(ctx, v, time.Millisecond, true, func(context.Context, Fix) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)

		err = Run(ctx, v, time.Millisecond, false, func(context.Context, Fix) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid tick", func(t *testing.T) {
		v, err := NewVehicle(r, []SpeedStep{{0, 1}})
		require.NoError(t, err)
		assert.Error(t, Run(context.Background(), v, 0, false, nil))
	})
}

package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravelTime_StillAir(t *testing.T) {
	model := testModel(t)

	// orthogonal and diagonal steps cover their own length at airspeed
	assert.InDelta(t, 47.0/15.0, model.TravelTime(1, 0, 1, WindVector{}), eps)
	assert.InDelta(t, math.Sqrt2*47.0/15.0, model.TravelTime(math.Sqrt2, 1, 1, WindVector{}), eps)
	assert.Zero(t, model.TravelTime(0, 0, 0, WindVector{}))
}

func TestTravelTime_WindIsAVectorSum(t *testing.T) {
	model := testModel(t)
	east := func(wind WindVector) float64 { return model.TravelTime(1, 0, 1, wind) }

	still := east(WindVector{})
	tail := east(WindVector{East: 5})
	head := east(WindVector{East: -5})
	cross := east(WindVector{North: 5})

	assert.Less(t, tail, still, "tailwind must shorten the step")
	assert.Greater(t, head, still, "headwind must lengthen the step")
	assert.InDelta(t, 47.0/20.0, tail, eps)
	assert.InDelta(t, 47.0/10.0, head, eps)
	assert.InDelta(t, 47.0/math.Hypot(15, 5), cross, eps)
	// speed adds linearly, time does not
	assert.NotEqual(t, still-tail, head-still)
}

func TestTravelTime_RowsGrowSouth(t *testing.T) {
	model := testModel(t)
	north := WindVector{North: 5}

	// moving to a lower row index flies north, with the wind
	assert.InDelta(t, 47.0/20.0, model.TravelTime(1, -1, 0, north), eps)
	assert.InDelta(t, 47.0/10.0, model.TravelTime(1, 1, 0, north), eps)
}

func TestClimbPenalty(t *testing.T) {
	model := testModel(t)
	limit := model.MaxAltitudeChange(1)
	require.InDelta(t, 2.5*47.0/15.0, limit, eps)

	assert.Zero(t, model.ClimbPenalty(limit/2, 1))
	assert.Zero(t, model.ClimbPenalty(limit, 1), "reaching the limit exactly costs nothing extra")
	assert.InDelta(t, 10/2.5, model.ClimbPenalty(limit+10, 1), eps)
	assert.Zero(t, model.ClimbPenalty(-(limit+10), 1), "descents are free of penalty")
	assert.Zero(t, model.ClimbPenalty(-500, math.Sqrt2))
}

func TestPowerModel(t *testing.T) {
	model := testModel(t)

	hover := 4400 * math.Pow(24/36.9, 1.5)
	assert.InDelta(t, hover, model.HoverPower(), 1e-6)
	assert.InDelta(t, 1.2*hover, model.MovePower(), 1e-6)
	assert.InDelta(t, 1.3*hover, model.ClimbPower(), 1e-6)

	heavy := model
	heavy.Vehicle.Gravity = 2 * standardGravity
	assert.InDelta(t, hover*math.Pow(2, 1.5), heavy.HoverPower(), 1e-6, "weight, not mass, sets hover power")
}

func TestEnergyCost_Branches(t *testing.T) {
	model := testModel(t)
	limit := model.MaxAltitudeChange(1)
	horizontal := model.StillAirTime(1)

	level := model.EnergyCost(100, 100, 1)
	assert.InDelta(t, model.MovePower()*horizontal/3600, level, eps)

	descent := model.EnergyCost(100, 50, 1)
	assert.InDelta(t, level, descent, eps, "descents cost cruise power")

	steady := model.EnergyCost(0, limit/2, 1)
	assert.InDelta(t, model.MovePower()*1.3*horizontal/3600, steady, eps)

	atLimit := model.EnergyCost(0, limit, 1)
	assert.InDelta(t, model.ClimbPower()*limit/2.5/3600, atLimit, eps, "the limit itself uses climb power")

	steep := model.EnergyCost(100, 300, 1)
	assert.InDelta(t, model.ClimbPower()*200/2.5/3600, steep, eps)
}

func TestEnergyCost_NonNegative(t *testing.T) {
	model := testModel(t)
	for _, distance := range []float64{0, 1, math.Sqrt2} {
		for dh := -500.0; dh <= 500; dh += 0.5 {
			e := model.EnergyCost(1000, 1000+dh, distance)
			require.GreaterOrEqual(t, e, 0.0, "dh=%v distance=%v", dh, distance)
		}
	}
}

func TestStepCost_UsesSharedFormulas(t *testing.T) {
	model := testModel(t)
	grid := gridFrom(t, [][]float64{
		{0, 50},
		{0, 0},
	})

	step := model.StepCost(grid, Cell{0, 0}, Cell{0, 1}, WindVector{})
	penalty := (50 - model.MaxAltitudeChange(1)) / 2.5

	assert.InDelta(t, penalty, step.ClimbPenalty, eps)
	assert.InDelta(t, model.TravelTime(1, 0, 1, WindVector{})+penalty, step.Time, eps)
	assert.InDelta(t, model.EnergyCost(0, 50, 1), step.Energy, eps)

	total, p := model.StepTime(grid, Cell{0, 0}, Cell{0, 1}, WindVector{})
	assert.Equal(t, step.Time, total)
	assert.Equal(t, step.ClimbPenalty, p)
}

func TestMinTimePerCell_IsALowerBound(t *testing.T) {
	model := testModel(t)
	wind := WindVector{East: 3, North: -4}
	floor := model.MinTimePerCell(wind)

	for _, s := range neighborSteps {
		got := model.TravelTime(s.Distance, float64(s.DRow), float64(s.DCol), wind)
		assert.GreaterOrEqual(t, got+eps, s.Distance*floor, "step %+v", s)
	}
}

func TestNewCostModel_RejectsBadVehicles(t *testing.T) {
	cfg := testConfig()

	_, err := NewCostModel(cfg, WindVector{East: 15})
	assert.ErrorIs(t, err, ErrInvalidInput, "wind as fast as the drone")

	cfg.Vehicle.Mass = 0
	_, err = NewCostModel(cfg, WindVector{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg = testConfig()
	cfg.Terrain.MetersPerCell = -1
	_, err = NewCostModel(cfg, WindVector{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

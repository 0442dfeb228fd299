package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_AccumulatesSteps(t *testing.T) {
	model := testModel(t)
	grid := gridFrom(t, [][]float64{
		{100, 104, 150},
		{100, 100, 100},
	})
	route := Route{{1, 0}, {0, 1}, {0, 2}}

	summary, err := Summarize(grid, route, model, WindVector{})
	require.NoError(t, err)

	first := model.StepCost(grid, route[0], route[1], WindVector{})
	second := model.StepCost(grid, route[1], route[2], WindVector{})

	assert.InDelta(t, first.Time+second.Time, summary.TotalTime, eps)
	assert.InDelta(t, first.Energy+second.Energy, summary.TotalEnergy, eps)
	assert.InDelta(t, first.ClimbPenalty+second.ClimbPenalty, summary.ClimbPenaltyTime, eps)
	assert.Zero(t, first.ClimbPenalty)
	assert.Greater(t, second.ClimbPenalty, 0.0)

	assert.InDelta(t, 1.4142135623730951+1, summary.DistanceCells, eps)
	assert.InDelta(t, summary.DistanceCells*47, summary.DistanceMeters, eps)
	assert.Equal(t, []float64{100, 104, 150}, summary.Elevations)
	assert.Equal(t, []float64{0, first.Time, first.Time + second.Time}, summary.CumulativeTime)
	assert.Equal(t, []float64{0, first.Energy, first.Energy + second.Energy}, summary.CumulativeEnergy)
}

func TestSummarize_SingleCell(t *testing.T) {
	summary, err := Summarize(flatGrid(2, 2, 40), Route{{1, 1}}, testModel(t), WindVector{})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalTime)
	assert.Zero(t, summary.TotalEnergy)
	assert.Equal(t, []float64{40}, summary.Elevations)
}

func TestSummarize_MatchesSearchCost(t *testing.T) {
	model := testModel(t)
	grid := gridFrom(t, [][]float64{
		{0, 10, 40, 10},
		{5, 80, 20, 0},
		{0, 0, 30, 60},
	})
	wind := WindVector{East: -3, North: 2}

	res, err := Search(context.Background(), grid, model, Cell{2, 0}, Cell{0, 3}, wind)
	require.NoError(t, err)
	route, err := res.Route()
	require.NoError(t, err)

	summary, err := Summarize(grid, route, model, wind)
	require.NoError(t, err)
	assert.InDelta(t, res.Cost, summary.TotalTime, 1e-6)
	assert.InDelta(t, summary.TotalTime, summary.CumulativeTime[len(route)-1], eps)
}

func TestSummarize_RejectsBadRoutes(t *testing.T) {
	model := testModel(t)
	grid := flatGrid(3, 3, 0)

	_, err := Summarize(grid, nil, model, WindVector{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Summarize(grid, Route{{0, 0}, {0, 2}}, model, WindVector{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Summarize(grid, Route{{0, 0}, {0, 0}}, model, WindVector{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Summarize(grid, Route{{2, 2}, {3, 3}}, model, WindVector{})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = Summarize(grid, Route{{0, 0}, {0, 1}}, model, WindVector{North: 40})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

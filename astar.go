package main

import (
	"container/heap"
	"context"
	"fmt"
)

// Node represents a cell waiting on the A* frontier
type Node struct {
	Cell  Cell
	G     float64 // Time from start to this cell
	F     float64 // G plus the heuristic estimate to the goal
	Seq   uint64  // Push order, breaks F ties
	Index int     // Index in the heap
}

// PriorityQueue implements heap.Interface ordered by F, then by push order
type PriorityQueue []*Node

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*Node)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// SearchResult is the state left behind by one search
type SearchResult struct {
	Start, Goal  Cell
	Predecessors map[Cell]Cell
	CostSoFar    map[Cell]float64
	Cost         float64 // seconds from start to goal, valid when Found
	Expanded     int
	Found        bool
}

type searchOptions struct {
	maxExpansions int
	onImprove     func(Cell, float64)
}

// SearchOption tunes a single search
type SearchOption func(*searchOptions)

// WithMaxExpansions lets the search expand at most n cells; needing more fails with ErrSearchLimit. n <= 0 means no limit.
func WithMaxExpansions(n int) SearchOption {
	return func(o *searchOptions) { o.maxExpansions = n }
}

// WithImprovementHook calls fn every time a cell's best known cost drops
func WithImprovementHook(fn func(cell Cell, cost float64)) SearchOption {
	return func(o *searchOptions) { o.onImprove = fn }
}

// contextCheckInterval is how many expansions pass between ctx.Err() checks
const contextCheckInterval = 1024

// Search runs A* over the 8-connected grid from start to goal. Edge weights come
// from model.StepTime; the heuristic is straight-line distance scaled by the
// fastest possible time per cell, so the returned cost is optimal.
//
// When the goal cannot be reached the result is still returned, with Found false,
// alongside ErrUnreachable.
func Search(ctx context.Context, grid *ElevationGrid, model CostModel, start, goal Cell, wind WindVector, opts ...SearchOption) (*SearchResult, error) {
	if grid == nil || grid.Rows == 0 || grid.Cols == 0 {
		return nil, fmt.Errorf("%w: empty elevation grid", ErrInvalidInput)
	}
	if err := grid.checkCell("start", start); err != nil {
		return nil, err
	}
	if err := grid.checkCell("goal", goal); err != nil {
		return nil, err
	}
	if err := model.Vehicle.Validate(wind); err != nil {
		return nil, err
	}
	if !positive(model.MetersPerCell) {
		return nil, fmt.Errorf("%w: metersPerCell must be positive", ErrInvalidInput)
	}

	var options searchOptions
	for _, opt := range opts {
		opt(&options)
	}

	result := &SearchResult{
		Start:        start,
		Goal:         goal,
		Predecessors: make(map[Cell]Cell),
		CostSoFar:    map[Cell]float64{start: 0},
	}
	if start == goal {
		result.Found = true
		return result, nil
	}

	scale := model.MinTimePerCell(wind)
	heuristic := func(c Cell) float64 {
		return c.Distance(goal) * scale
	}

	openSet := &PriorityQueue{}
	heap.Init(openSet)

	var seq uint64
	startNode := &Node{Cell: start, G: 0, F: heuristic(start), Seq: seq}
	heap.Push(openSet, startNode)

	closedSet := make(map[Cell]bool)
	openSetMap := map[Cell]*Node{start: startNode}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*Node)
		delete(openSetMap, current.Cell)

		if current.Cell == goal {
			result.Cost = current.G
			result.Found = true
			return result, nil
		}

		if options.maxExpansions > 0 && result.Expanded >= options.maxExpansions {
			return result, fmt.Errorf("%w: %d cells expanded", ErrSearchLimit, result.Expanded)
		}

		closedSet[current.Cell] = true
		result.Expanded++

		if result.Expanded%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, fmt.Errorf("search cancelled after %d expansions: %w", result.Expanded, err)
			}
		}

		for _, step := range neighborSteps {
			next := Cell{Row: current.Cell.Row + step.DRow, Col: current.Cell.Col + step.DCol}
			if !grid.InBounds(next) || closedSet[next] {
				continue
			}

			edge, _ := model.StepTime(grid, current.Cell, next, wind)
			tentativeG := current.G + edge

			if known, seen := result.CostSoFar[next]; seen && tentativeG >= known {
				continue
			}

			result.CostSoFar[next] = tentativeG
			result.Predecessors[next] = current.Cell
			if options.onImprove != nil {
				options.onImprove(next, tentativeG)
			}

			seq++
			if neighbor, inOpen := openSetMap[next]; inOpen {
				neighbor.G = tentativeG
				neighbor.F = tentativeG + heuristic(next)
				neighbor.Seq = seq
				heap.Fix(openSet, neighbor.Index)
				continue
			}
			neighbor := &Node{Cell: next, G: tentativeG, F: tentativeG + heuristic(next), Seq: seq}
			heap.Push(openSet, neighbor)
			openSetMap[next] = neighbor
		}
	}

	return result, fmt.Errorf("%w: %v -> %v after %d expansions", ErrUnreachable, start, goal, result.Expanded)
}

// Route is an ordered sequence of cells from start to goal inclusive
type Route []Cell

// Reconstruct walks the predecessor map back from goal to start
func Reconstruct(predecessors map[Cell]Cell, start, goal Cell) (Route, error) {
	route := Route{goal}
	current := goal
	for current != start {
		previous, ok := predecessors[current]
		if !ok {
			return nil, fmt.Errorf("%w: no predecessor for %v on the way to %v", ErrBrokenChain, current, start)
		}
		// a chain longer than the map must contain a cycle
		if len(route) > len(predecessors) {
			return nil, fmt.Errorf("%w: cycle through %v", ErrBrokenChain, current)
		}
		route = append(route, previous)
		current = previous
	}

	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route, nil
}

// Route returns the reconstructed route of a successful search
func (r *SearchResult) Route() (Route, error) {
	if !r.Found {
		return nil, fmt.Errorf("%w: %v -> %v", ErrUnreachable, r.Start, r.Goal)
	}
	return Reconstruct(r.Predecessors, r.Start, r.Goal)
}

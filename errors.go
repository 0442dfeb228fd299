package main

import "errors"

// Sentinel errors returned by the planner core. Callers match them with errors.Is.
var (
	// ErrOutOfBounds indicates a start or goal cell outside the elevation grid.
	ErrOutOfBounds = errors.New("planner: cell outside elevation grid")
	// ErrUnreachable indicates the frontier emptied before the goal was settled.
	ErrUnreachable = errors.New("planner: goal unreachable from start")
	// ErrBrokenChain indicates a predecessor map that does not lead back to the start.
	ErrBrokenChain = errors.New("planner: predecessor chain broken")
	// ErrInvalidInput indicates non-finite coordinates, bad vehicle parameters or a degenerate grid.
	ErrInvalidInput = errors.New("planner: invalid input")
	// ErrSearchLimit indicates the search hit its expansion cap before settling the goal.
	ErrSearchLimit = errors.New("planner: search expansion limit reached")
	// ErrNoLaunchSites indicates a plan was requested without any launch site to start from.
	ErrNoLaunchSites = errors.New("planner: no launch sites available")
)

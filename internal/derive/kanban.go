package derive

import (
	"fmt"

	"freelance/internal/core"
)

// Lane is one of the four mutually exclusive kanban buckets.
type Lane string

const (
	LaneTodo       Lane = "todo"
	LaneInProgress Lane = "in-progress"
	LaneReview     Lane = "review"
	LaneCompleted  Lane = "completed"
)

func (l Lane) Valid() bool {
	switch l {
	case LaneTodo, LaneInProgress, LaneReview, LaneCompleted:
		return true
	}
	return false
}

// Board groups projects by lane for board-style display.
type Board struct {
	Todo       []core.Project `json:"todo"`
	InProgress []core.Project `json:"inProgress"`
	Review     []core.Project `json:"review"`
	Completed  []core.Project `json:"completed"`
}

// Classify maps a project's (status, progress) pair to its lane. The
// second return is false for Cancelled projects, which appear in no lane.
func Classify(p core.Project) (Lane, bool) {
	switch p.Status {
	case core.ProjectActive:
		switch {
		case p.Progress < 25:
			return LaneTodo, true
		case p.Progress < 90:
			return LaneInProgress, true
		default:
			return LaneReview, true
		}
	case core.ProjectOnHold:
		return LaneReview, true
	case core.ProjectCompleted:
		return LaneCompleted, true
	}
	return "", false
}

// Partition assigns every project to exactly one lane; Cancelled
// projects are excluded from the board entirely.
func Partition(projects []core.Project) Board {
	var b Board
	for _, p := range projects {
		lane, ok := Classify(p)
		if !ok {
			continue
		}
		switch lane {
		case LaneTodo:
			b.Todo = append(b.Todo, p)
		case LaneInProgress:
			b.InProgress = append(b.InProgress, p)
		case LaneReview:
			b.Review = append(b.Review, p)
		case LaneCompleted:
			b.Completed = append(b.Completed, p)
		}
	}
	return b
}

// LaneMove is the (status, progress) rewrite a lane drop triggers. It is
// the only mutation the engine ever requests; the update itself belongs
// to the project endpoint.
type LaneMove struct {
	Status   core.ProjectStatus `json:"status"`
	Progress int                `json:"progress"`
}

// Rewrite computes the inverse mapping for dropping a project into a
// lane. The mapping is idempotent with Classify: classifying the
// rewritten project places it back in the same lane.
func Rewrite(lane Lane, p core.Project) (LaneMove, error) {
	switch lane {
	case LaneTodo:
		return LaneMove{Status: core.ProjectActive, Progress: min(p.Progress, 24)}, nil
	case LaneInProgress:
		return LaneMove{Status: core.ProjectActive, Progress: clamp(p.Progress, 25, 89)}, nil
	case LaneReview:
		return LaneMove{Status: core.ProjectOnHold, Progress: max(p.Progress, 90)}, nil
	case LaneCompleted:
		return LaneMove{Status: core.ProjectCompleted, Progress: 100}, nil
	}
	return LaneMove{}, fmt.Errorf("unknown lane %q", lane)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package domain

import (
	"errors"
	"fmt"
)

// FatalInputError halts a run: nothing downstream can be computed.
type FatalInputError struct {
	Reason string
	Err    error
}

func (e FatalInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Err.Error())
	}
	return e.Reason
}

func (e FatalInputError) Unwrap() error {
	return e.Err
}

func NewFatalInputError(reason string, err error) error {
	return FatalInputError{Reason: reason, Err: err}
}

// InfeasibleConstraintError means no weight vector satisfies the bounds for
// the given number of assets.
type InfeasibleConstraintError struct {
	Bounds    Bounds
	NumAssets int
}

func (e InfeasibleConstraintError) Error() string {
	return fmt.Sprintf(
		"infeasible allocation bounds [%.4f, %.4f] for %d assets",
		e.Bounds.Lower,
		e.Bounds.Upper,
		e.NumAssets,
	)
}

// Hint tells the operator which knob to turn.
func (e InfeasibleConstraintError) Hint() string {
	if e.NumAssets == 0 {
		return "no assets available to allocate"
	}
	if e.Bounds.Lower*float64(e.NumAssets) > 1 {
		return fmt.Sprintf(
			"minimum allocation %.2f%% x %d assets exceeds 100%%; reduce the minimum allocation or the number of assets",
			e.Bounds.Lower*100,
			e.NumAssets,
		)
	}
	if e.Bounds.Upper*float64(e.NumAssets) < 1 {
		return fmt.Sprintf(
			"maximum allocation %.2f%% x %d assets is below 100%%; raise the maximum allocation or add assets",
			e.Bounds.Upper*100,
			e.NumAssets,
		)
	}
	return "check that 0 <= minimum allocation <= maximum allocation"
}

var ErrNoExcessReturn = errors.New("no feasible portfolio has expected return above the risk-free rate")

package history

import (
	"fmt"

	"github.com/dshills/memento/internal/engine/state"
)

// ErrNilOwner is returned by New when no originator is supplied.
// It matches state.ErrPrecondition.
var ErrNilOwner = fmt.Errorf("%w: owner is nil", state.ErrPrecondition)

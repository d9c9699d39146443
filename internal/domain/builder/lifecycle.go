package builder

import "github.com/reglet-dev/rxforge/internal/domain/document"

// State is the lifecycle state of a builder.
type State int

const (
	// StateAccumulating accepts setter calls; it is the initial state.
	StateAccumulating State = iota
	// StateBuilt is terminal; reached only through a successful Build.
	StateBuilt
)

func (s State) String() string {
	if s == StateBuilt {
		return "built"
	}
	return "accumulating"
}

// lifecycle is the two-state machine every builder embeds.
// Builders are not safe for concurrent use.
type lifecycle struct {
	kind  document.Kind
	state State
}

// mutate panics when the builder is already built.
func (l *lifecycle) mutate(op string) {
	if l.state == StateBuilt {
		panic(&UsageError{Kind: l.kind, Op: op})
	}
}

func (l *lifecycle) beginBuild() error {
	if l.state == StateBuilt {
		return &UsageError{Kind: l.kind, Op: "Build"}
	}
	return nil
}

func (l *lifecycle) finish() {
	l.state = StateBuilt
}

// State returns the current lifecycle state.
func (l *lifecycle) State() State {
	return l.state
}

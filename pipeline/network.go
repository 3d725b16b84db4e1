package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Phase names the routing network's states. The effective machine is gated
// by a single sticky flag: Done is terminal and is entered the moment
// saved-to-database appears in run state, regardless of anything else.
type Phase string

// Routing phases.
const (
	PhaseNotStarted Phase = "not_started"
	PhaseScanning   Phase = "scanning"
	PhasePersisting Phase = "persisting"
	PhaseDone       Phase = "done"
)

// Network holds the two agents and the router. One Network serves one run;
// it carries no state of its own beyond the step budget.
type Network struct {
	scanning Agent
	database Agent
	maxSteps int
	logger   *slog.Logger
}

// NewNetwork builds the routing network from the runtime.
func NewNetwork(rt *Runtime) *Network {
	maxSteps := rt.MaxSteps
	if maxSteps < 1 {
		maxSteps = 6
	}

	return &Network{
		scanning: NewScanningAgent(rt),
		database: NewDatabaseAgent(rt),
		maxSteps: maxSteps,
		logger:   rt.logger().With("system", "network"),
	}
}

// Route is the transition predicate, evaluated once per step. Once the
// saved-to-database flag is set it always returns PhaseDone; agents being
// idempotent makes extra invocations of the other phases harmless, and the
// sticky flag guarantees the run never loops forever.
func (n *Network) Route(s state.State) Phase {
	if Saved(s) {
		return PhaseDone
	}
	if _, ok := scanResult(s); ok {
		return PhasePersisting
	}
	return PhaseScanning
}

func (n *Network) agentFor(phase Phase) Agent {
	if phase == PhasePersisting {
		return n.database
	}
	return n.scanning
}

// Run executes the network until the router reaches Done or the step budget
// is exhausted. Agent invocations are strictly sequential; each step waits
// for the selected agent's tool call, including its internal retries, before
// the next routing decision.
func (n *Network) Run(ctx context.Context, s state.State) (state.State, error) {
	for step := 1; step <= n.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		phase := n.Route(s)
		if phase == PhaseDone {
			n.logger.InfoContext(ctx, "run complete", "steps", step-1)
			return s, nil
		}

		a := n.agentFor(phase)
		n.logger.InfoContext(
			ctx, "routing step",
			"step", step,
			"phase", phase,
			"agent", a.Name(),
		)

		var err error
		s, err = a.Execute(ctx, s)
		if err != nil {
			return s, fmt.Errorf("agent %q: %w", a.Name(), err)
		}
	}

	return s, fmt.Errorf("%w: step budget %d exhausted", ErrRunIncomplete, n.maxSteps)
}

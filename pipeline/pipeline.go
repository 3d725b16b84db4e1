package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Execute is the workflow entry point for one (document URL, receipt ID)
// pair. Each attempt runs the whole network against a fresh run state, so a
// failed run retries the pipeline from agent selection. On success it
// returns the persisted record id read from final run state; after the run
// retry budget is exhausted the last run error is returned to the caller.
func Execute(ctx context.Context, rt *Runtime, documentURL string, id uuid.UUID) (uuid.UUID, error) {
	if documentURL == "" {
		return uuid.Nil, ErrMissingDocumentURL
	}

	network := NewNetwork(rt)

	final, err := Do(ctx, rt.Run, func(ctx context.Context) (state.State, error) {
		return network.Run(ctx, NewRunState(documentURL, id))
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("extraction run for receipt %s: %w", id, err)
	}

	return persistedReceipt(final)
}

func persistedReceipt(s state.State) (uuid.UUID, error) {
	val, ok := s.Get(KeyReceipt)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s in final run state", KeyReceipt)
	}

	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("%s is not uuid.UUID", KeyReceipt)
	}

	return id, nil
}

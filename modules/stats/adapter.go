package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort is the view of the activity statistics used by the gateway.
type StatsPort interface {
	GetStats(ctx context.Context) (Snapshot, error)
}

// StatsAdapter implements StatsPort using the service container.
type StatsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a new StatsAdapter.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("stats: ServiceContainer is nil")
	}
	return &StatsAdapter{container: container}
}

// GetStats fetches the current snapshot.
func (a *StatsAdapter) GetStats(ctx context.Context) (Snapshot, error) {
	req := GetStatsRequest{}
	var resp Snapshot
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return Snapshot{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return resp, nil
}

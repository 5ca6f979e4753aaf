package services

import (
	"context"
	"time"

	"github.com/arzan03/wastetrack/internal/models"
	"go.uber.org/zap"
)

// StatsService serves the public statistics. Nothing is cached; each call
// aggregates the current contents of the store.
type StatsService struct {
	store WasteStore
	loc   *time.Location
	log   *zap.Logger
}

func NewStatsService(store WasteStore, loc *time.Location, log *zap.Logger) *StatsService {
	return &StatsService{store: store, loc: loc, log: log}
}

func (s *StatsService) Summary(ctx context.Context) (*models.Summary, error) {
	summary, err := s.store.Summary(ctx, s.loc.String())
	if err != nil {
		return nil, internalError(s.log, "compute summary", err)
	}
	return summary, nil
}

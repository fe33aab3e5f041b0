package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// RollupRecomputer is the rating repository surface the rollup service uses.
type RollupRecomputer interface {
	RecomputeAll(ctx context.Context) error
}

// RollupService recomputes the derived rating tables after an import.
// Recomputation is wholesale rather than incremental: the review volume is
// small enough that rebuilding from the reviews table is cheaper than
// tracking deltas.
type RollupService struct {
	ratings RollupRecomputer
	log     zerolog.Logger
}

// NewRollupService wires a rollup service.
func NewRollupService(ratings RollupRecomputer) *RollupService {
	return &RollupService{
		ratings: ratings,
		log:     logger.WithComponent("rollups"),
	}
}

// Recompute rebuilds every rollup table in one transaction.
func (s *RollupService) Recompute(ctx context.Context) error {
	start := time.Now()
	if err := s.ratings.RecomputeAll(ctx); err != nil {
		return err
	}
	s.log.Info().Dur("elapsed", time.Since(start)).Msg("rating rollups recomputed")
	return nil
}

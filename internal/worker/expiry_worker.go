package worker

import (
	"context"
	"time"

	"github.com/akadimia/academy-backend/internal/service"
	"github.com/rs/zerolog"
)

const expirySweepInterval = 30 * time.Second

// ExpiryWorker periodically finalizes test sessions whose window elapsed
// while the candidate was away. Without it an abandoned session would stay
// active until the candidate's next request.
type ExpiryWorker struct {
	exams *service.ExamService
	log   zerolog.Logger
}

func NewExpiryWorker(exams *service.ExamService, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		exams: exams,
		log:   log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start runs the sweep loop until ctx is canceled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", expirySweepInterval).Msg("ExpiryWorker started")

	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	expired, err := w.exams.ExpireOverdue(sweepCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("Expiry sweep failed")
		return
	}
	if expired > 0 {
		w.log.Info().Int("expired", expired).Msg("Finalized overdue sessions")
	}
}

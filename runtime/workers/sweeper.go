package workers

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	"log/slog"
	"time"
)

// SweeperWorker periodically evicts participants whose last heartbeat is
// older than the inactivity threshold and announces each departure.
type SweeperWorker struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	threshold    time.Duration
	interval     time.Duration
	now          func() time.Time
}

func NewSweeperWorker(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	threshold time.Duration,
	interval time.Duration,
) *SweeperWorker {
	return &SweeperWorker{
		log:          log,
		participants: participants,
		messages:     messages,
		threshold:    threshold,
		interval:     interval,
		now:          time.Now,
	}
}

// Run ticks until ctx is canceled. A failed tick is logged and the next one still runs.
func (w *SweeperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting inactivity sweeper", "threshold", w.threshold, "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs a single eviction pass and returns the evicted names.
func (w *SweeperWorker) Sweep() []string {
	now := w.now()
	evicted, err := w.participants.EvictStale(now, w.threshold)
	if err != nil {
		w.log.Error("Inactivity sweep failed", "error", err)
		return nil
	}
	if len(evicted) == 0 {
		return nil
	}

	// Every notice of a pass shares one display time
	displayTime := now.Format(domain.TimeLayout)
	for _, name := range evicted {
		notice := domain.NewStatusMessage(name, domain.LeaveNotice)
		notice.Time = displayTime
		if _, err = w.messages.Append(notice); err != nil {
			w.log.Error("Failed to append leave notice", "name", name, "error", err)
			continue
		}
		w.log.Info("Participant evicted", "name", name)
	}
	return evicted
}

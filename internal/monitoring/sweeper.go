package monitoring

import (
	"fmt"
	"time"

	"github.com/atkinsj/dumpbin/internal/models"
	"github.com/rs/zerolog/log"
)

// DumpStore is the slice of the dump service the sweeper needs.
type DumpStore interface {
	FindExpired(now time.Time) ([]models.Dump, error)
	DeleteDumpByID(id int64) error
}

// EventRecorder records audit events.
type EventRecorder interface {
	CreateEvent(eventType, level, message string, dumpPublicID *string)
}

// Sweeper periodically removes dumps whose expiration has passed.
type Sweeper struct {
	dumps    DumpStore
	events   EventRecorder
	interval time.Duration
	done     chan bool
}

// NewSweeper creates a new Sweeper sweeping at the given fixed delay.
func NewSweeper(dumps DumpStore, events EventRecorder, interval time.Duration) *Sweeper {
	return &Sweeper{
		dumps:    dumps,
		events:   events,
		interval: interval,
		done:     make(chan bool),
	}
}

// Run starts the sweep loop. The next sweep is scheduled a fixed delay
// after the previous one completes, so sweeps never overlap and are not
// wall-clock aligned.
func (s *Sweeper) Run() {
	log.Info().Dur("interval", s.interval).Msg("Starting expiration sweeper...")

	// Run once immediately on start
	s.Sweep(time.Now().UTC())

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping expiration sweeper.")
			return
		case <-timer.C:
			s.Sweep(time.Now().UTC())
			timer.Reset(s.interval)
		}
	}
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop() {
	s.done <- true
}

// Sweep removes every dump whose expiration is set and has passed at the
// given instant, and returns the number removed. A failure on one record
// is logged and does not abort the rest; a failed sweep is simply retried
// at the next interval.
func (s *Sweeper) Sweep(now time.Time) int {
	expired, err := s.dumps.FindExpired(now)
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: Failed to query expired dumps")
		return 0
	}

	if len(expired) == 0 {
		log.Info().Msg("Sweeper: No dumps to purge right now.")
		return 0
	}

	log.Info().Int("count", len(expired)).Msg("Sweeper: Purging expired dumps...")

	removed := 0
	for _, dump := range expired {
		if err := s.dumps.DeleteDumpByID(dump.ID); err != nil {
			log.Error().Err(err).Str("public_id", dump.PublicID).Msg("Sweeper: Failed to delete expired dump")
			continue
		}
		removed++
	}

	s.events.CreateEvent("sweep.purge", "info", fmt.Sprintf("Purged %d expired dumps.", removed), nil)
	log.Info().Int("removed", removed).Msg("Sweeper: Purge complete")
	return removed
}

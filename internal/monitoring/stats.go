package monitoring

import (
	"database/sql"
	"time"

	ws "github.com/atkinsj/dumpbin/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time snapshot of the service, pushed to websocket
// clients by the StatUpdater.
type Stats struct {
	CPUPercent  float64   `json:"cpuPercent"`
	MemPercent  float64   `json:"memPercent"`
	Dumps       int64     `json:"dumps"`
	Users       int64     `json:"users"`
	CollectedAt time.Time `json:"collectedAt"`
}

// StatUpdater periodically collects host and service stats and broadcasts
// them over the hub.
type StatUpdater struct {
	db       *sql.DB
	hub      *ws.Hub
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(db *sql.DB, hub *ws.Hub, interval time.Duration) *StatUpdater {
	return &StatUpdater{
		db:       db,
		hub:      hub,
		interval: interval,
		done:     make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.collectAndBroadcast()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.collectAndBroadcast()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

func (su *StatUpdater) collectAndBroadcast() {
	stats := Stats{CollectedAt: time.Now().UTC()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemPercent = vm.UsedPercent
	} else {
		log.Warn().Err(err).Msg("StatUpdater: Could not read memory usage")
	}

	if err := su.db.QueryRow("SELECT COUNT(*) FROM dumps").Scan(&stats.Dumps); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not count dumps")
	}
	if err := su.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.Users); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not count users")
	}

	msg, err := ws.NewStatsMessage(stats)
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to encode stats")
		return
	}
	su.hub.Broadcast <- msg
}

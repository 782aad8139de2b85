package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats: the provider's counters plus process uptime.
type StatsHandler struct {
	statsProvider StatsProvider
	startedAt     time.Time
	now           func() time.Time
}

// NewStatsHandler creates a new stats handler. Uptime is measured from here.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, startedAt: time.Now(), now: time.Now}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out := make(map[string]interface{})
	if h.statsProvider != nil {
		maps.Copy(out, h.statsProvider.GetStats())
	}
	out["uptimeSeconds"] = int64(h.now().Sub(h.startedAt).Seconds())
	writeJSON(w, http.StatusOK, out)
}

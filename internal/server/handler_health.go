package server

import (
	"net/http"
	goruntime "runtime"
	"time"
)

type healthResponse struct {
	Status     string     `json:"status"`
	Version    string     `json:"version"`
	GoVersion  string     `json:"go_version"`
	Uptime     string     `json:"uptime"`
	LastSweep  *time.Time `json:"last_sweep"`
	Sweeps     int64      `json:"sweeps"`
	Containers int        `json:"containers"`
}

// staleAfter is how many poll intervals may pass without a sweep before the
// supervisor reports itself unhealthy.
const staleAfter = 3

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	last, sweeps := s.source.LastSweep()

	resp := healthResponse{
		Status:     "healthy",
		Version:    Version,
		GoVersion:  goruntime.Version(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Sweeps:     sweeps,
		Containers: len(s.source.Status()),
	}
	if !last.IsZero() {
		resp.LastSweep = &last
	}

	status := http.StatusOK
	switch {
	case sweeps == 0:
		resp.Status = "starting"
	case s.pollInterval > 0 && s.now().Sub(last) > staleAfter*s.pollInterval:
		resp.Status = "stale"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, reqID, resp, nil)
}

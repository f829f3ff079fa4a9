package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/FinSummary/internal/logging"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status   string `json:"status"`
	Rows     int    `json:"rows"`
	Store    string `json:"store"`
	Sessions *int   `json:"sessions,omitempty"`
}

// sessionCounter is implemented by stores that can count their entries
// cheaply. Redis leaves it out.
type sessionCounter interface {
	Len() int
}

// handleHealth reports the dataset size and whether the session store
// answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Rows:   s.service.Dataset().Len(),
		Store:  "ok",
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health: session store unreachable", "error", err)
			resp.Status = "degraded"
			resp.Store = "unreachable"
			writeJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}
	if c, ok := s.store.(sessionCounter); ok {
		n := c.Len()
		resp.Sessions = &n
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/peereval/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MembersDependencies
	NextDependencies
	EvaluationsDependencies
	AveragesDependencies
	SnapshotDependencies
}

// Read shapes re-exported for handler signatures.
type (
	Member       = types.Member
	Assignment   = types.Assignment
	Ack          = types.Ack
	Average      = types.Average
	SnapshotInfo = types.SnapshotInfo
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	membersHandler     *MembersHandler
	nextHandler        *NextHandler
	evaluationsHandler *EvaluationsHandler
	averagesHandler    *AveragesHandler
	snapshotHandler    *SnapshotHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		membersHandler:     NewMembersHandler(deps),
		nextHandler:        NewNextHandler(deps),
		evaluationsHandler: NewEvaluationsHandler(deps),
		averagesHandler:    NewAveragesHandler(deps),
		snapshotHandler:    NewSnapshotHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/members", MetricsMiddleware(s.membersHandler.HandleGetMembers, "members"))
	mux.HandleFunc("/next", MetricsMiddleware(s.nextHandler.HandleGetNext, "next"))
	mux.HandleFunc("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("/averages", MetricsMiddleware(s.averagesHandler.HandleGetAverages, "averages"))
	mux.HandleFunc("/averages/", MetricsMiddleware(s.averagesHandler.HandleGetAverage, "average"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleGetSnapshot, "snapshot"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.snapshotHandler.HandlePostRefresh, "refresh"))
}

type errorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

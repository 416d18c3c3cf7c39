package health

import (
	"context"
	"net/http"
	"time"

	"github.com/santiagotarnoski/qrsplit/pkg/utils"
)

type Service interface {
	SessionCount(ctx context.Context) (int, error)
	RealtimeStats() (sessions int, observers int)
}

type HealthHandler struct {
	service Service
}

func New(service Service) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

type infoResponse struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Status           string `json:"status"`
	Database         string `json:"database"`
	TotalSessions    int    `json:"totalSessions"`
	TrackedSessions  int    `json:"trackedSessions"`
	ConnectedClients int    `json:"connectedClients"`
	Timestamp        string `json:"timestamp"`
}

// Info godoc
//
//	@Summary	Service banner
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	infoResponse
//	@Router		/ [get]
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, infoResponse{
		Service:   "qrsplit",
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Health godoc
//
//	@Summary		Readiness probe
//	@Description	Checks database reachability and reports realtime stats.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Failure		503	{object}	healthResponse	"Database unreachable"
//	@Router			/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	trackedSessions, connectedClients := h.service.RealtimeStats()
	response := healthResponse{
		Status:           "ok",
		Database:         "ok",
		TrackedSessions:  trackedSessions,
		ConnectedClients: connectedClients,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}

	total, err := h.service.SessionCount(r.Context())
	if err != nil {
		response.Status = "degraded"
		response.Database = "unreachable"
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	response.TotalSessions = total
	utils.RespondWithJSON(w, http.StatusOK, response)
}

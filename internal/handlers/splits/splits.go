package splits

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	"github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
	"github.com/santiagotarnoski/qrsplit/pkg/utils"
)

type Service interface {
	Snapshot(ctx context.Context, sessionID string) (*domain.SessionProjection, *splitservice.Result, error)
	CalculateSplits(ctx context.Context, sessionID string, method string) (*domain.SessionProjection, *splitservice.Result, error)
}

type SplitHandler struct {
	splitService Service
}

func New(splitService Service) *SplitHandler {
	return &SplitHandler{
		splitService: splitService,
	}
}

// GetSplits godoc
//
//	@Summary		Current proportional split
//	@Description	Recomputes the split from the latest session snapshot. Splits are null while nobody has joined.
//	@Tags			Splits
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	dto.SplitsResponseDTO
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/splits [get]
func (h *SplitHandler) GetSplits(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	projection, splits, err := h.splitService.Snapshot(r.Context(), sessionID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if projection == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.SplitsResponseDTO{
		Success: true,
		Splits:  splits,
	})
}

// CalculateSplits godoc
//
//	@Summary		Compute a split under a chosen method
//	@Description	Computes equal or proportional allocation and announces the result to the session's observers.
//	@Tags			Splits
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string							true	"Session id"
//	@Param			request		body		dto.CalculateSplitsRequestDTO	false	"Split method"
//	@Success		200			{object}	dto.SplitsResponseDTO
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/calculate-splits [post]
func (h *SplitHandler) CalculateSplits(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req dto.CalculateSplitsRequestDTO
	if r.Body != nil {
		// Body is optional, the method defaults to proportional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	method := req.Method
	if method == "" {
		method = splitservice.MethodProportional
	}

	projection, splits, err := h.splitService.CalculateSplits(r.Context(), sessionID, method)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if projection == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.SplitsResponseDTO{
		Success: true,
		Splits:  splits,
	})
}

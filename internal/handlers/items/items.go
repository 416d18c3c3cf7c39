package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	itemservice "github.com/santiagotarnoski/qrsplit/internal/service/itemservice"
	"github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
	"github.com/santiagotarnoski/qrsplit/pkg/utils"
)

type Service interface {
	Add(ctx context.Context, sessionID string, name string, amount, tax, tip float64, assignees []string) (*domain.Item, error)
	UpdateAssignees(ctx context.Context, sessionID string, itemID string, assignees []string) (*domain.Item, error)
}

// Snapshots supplies the post-mutation session view for responses.
type Snapshots interface {
	Snapshot(ctx context.Context, sessionID string) (*domain.SessionProjection, *splitservice.Result, error)
}

type ItemHandler struct {
	itemService Service
	snapshots   Snapshots
}

func New(itemService Service, snapshots Snapshots) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		snapshots:   snapshots,
	}
}

// AddItem godoc
//
//	@Summary		Add an item to the bill
//	@Description	Normalizes locale-ambiguous amounts, persists the item and bumps the session total.
//	@Tags			Items
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string					true	"Session id"
//	@Param			request		body		dto.AddItemRequestDTO	true	"Item attributes"
//	@Success		201			{object}	dto.AddItemResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid amount"
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		409			{object}	utils.Response	"Session already completed"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/items [post]
func (h *ItemHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req dto.AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Item name is required")
		return
	}

	item, err := h.itemService.Add(r.Context(), sessionID, req.Name, float64(req.Amount), float64(req.Tax), float64(req.Tip), req.Assignees)
	if err != nil {
		switch {
		case errors.Is(err, itemservice.ErrInvalidAmount):
			utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid amount: %s", req.RawAmount))
		case errors.Is(err, itemservice.ErrSessionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		case errors.Is(err, itemservice.ErrSessionCompleted):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	projection, splits, err := h.snapshots.Snapshot(r.Context(), sessionID)
	if err != nil || projection == nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.AddItemResponseDTO{
		Success: true,
		Item:    dto.NewItemDTO(item),
		Session: dto.NewSessionDTO(projection),
		Splits:  splits,
	})
}

// UpdateAssignees godoc
//
//	@Summary		Replace an item's assignees
//	@Description	An empty assignee list means the item is shared by the whole session.
//	@Tags			Items
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string						true	"Session id"
//	@Param			itemID		path		string						true	"Item id"
//	@Param			request		body		dto.UpdateAssigneesRequestDTO	true	"Assignee participant ids"
//	@Success		200			{object}	dto.UpdateAssigneesResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid request body"
//	@Failure		404			{object}	utils.Response	"Item not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/items/{itemID}/assignees [put]
func (h *ItemHandler) UpdateAssignees(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	itemID := chi.URLParam(r, "itemID")

	var req dto.UpdateAssigneesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.itemService.UpdateAssignees(r.Context(), sessionID, itemID, req.Assignees)
	if err != nil {
		if errors.Is(err, itemservice.ErrItemNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	projection, splits, err := h.snapshots.Snapshot(r.Context(), sessionID)
	if err != nil || projection == nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.UpdateAssigneesResponseDTO{
		Success: true,
		Item:    dto.NewItemDTO(item),
		Session: dto.NewSessionDTO(projection),
		Splits:  splits,
	})
}

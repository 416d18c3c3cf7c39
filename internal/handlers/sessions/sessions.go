package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	sessionservice "github.com/santiagotarnoski/qrsplit/internal/service/sessionservice"
	"github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
	"github.com/santiagotarnoski/qrsplit/pkg/utils"
)

type Service interface {
	Create(ctx context.Context, merchantID string, merchantWallet string, createdBy string) (*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.SessionProjection, *splitservice.Result, error)
	Join(ctx context.Context, sessionID string, userID string, name string, walletAddress string, addedBy string) (*domain.Participant, error)
	UpdateParticipantWallet(ctx context.Context, sessionID string, userID string, walletAddress string) (*domain.Participant, error)
	UpdateMerchantWallet(ctx context.Context, sessionID string, walletAddress string) (*domain.Session, error)
	GetPaymentStatus(ctx context.Context, sessionID string) (*sessionservice.PaymentStatus, error)
	Finalize(ctx context.Context, sessionID string) (*domain.Session, error)
}

type Realtime interface {
	ObserverCount(sessionID string) int
}

type SessionHandler struct {
	sessionService Service
	realtime       Realtime
	frontendURL    string
}

func New(sessionService Service, realtime Realtime, frontendURL string) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		realtime:       realtime,
		frontendURL:    frontendURL,
	}
}

// CreateSession godoc
//
//	@Summary		Create a bill-splitting session
//	@Description	Opens a new session for a merchant and returns the shareable join links.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateSessionRequestDTO	true	"Session attributes"
//	@Success		201		{object}	dto.CreateSessionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MerchantID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "merchant_id is required")
		return
	}

	session, err := h.sessionService.Create(r.Context(), req.MerchantID, req.MerchantWallet, req.CreatedBy)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	webLink := h.frontendURL + "/session/" + session.SessionID
	utils.RespondWithJSON(w, http.StatusCreated, dto.CreateSessionResponseDTO{
		Success:   true,
		SessionID: session.SessionID,
		Session:   dto.NewSessionDTO(&domain.SessionProjection{Session: *session}),
		QRCode:    h.frontendURL + "/join/" + session.SessionID,
		WebLink:   webLink,
	})
}

// GetSession godoc
//
//	@Summary		Get session state
//	@Description	Returns the full session projection with the current split and realtime presence info.
//	@Tags			Sessions
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	dto.GetSessionResponseDTO
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	projection, _, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSessionNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.GetSessionResponseDTO{
		SessionDTO: dto.NewSessionDTO(projection),
		Realtime: dto.RealtimeInfoDTO{
			ConnectedUsers: h.realtime.ObserverCount(sessionID),
			IsActive:       projection.Session.Status == domain.SessionActive,
		},
	})
}

// JoinSession godoc
//
//	@Summary		Join a session
//	@Description	Adds a participant; re-joining with a known user id updates the existing record instead of duplicating it.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string					true	"Session id"
//	@Param			request		body		dto.JoinSessionRequestDTO	true	"Participant attributes"
//	@Success		200			{object}	dto.JoinSessionResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid request body"
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		409			{object}	utils.Response	"Session already completed"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/join [post]
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req dto.JoinSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	addedBy := req.AddedBy
	if addedBy == "" {
		addedBy = req.UserID
	}

	participant, err := h.sessionService.Join(r.Context(), sessionID, req.UserID, req.Name, req.WalletAddress, addedBy)
	if err != nil {
		switch {
		case errors.Is(err, sessionservice.ErrSessionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		case errors.Is(err, sessionservice.ErrSessionCompleted):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	projection, splits, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.JoinSessionResponseDTO{
		Success:     true,
		Participant: dto.NewParticipantDTO(participant),
		Session:     dto.NewSessionDTO(projection),
		Splits:      splits,
	})
}

// UpdateParticipantWallet godoc
//
//	@Summary		Set a participant's wallet
//	@Description	Stores the wallet address for a participant, creating the participant when the user has not joined yet.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string							true	"Session id"
//	@Param			userID		path		string							true	"User id"
//	@Param			request		body		dto.ParticipantWalletRequestDTO	true	"Wallet address"
//	@Success		200			{object}	dto.ParticipantWalletResponseDTO
//	@Failure		400			{object}	utils.Response	"Wallet address is required"
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/participants/{userID}/wallet [put]
func (h *SessionHandler) UpdateParticipantWallet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID := chi.URLParam(r, "userID")

	var req dto.ParticipantWalletRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	participant, err := h.sessionService.UpdateParticipantWallet(r.Context(), sessionID, userID, req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, sessionservice.ErrWalletRequired):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, sessionservice.ErrSessionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.ParticipantWalletResponseDTO{
		Success:     true,
		Participant: dto.NewParticipantDTO(participant),
	})
}

// UpdateMerchantWallet godoc
//
//	@Summary		Configure the merchant wallet
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string						true	"Session id"
//	@Param			request		body		dto.MerchantWalletRequestDTO	true	"Wallet address"
//	@Success		200			{object}	dto.MerchantWalletResponseDTO
//	@Failure		400			{object}	utils.Response	"Wallet address is required"
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/merchant-wallet [put]
func (h *SessionHandler) UpdateMerchantWallet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req dto.MerchantWalletRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.sessionService.UpdateMerchantWallet(r.Context(), sessionID, req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, sessionservice.ErrWalletRequired):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, sessionservice.ErrSessionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.MerchantWalletResponseDTO{
		Success: true,
		Session: dto.NewSessionDTO(&domain.SessionProjection{Session: *session}),
	})
}

// GetPaymentStatus godoc
//
//	@Summary		Per-participant payment status
//	@Tags			Sessions
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	dto.PaymentStatusResponseDTO
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/payment-status [get]
func (h *SessionHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.sessionService.GetPaymentStatus(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSessionNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	projection, _, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := dto.PaymentStatusResponseDTO{
		SessionID:         sessionID,
		MerchantWallet:    projection.Session.MerchantWallet,
		TotalParticipants: status.TotalParticipants,
		PaidParticipants:  status.PaidCount,
		TotalAmount:       projection.Session.TotalAmount,
		IsFullyPaid:       status.AllPaid,
		Participants:      make([]dto.ParticipantPaymentDTO, 0, len(status.Participants)),
	}
	for _, pp := range status.Participants {
		view := dto.ParticipantPaymentDTO{
			ParticipantID: pp.Participant.ID,
			UserID:        pp.Participant.UserID,
			Name:          pp.Participant.Name,
			WalletAddress: pp.Participant.WalletAddress,
			HasPaid:       pp.Paid,
		}
		if pp.Payment != nil {
			view.Amount = pp.Payment.Amount
			view.TxHash = pp.Payment.TxHash
			paidAt := pp.Payment.CreatedAt
			view.PaidAt = &paidAt
			response.TotalCollected += pp.Payment.Amount
		}
		response.Participants = append(response.Participants, view)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// FinalizeSession godoc
//
//	@Summary		Finalize a session
//	@Description	Marks the session completed once every participant has a successful payment.
//	@Tags			Sessions
//	@Produce		json
//	@Param			sessionID	path		string	true	"Session id"
//	@Success		200			{object}	dto.FinalizeResponseDTO
//	@Failure		404			{object}	utils.Response	"Session not found"
//	@Failure		409			{object}	utils.Response	"Participants still owe payments"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/finalize [post]
func (h *SessionHandler) FinalizeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessionService.Finalize(r.Context(), sessionID)
	if err != nil {
		var incomplete *sessionservice.IncompletePaymentError
		switch {
		case errors.Is(err, sessionservice.ErrSessionNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Session not found")
		case errors.As(err, &incomplete):
			utils.RespondWithError(w, http.StatusConflict, incomplete.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.FinalizeResponseDTO{
		Success: true,
		Session: dto.NewSessionDTO(&domain.SessionProjection{Session: *session}),
		Message: "Session finalized",
	})
}

package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	"github.com/santiagotarnoski/qrsplit/internal/ledger"
	paymentservice "github.com/santiagotarnoski/qrsplit/internal/service/paymentservice"
	"github.com/santiagotarnoski/qrsplit/pkg/utils"
)

type Service interface {
	Pay(ctx context.Context, sessionID string, userID string, walletAddress string, amount float64) (*domain.Payment, error)
}

type PaymentHandler struct {
	paymentService Service
}

func New(paymentService Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Pay godoc
//
//	@Summary		Settle a participant's share
//	@Description	Resolves the participant by wallet or user id and pays the merchant wallet through the ledger. A participant can only pay once.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			sessionID	path		string				true	"Session id"
//	@Param			request		body		dto.PayRequestDTO	true	"Payment attributes"
//	@Success		200			{object}	dto.PayResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid amount or merchant wallet missing"
//	@Failure		404			{object}	utils.Response	"Session or participant not found"
//	@Failure		409			{object}	utils.Response	"Duplicate payment or completed session"
//	@Failure		502			{object}	utils.Response	"Ledger unavailable"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/sessions/{sessionID}/pay [post]
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req dto.PayRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" && req.WalletAddress == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "user_id or wallet_address is required")
		return
	}

	payment, err := h.paymentService.Pay(r.Context(), sessionID, req.UserID, req.WalletAddress, float64(req.Amount))
	if err != nil {
		switch {
		case errors.Is(err, paymentservice.ErrInvalidAmount),
			errors.Is(err, paymentservice.ErrMerchantWalletNotConfigured):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, paymentservice.ErrSessionNotFound),
			errors.Is(err, paymentservice.ErrParticipantNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, paymentservice.ErrSessionCompleted),
			errors.Is(err, paymentservice.ErrDuplicatePayment):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ledger.ErrUnavailable):
			utils.RespondWithError(w, http.StatusBadGateway, "Payment service unavailable")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.PayResponseDTO{
		Success:        true,
		TxHash:         payment.TxHash,
		Payment:        dto.NewPaymentDTO(payment),
		ParticipantID:  payment.ParticipantID,
		MerchantWallet: payment.ToAddress,
	})
}

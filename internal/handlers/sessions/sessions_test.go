package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	sessionservice "github.com/santiagotarnoski/qrsplit/internal/service/sessionservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*SessionHandler, *MockService, *MockRealtime) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	realtime := NewMockRealtime(ctrl)
	handler := New(service, realtime, "http://localhost:3000")
	return handler, service, realtime
}

func newRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateSession(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Session created with links",
			body: `{"merchant_id":"merchant_42","merchant_wallet":"0xABC","created_by":"user_1"}`,
			prepareMock: func() {
				service.EXPECT().Create(gomock.Any(), "merchant_42", "0xABC", "user_1").
					Return(&domain.Session{SessionID: "session_1", MerchantID: "merchant_42", Status: domain.SessionActive}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Missing merchant id",
			body:         `{"merchant_wallet":"0xABC"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Invalid body",
			body:         `{`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}

			w := httptest.NewRecorder()
			handler.CreateSession(w, newRequest(http.MethodPost, "/api/sessions", tt.body, nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var resp dto.CreateSessionResponseDTO
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "session_1", resp.SessionID)
				assert.Equal(t, "http://localhost:3000/session/session_1", resp.WebLink)
				assert.Equal(t, "http://localhost:3000/join/session_1", resp.QRCode)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	handler, service, realtime := NewMock(t)

	t.Run("Session with realtime info", func(t *testing.T) {
		service.EXPECT().Get(gomock.Any(), "session_1").Return(&domain.SessionProjection{
			Session: domain.Session{SessionID: "session_1", Status: domain.SessionActive},
		}, nil, nil)
		realtime.EXPECT().ObserverCount("session_1").Return(3)

		w := httptest.NewRecorder()
		handler.GetSession(w, newRequest(http.MethodGet, "/api/sessions/session_1", "", map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.GetSessionResponseDTO
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Realtime.ConnectedUsers)
		assert.True(t, resp.Realtime.IsActive)
	})

	t.Run("Session not found", func(t *testing.T) {
		service.EXPECT().Get(gomock.Any(), "missing").Return(nil, nil, sessionservice.ErrSessionNotFound)

		w := httptest.NewRecorder()
		handler.GetSession(w, newRequest(http.MethodGet, "/api/sessions/missing", "", map[string]string{"sessionID": "missing"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestJoinSession(t *testing.T) {
	handler, service, _ := NewMock(t)

	t.Run("Participant joins and gets the split back", func(t *testing.T) {
		service.EXPECT().Join(gomock.Any(), "session_1", "user_1", "Ana", "0xABC", "user_1").
			Return(&domain.Participant{ID: "p-1", UserID: "user_1", Name: "Ana"}, nil)
		service.EXPECT().Get(gomock.Any(), "session_1").Return(&domain.SessionProjection{
			Session: domain.Session{SessionID: "session_1", Status: domain.SessionActive, ParticipantsCount: 1},
		}, nil, nil)

		w := httptest.NewRecorder()
		handler.JoinSession(w, newRequest(http.MethodPost, "/api/sessions/session_1/join",
			`{"user_id":"user_1","name":"Ana","wallet_address":"0xABC"}`, map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.JoinSessionResponseDTO
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "p-1", resp.Participant.ID)
	})

	t.Run("Missing user id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.JoinSession(w, newRequest(http.MethodPost, "/api/sessions/session_1/join",
			`{"name":"Ana"}`, map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Completed session conflicts", func(t *testing.T) {
		service.EXPECT().Join(gomock.Any(), "session_1", "user_1", "", "", "user_1").
			Return(nil, sessionservice.ErrSessionCompleted)

		w := httptest.NewRecorder()
		handler.JoinSession(w, newRequest(http.MethodPost, "/api/sessions/session_1/join",
			`{"user_id":"user_1"}`, map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUpdateMerchantWallet(t *testing.T) {
	handler, service, _ := NewMock(t)

	t.Run("Wallet stored", func(t *testing.T) {
		service.EXPECT().UpdateMerchantWallet(gomock.Any(), "session_1", "0xABC").
			Return(&domain.Session{SessionID: "session_1", MerchantWallet: "0xabc"}, nil)

		w := httptest.NewRecorder()
		handler.UpdateMerchantWallet(w, newRequest(http.MethodPut, "/api/sessions/session_1/merchant-wallet",
			`{"walletAddress":"0xABC"}`, map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing wallet", func(t *testing.T) {
		service.EXPECT().UpdateMerchantWallet(gomock.Any(), "session_1", "").
			Return(nil, sessionservice.ErrWalletRequired)

		w := httptest.NewRecorder()
		handler.UpdateMerchantWallet(w, newRequest(http.MethodPut, "/api/sessions/session_1/merchant-wallet",
			`{}`, map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetPaymentStatus(t *testing.T) {
	handler, service, _ := NewMock(t)

	service.EXPECT().GetPaymentStatus(gomock.Any(), "session_1").Return(&sessionservice.PaymentStatus{
		TotalParticipants: 2,
		PaidCount:         1,
		Participants: []sessionservice.ParticipantPayment{
			{Participant: domain.Participant{ID: "p-1", UserID: "user_1"}, Paid: true, Payment: &domain.Payment{ID: "pay-1", Amount: 43.33, TxHash: "0xhash"}},
			{Participant: domain.Participant{ID: "p-2", UserID: "user_2"}},
		},
	}, nil)
	service.EXPECT().Get(gomock.Any(), "session_1").Return(&domain.SessionProjection{
		Session: domain.Session{SessionID: "session_1", MerchantWallet: "0xmerchant", TotalAmount: 100},
	}, nil, nil)

	w := httptest.NewRecorder()
	handler.GetPaymentStatus(w, newRequest(http.MethodGet, "/api/sessions/session_1/payment-status", "", map[string]string{"sessionID": "session_1"}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.PaymentStatusResponseDTO
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalParticipants)
	assert.Equal(t, 1, resp.PaidParticipants)
	assert.InDelta(t, 43.33, resp.TotalCollected, 0.001)
	assert.False(t, resp.IsFullyPaid)
	assert.True(t, resp.Participants[0].HasPaid)
	assert.False(t, resp.Participants[1].HasPaid)
}

func TestFinalizeSession(t *testing.T) {
	handler, service, _ := NewMock(t)

	t.Run("Finalized", func(t *testing.T) {
		service.EXPECT().Finalize(gomock.Any(), "session_1").
			Return(&domain.Session{SessionID: "session_1", Status: domain.SessionCompleted}, nil)

		w := httptest.NewRecorder()
		handler.FinalizeSession(w, newRequest(http.MethodPost, "/api/sessions/session_1/finalize", "", map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Incomplete payments", func(t *testing.T) {
		service.EXPECT().Finalize(gomock.Any(), "session_1").
			Return(nil, &sessionservice.IncompletePaymentError{Paid: 1, Total: 3})

		w := httptest.NewRecorder()
		handler.FinalizeSession(w, newRequest(http.MethodPost, "/api/sessions/session_1/finalize", "", map[string]string{"sessionID": "session_1"}))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "1 of 3")
	})
}

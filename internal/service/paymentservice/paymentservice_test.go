package paymentservice

import (
	"context"
	"errors"
	"testing"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/ledger"
	"github.com/santiagotarnoski/qrsplit/internal/sessionlock"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

const testToken = "0xtoken"

type mocks struct {
	sessionRepo     *MockSessionRepo
	participantRepo *MockParticipantRepo
	paymentRepo     *MockPaymentRepo
	broadcaster     *MockBroadcaster
}

func NewMock(t *testing.T, ldg ledger.Ledger) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		sessionRepo:     NewMockSessionRepo(ctrl),
		participantRepo: NewMockParticipantRepo(ctrl),
		paymentRepo:     NewMockPaymentRepo(ctrl),
		broadcaster:     NewMockBroadcaster(ctrl),
	}
	if ldg == nil {
		ldg = ledger.NewMock()
	}
	service := New(m.sessionRepo, m.participantRepo, m.paymentRepo, ldg, m.broadcaster, sessionlock.New(), testToken)
	return service, m
}

type failingLedger struct{}

func (failingLedger) Pay(context.Context, string, string, float64, string) (*ledger.Receipt, error) {
	return nil, ledger.ErrUnavailable
}

func TestPay(t *testing.T) {
	session := &domain.Session{SessionID: "session_1", Status: domain.SessionActive, MerchantWallet: "0xmerchant"}
	participant := &domain.Participant{ID: "p-1", UserID: "user-1", WalletAddress: "0xaaa"}

	t.Run("Successful payment recorded and broadcast", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByWalletOrUserID(gomock.Any(), "session_1", "0xaaa", "user-1").Return(participant, nil)
		m.paymentRepo.EXPECT().FindSuccessfulByParticipant(gomock.Any(), "p-1").Return(nil, nil)
		m.paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
				assert.Equal(t, domain.PaymentSuccess, p.Status)
				assert.Equal(t, "0xaaa", p.FromAddress)
				assert.Equal(t, "0xmerchant", p.ToAddress)
				assert.Equal(t, testToken, p.TokenAddress)
				assert.NotEmpty(t, p.TxHash)
				p.ID = "pay-1"
				return p, nil
			})
		m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "payment-made", gomock.Any())

		payment, err := service.Pay(context.Background(), "session_1", "user-1", "0xAAA", 43.33)

		assert.NoError(t, err)
		assert.Equal(t, "pay-1", payment.ID)
	})

	t.Run("Non-positive amount rejected", func(t *testing.T) {
		service, _ := NewMock(t, nil)

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xaaa", 0)

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Session not found", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(nil, nil)

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xaaa", 10)

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Completed session rejects payments", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").
			Return(&domain.Session{SessionID: "session_1", Status: domain.SessionCompleted, MerchantWallet: "0xmerchant"}, nil)

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xaaa", 10)

		assert.ErrorIs(t, err, ErrSessionCompleted)
	})

	t.Run("Merchant wallet not configured", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").
			Return(&domain.Session{SessionID: "session_1", Status: domain.SessionActive}, nil)

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xaaa", 10)

		assert.ErrorIs(t, err, ErrMerchantWalletNotConfigured)
	})

	t.Run("Participant not found", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByWalletOrUserID(gomock.Any(), "session_1", "0xghost", "ghost").Return(nil, nil)

		_, err := service.Pay(context.Background(), "session_1", "ghost", "0xghost", 10)

		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("Second successful payment rejected", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByWalletOrUserID(gomock.Any(), "session_1", "0xaaa", "user-1").Return(participant, nil)
		m.paymentRepo.EXPECT().FindSuccessfulByParticipant(gomock.Any(), "p-1").
			Return(&domain.Payment{ID: "pay-1", Status: domain.PaymentSuccess}, nil)

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xaaa", 10)

		assert.ErrorIs(t, err, ErrDuplicatePayment)
	})

	t.Run("Ledger failure leaves a failed record", func(t *testing.T) {
		service, m := NewMock(t, failingLedger{})

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByWalletOrUserID(gomock.Any(), "session_1", "0xaaa", "user-1").Return(participant, nil)
		m.paymentRepo.EXPECT().FindSuccessfulByParticipant(gomock.Any(), "p-1").Return(nil, nil)
		m.paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
				assert.Equal(t, domain.PaymentFailed, p.Status)
				assert.Empty(t, p.TxHash)
				return p, nil
			})

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xaaa", 10)

		assert.ErrorIs(t, err, ledger.ErrUnavailable)
	})

	t.Run("Empty wallet falls back to participant wallet", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByWalletOrUserID(gomock.Any(), "session_1", "", "user-1").Return(participant, nil)
		m.paymentRepo.EXPECT().FindSuccessfulByParticipant(gomock.Any(), "p-1").Return(nil, nil)
		m.paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
				assert.Equal(t, "0xaaa", p.FromAddress)
				return p, nil
			})
		m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "payment-made", gomock.Any())

		_, err := service.Pay(context.Background(), "session_1", "user-1", "", 10)

		assert.NoError(t, err)
	})

	t.Run("Record failure propagated", func(t *testing.T) {
		service, m := NewMock(t, nil)

		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByWalletOrUserID(gomock.Any(), "session_1", "0xaaa", "user-1").Return(participant, nil)
		m.paymentRepo.EXPECT().FindSuccessfulByParticipant(gomock.Any(), "p-1").Return(nil, nil)
		m.paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

		_, err := service.Pay(context.Background(), "session_1", "user-1", "0xAAA", 10)

		assert.EqualError(t, err, "db error")
	})
}

package sessionservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/sessionlock"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	sessionRepo     *MockSessionRepo
	participantRepo *MockParticipantRepo
	paymentRepo     *MockPaymentRepo
	broadcaster     *MockBroadcaster
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		sessionRepo:     NewMockSessionRepo(ctrl),
		participantRepo: NewMockParticipantRepo(ctrl),
		paymentRepo:     NewMockPaymentRepo(ctrl),
		broadcaster:     NewMockBroadcaster(ctrl),
	}
	service := New(m.sessionRepo, m.participantRepo, m.paymentRepo, m.broadcaster, sessionlock.New())
	return service, m
}

func TestCreate(t *testing.T) {
	service, m := NewMock(t)

	m.sessionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, session *domain.Session) (*domain.Session, error) {
			assert.True(t, strings.HasPrefix(session.SessionID, "session_"))
			assert.Equal(t, "merchant-1", session.MerchantID)
			assert.Equal(t, "0xabcdef", session.MerchantWallet)
			assert.Equal(t, domain.SessionActive, session.Status)
			return session, nil
		})
	m.broadcaster.EXPECT().Track(gomock.Any())

	session, err := service.Create(context.Background(), "merchant-1", "  0xABCDEF ", "user-1")

	assert.NoError(t, err)
	assert.NotNil(t, session)
	assert.Equal(t, "user-1", session.CreatedBy)
}

func TestCreateGeneratesUniqueSessionIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newSessionID()
		assert.True(t, strings.HasPrefix(id, "session_"))
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}

func TestGet(t *testing.T) {
	service, m := NewMock(t)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Session found",
			prepareMock: func() {
				m.broadcaster.EXPECT().Snapshot(gomock.Any(), "session_1").
					Return(&domain.SessionProjection{Session: domain.Session{SessionID: "session_1"}}, nil, nil)
			},
		},
		{
			name: "Session not found",
			prepareMock: func() {
				m.broadcaster.EXPECT().Snapshot(gomock.Any(), "session_1").Return(nil, nil, nil)
			},
			expectedError: ErrSessionNotFound,
		},
		{
			name: "Snapshot error",
			prepareMock: func() {
				m.broadcaster.EXPECT().Snapshot(gomock.Any(), "session_1").Return(nil, nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			projection, _, err := service.Get(context.Background(), "session_1")
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "session_1", projection.Session.SessionID)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	service, m := NewMock(t)

	activeSession := &domain.Session{SessionID: "session_1", Status: domain.SessionActive, CreatedBy: "creator"}

	tests := []struct {
		name          string
		userID        string
		wallet        string
		prepareMock   func()
		checkResult   func(t *testing.T, p *domain.Participant)
		expectedError error
	}{
		{
			name:   "New participant joins",
			userID: "user-1",
			wallet: "0xAAA",
			prepareMock: func() {
				m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(activeSession, nil)
				m.participantRepo.EXPECT().FindByUserID(gomock.Any(), "session_1", "user-1").Return(nil, nil)
				m.participantRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p *domain.Participant) (*domain.Participant, error) {
						assert.Equal(t, "0xaaa", p.WalletAddress)
						assert.False(t, p.IsOperator)
						p.ID = "p-1"
						return p, nil
					})
				m.sessionRepo.EXPECT().IncrementParticipants(gomock.Any(), "session_1").Return(nil)
				m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "participant-joined", gomock.Any())
			},
			checkResult: func(t *testing.T, p *domain.Participant) {
				assert.Equal(t, "p-1", p.ID)
			},
		},
		{
			name:   "Creator joins as operator",
			userID: "creator",
			prepareMock: func() {
				m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(activeSession, nil)
				m.participantRepo.EXPECT().FindByUserID(gomock.Any(), "session_1", "creator").Return(nil, nil)
				m.participantRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p *domain.Participant) (*domain.Participant, error) {
						assert.True(t, p.IsOperator)
						return p, nil
					})
				m.sessionRepo.EXPECT().IncrementParticipants(gomock.Any(), "session_1").Return(nil)
				m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "participant-joined", gomock.Any())
			},
		},
		{
			name:   "Re-join updates wallet instead of duplicating",
			userID: "user-1",
			wallet: "0xBBB",
			prepareMock: func() {
				existing := &domain.Participant{ID: "p-1", SessionID: "session_1", UserID: "user-1", WalletAddress: "0xaaa"}
				m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(activeSession, nil)
				m.participantRepo.EXPECT().FindByUserID(gomock.Any(), "session_1", "user-1").Return(existing, nil)
				m.participantRepo.EXPECT().UpdateWallet(gomock.Any(), "p-1", "0xbbb").
					Return(&domain.Participant{ID: "p-1", UserID: "user-1", WalletAddress: "0xbbb"}, nil)
				m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "participant-joined", gomock.Any())
			},
			checkResult: func(t *testing.T, p *domain.Participant) {
				assert.Equal(t, "0xbbb", p.WalletAddress)
			},
		},
		{
			name:   "Re-join without wallet keeps participant untouched",
			userID: "user-1",
			prepareMock: func() {
				existing := &domain.Participant{ID: "p-1", SessionID: "session_1", UserID: "user-1", WalletAddress: "0xaaa"}
				m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(activeSession, nil)
				m.participantRepo.EXPECT().FindByUserID(gomock.Any(), "session_1", "user-1").Return(existing, nil)
				m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "participant-joined", gomock.Any())
			},
			checkResult: func(t *testing.T, p *domain.Participant) {
				assert.Equal(t, "0xaaa", p.WalletAddress)
			},
		},
		{
			name:   "Session not found",
			userID: "user-1",
			prepareMock: func() {
				m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(nil, nil)
			},
			expectedError: ErrSessionNotFound,
		},
		{
			name:   "Completed session rejects joins",
			userID: "user-1",
			prepareMock: func() {
				m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").
					Return(&domain.Session{SessionID: "session_1", Status: domain.SessionCompleted}, nil)
			},
			expectedError: ErrSessionCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			participant, err := service.Join(context.Background(), "session_1", tt.userID, "", tt.wallet, tt.userID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, participant)
				if tt.checkResult != nil {
					tt.checkResult(t, participant)
				}
			}
		})
	}
}

func TestUpdateParticipantWallet(t *testing.T) {
	service, m := NewMock(t)

	session := &domain.Session{SessionID: "session_1", Status: domain.SessionActive}

	t.Run("Empty wallet rejected", func(t *testing.T) {
		_, err := service.UpdateParticipantWallet(context.Background(), "session_1", "user-1", "   ")
		assert.ErrorIs(t, err, ErrWalletRequired)
	})

	t.Run("Existing participant wallet updated", func(t *testing.T) {
		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByUserID(gomock.Any(), "session_1", "user-1").
			Return(&domain.Participant{ID: "p-1"}, nil)
		m.participantRepo.EXPECT().UpdateWallet(gomock.Any(), "p-1", "0xccc").
			Return(&domain.Participant{ID: "p-1", UserID: "user-1", WalletAddress: "0xccc"}, nil)
		m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "wallet-updated", gomock.Any())

		participant, err := service.UpdateParticipantWallet(context.Background(), "session_1", "user-1", "0xCCC")

		assert.NoError(t, err)
		assert.Equal(t, "0xccc", participant.WalletAddress)
	})

	t.Run("Unknown user gets created with wallet", func(t *testing.T) {
		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindByUserID(gomock.Any(), "session_1", "user-2").Return(nil, nil)
		m.participantRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.Participant) (*domain.Participant, error) {
				assert.Equal(t, "0xddd", p.WalletAddress)
				return p, nil
			})
		m.sessionRepo.EXPECT().IncrementParticipants(gomock.Any(), "session_1").Return(nil)
		m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "wallet-updated", gomock.Any())

		participant, err := service.UpdateParticipantWallet(context.Background(), "session_1", "user-2", "0xDDD")

		assert.NoError(t, err)
		assert.Equal(t, "0xddd", participant.WalletAddress)
	})
}

func TestUpdateMerchantWallet(t *testing.T) {
	service, m := NewMock(t)

	t.Run("Empty wallet rejected", func(t *testing.T) {
		_, err := service.UpdateMerchantWallet(context.Background(), "session_1", "")
		assert.ErrorIs(t, err, ErrWalletRequired)
	})

	t.Run("Wallet normalized and stored", func(t *testing.T) {
		m.sessionRepo.EXPECT().UpdateMerchantWallet(gomock.Any(), "session_1", "0xmerchant").
			Return(&domain.Session{SessionID: "session_1", MerchantWallet: "0xmerchant"}, nil)
		m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "merchant-wallet-updated", gomock.Any())

		session, err := service.UpdateMerchantWallet(context.Background(), "session_1", " 0xMERCHANT ")

		assert.NoError(t, err)
		assert.Equal(t, "0xmerchant", session.MerchantWallet)
	})

	t.Run("Unknown session", func(t *testing.T) {
		m.sessionRepo.EXPECT().UpdateMerchantWallet(gomock.Any(), "missing", "0xmerchant").Return(nil, nil)

		_, err := service.UpdateMerchantWallet(context.Background(), "missing", "0xmerchant")

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestGetPaymentStatus(t *testing.T) {
	service, m := NewMock(t)

	session := &domain.Session{SessionID: "session_1", Status: domain.SessionActive}
	participants := []domain.Participant{
		{ID: "p-1", UserID: "user-1"},
		{ID: "p-2", UserID: "user-2"},
	}
	payments := []domain.Payment{
		{ID: "pay-1", ParticipantID: "p-1", Status: domain.PaymentSuccess, Amount: 43.33},
		{ID: "pay-2", ParticipantID: "p-2", Status: domain.PaymentFailed},
	}

	m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
	m.participantRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return(participants, nil)
	m.paymentRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return(payments, nil)

	status, err := service.GetPaymentStatus(context.Background(), "session_1")

	assert.NoError(t, err)
	assert.Equal(t, 2, status.TotalParticipants)
	assert.Equal(t, 1, status.PaidCount)
	assert.False(t, status.AllPaid)
	assert.True(t, status.Participants[0].Paid)
	assert.Equal(t, "pay-1", status.Participants[0].Payment.ID)
	assert.False(t, status.Participants[1].Paid)
	assert.Nil(t, status.Participants[1].Payment)
}

func TestFinalize(t *testing.T) {
	service, m := NewMock(t)

	session := &domain.Session{SessionID: "session_1", Status: domain.SessionActive}
	participants := []domain.Participant{
		{ID: "p-1", UserID: "user-1"},
		{ID: "p-2", UserID: "user-2"},
	}

	t.Run("All participants paid", func(t *testing.T) {
		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return(participants, nil)
		m.paymentRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return([]domain.Payment{
			{ParticipantID: "p-1", Status: domain.PaymentSuccess},
			{ParticipantID: "p-2", Status: domain.PaymentSuccess},
		}, nil)
		m.sessionRepo.EXPECT().SetStatus(gomock.Any(), "session_1", domain.SessionCompleted).
			Return(&domain.Session{SessionID: "session_1", Status: domain.SessionCompleted}, nil)
		m.broadcaster.EXPECT().BroadcastSessionUpdate(gomock.Any(), "session_1", "session-finalized", gomock.Any())

		finalized, err := service.Finalize(context.Background(), "session_1")

		assert.NoError(t, err)
		assert.Equal(t, domain.SessionCompleted, finalized.Status)
	})

	t.Run("Incomplete payments block finalize", func(t *testing.T) {
		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return(participants, nil)
		m.paymentRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return([]domain.Payment{
			{ParticipantID: "p-1", Status: domain.PaymentSuccess},
		}, nil)

		_, err := service.Finalize(context.Background(), "session_1")

		var incomplete *IncompletePaymentError
		assert.ErrorAs(t, err, &incomplete)
		assert.Equal(t, 1, incomplete.Paid)
		assert.Equal(t, 2, incomplete.Total)
	})

	t.Run("Empty session cannot be finalized", func(t *testing.T) {
		m.sessionRepo.EXPECT().FindBySessionID(gomock.Any(), "session_1").Return(session, nil)
		m.participantRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return(nil, nil)
		m.paymentRepo.EXPECT().FindBySession(gomock.Any(), "session_1").Return(nil, nil)

		_, err := service.Finalize(context.Background(), "session_1")

		var incomplete *IncompletePaymentError
		assert.ErrorAs(t, err, &incomplete)
		assert.Equal(t, 0, incomplete.Total)
	})
}

func TestNormalizeWallet(t *testing.T) {
	assert.Equal(t, "0xabc", NormalizeWallet("  0xABC "))
	assert.Equal(t, "", NormalizeWallet("   "))
}

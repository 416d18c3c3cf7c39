package sessionservice

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
	"github.com/santiagotarnoski/qrsplit/internal/sessionlock"
	"go.uber.org/zap"
)

type SessionRepo interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Session, error)
	IncrementParticipants(ctx context.Context, sessionID string) error
	UpdateMerchantWallet(ctx context.Context, sessionID string, wallet string) (*domain.Session, error)
	SetStatus(ctx context.Context, sessionID string, status string) (*domain.Session, error)
}

type ParticipantRepo interface {
	Create(ctx context.Context, participant *domain.Participant) (*domain.Participant, error)
	FindBySession(ctx context.Context, sessionID string) ([]domain.Participant, error)
	FindByUserID(ctx context.Context, sessionID string, userID string) (*domain.Participant, error)
	UpdateWallet(ctx context.Context, participantID string, wallet string) (*domain.Participant, error)
}

type PaymentRepo interface {
	FindBySession(ctx context.Context, sessionID string) ([]domain.Payment, error)
}

type Broadcaster interface {
	Snapshot(ctx context.Context, sessionID string) (*domain.SessionProjection, *splitservice.Result, error)
	BroadcastSessionUpdate(ctx context.Context, sessionID string, updateType string, data any)
	Track(sessionID string)
	ObserverCount(sessionID string) int
}

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrWalletRequired   = errors.New("wallet address is required")
)

// IncompletePaymentError reports how many participants have paid so the
// caller can tell the group who is still outstanding.
type IncompletePaymentError struct {
	Paid  int
	Total int
}

func (e *IncompletePaymentError) Error() string {
	return fmt.Sprintf("cannot finalize: %d of %d participants have paid", e.Paid, e.Total)
}

// ParticipantPayment pairs a participant with their successful payment,
// if any.
type ParticipantPayment struct {
	Participant domain.Participant
	Paid        bool
	Payment     *domain.Payment
}

type PaymentStatus struct {
	TotalParticipants int
	PaidCount         int
	AllPaid           bool
	Participants      []ParticipantPayment
}

type Service struct {
	sessionRepo     SessionRepo
	participantRepo ParticipantRepo
	paymentRepo     PaymentRepo
	broadcaster     Broadcaster
	locks           *sessionlock.Keyed
}

func New(sessionRepo SessionRepo, participantRepo ParticipantRepo, paymentRepo PaymentRepo, broadcaster Broadcaster, locks *sessionlock.Keyed) *Service {
	return &Service{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		paymentRepo:     paymentRepo,
		broadcaster:     broadcaster,
		locks:           locks,
	}
}

func (s *Service) Create(ctx context.Context, merchantID string, merchantWallet string, createdBy string) (*domain.Session, error) {
	session := &domain.Session{
		SessionID:      newSessionID(),
		MerchantID:     merchantID,
		MerchantWallet: NormalizeWallet(merchantWallet),
		CreatedBy:      createdBy,
		Status:         domain.SessionActive,
	}

	created, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		zap.L().Error("can't create session", zap.Error(err))
		return nil, err
	}

	s.broadcaster.Track(created.SessionID)
	zap.L().Info("session created",
		zap.String("sessionID", created.SessionID),
		zap.String("merchantID", created.MerchantID),
	)
	return created, nil
}

// Get returns the full session snapshot with the current proportional
// split. Splits are nil while nobody has joined.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.SessionProjection, *splitservice.Result, error) {
	projection, splits, err := s.broadcaster.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if projection == nil {
		return nil, nil, ErrSessionNotFound
	}
	return projection, splits, nil
}

// Join adds a participant to the session. Re-joining with a known userID
// is idempotent: the existing participant is updated instead of
// duplicated.
func (s *Service) Join(ctx context.Context, sessionID string, userID string, name string, walletAddress string, addedBy string) (*domain.Participant, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == domain.SessionCompleted {
		return nil, ErrSessionCompleted
	}

	existing, err := s.participantRepo.FindByUserID(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	wallet := NormalizeWallet(walletAddress)
	var participant *domain.Participant
	if existing != nil {
		participant = existing
		if wallet != "" && wallet != existing.WalletAddress {
			participant, err = s.participantRepo.UpdateWallet(ctx, existing.ID, wallet)
			if err != nil {
				return nil, err
			}
		}
		zap.L().Info("participant re-joined", zap.String("sessionID", sessionID), zap.String("userID", userID))
	} else {
		participant, err = s.participantRepo.Create(ctx, &domain.Participant{
			SessionID:     sessionID,
			UserID:        userID,
			Name:          name,
			WalletAddress: wallet,
			AddedBy:       addedBy,
			IsOperator:    isOperator(session, userID),
		})
		if err != nil {
			zap.L().Error("can't create participant", zap.Error(err))
			return nil, err
		}
		if err := s.sessionRepo.IncrementParticipants(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "participant-joined", map[string]any{
		"userId": participant.UserID,
		"name":   participant.DisplayName(),
	})
	return participant, nil
}

// UpdateParticipantWallet stores the wallet for a participant, creating
// the participant first when the user connected a wallet before joining.
func (s *Service) UpdateParticipantWallet(ctx context.Context, sessionID string, userID string, walletAddress string) (*domain.Participant, error) {
	wallet := NormalizeWallet(walletAddress)
	if wallet == "" {
		return nil, ErrWalletRequired
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	existing, err := s.participantRepo.FindByUserID(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	var participant *domain.Participant
	if existing != nil {
		participant, err = s.participantRepo.UpdateWallet(ctx, existing.ID, wallet)
		if err != nil {
			return nil, err
		}
	} else {
		participant, err = s.participantRepo.Create(ctx, &domain.Participant{
			SessionID:     sessionID,
			UserID:        userID,
			WalletAddress: wallet,
			AddedBy:       userID,
			IsOperator:    isOperator(session, userID),
		})
		if err != nil {
			return nil, err
		}
		if err := s.sessionRepo.IncrementParticipants(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "wallet-updated", map[string]any{
		"userId": participant.UserID,
		"wallet": participant.WalletAddress,
	})
	return participant, nil
}

func (s *Service) UpdateMerchantWallet(ctx context.Context, sessionID string, walletAddress string) (*domain.Session, error) {
	wallet := NormalizeWallet(walletAddress)
	if wallet == "" {
		return nil, ErrWalletRequired
	}

	session, err := s.sessionRepo.UpdateMerchantWallet(ctx, sessionID, wallet)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "merchant-wallet-updated", map[string]any{
		"merchantWallet": session.MerchantWallet,
	})
	return session, nil
}

// GetPaymentStatus reports, per participant, whether a successful
// payment exists.
func (s *Service) GetPaymentStatus(ctx context.Context, sessionID string) (*PaymentStatus, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	participants, err := s.participantRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	paidBy := make(map[string]*domain.Payment, len(payments))
	for i := range payments {
		payment := payments[i]
		if payment.Status != domain.PaymentSuccess {
			continue
		}
		if _, ok := paidBy[payment.ParticipantID]; !ok {
			paidBy[payment.ParticipantID] = &payment
		}
	}

	status := &PaymentStatus{
		TotalParticipants: len(participants),
		Participants:      make([]ParticipantPayment, 0, len(participants)),
	}
	for _, participant := range participants {
		payment, paid := paidBy[participant.ID]
		if paid {
			status.PaidCount++
		}
		status.Participants = append(status.Participants, ParticipantPayment{
			Participant: participant,
			Paid:        paid,
			Payment:     payment,
		})
	}
	status.AllPaid = len(participants) > 0 && status.PaidCount == len(participants)
	return status, nil
}

// Finalize closes the session once every participant has a successful
// payment.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*domain.Session, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	status, err := s.GetPaymentStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !status.AllPaid {
		return nil, &IncompletePaymentError{Paid: status.PaidCount, Total: status.TotalParticipants}
	}

	session, err := s.sessionRepo.SetStatus(ctx, sessionID, domain.SessionCompleted)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "session-finalized", map[string]any{
		"status": session.Status,
	})
	zap.L().Info("session finalized", zap.String("sessionID", sessionID))
	return session, nil
}

// NormalizeWallet canonicalizes an address so lookups by wallet are
// case-insensitive.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

func isOperator(session *domain.Session, userID string) bool {
	return session.CreatedBy != "" && session.CreatedBy == userID
}

const sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func newSessionID() string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("session_%d", time.Now().UnixNano())
	}
	for i, b := range buf {
		buf[i] = sessionIDAlphabet[int(b)%len(sessionIDAlphabet)]
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), buf)
}

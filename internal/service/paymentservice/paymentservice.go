package paymentservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/ledger"
	"github.com/santiagotarnoski/qrsplit/internal/sessionlock"
	"github.com/santiagotarnoski/qrsplit/internal/service/sessionservice"
	"go.uber.org/zap"
)

type SessionRepo interface {
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Session, error)
}

type ParticipantRepo interface {
	FindByWalletOrUserID(ctx context.Context, sessionID string, wallet string, userID string) (*domain.Participant, error)
}

type PaymentRepo interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindSuccessfulByParticipant(ctx context.Context, participantID string) (*domain.Payment, error)
}

type Broadcaster interface {
	BroadcastSessionUpdate(ctx context.Context, sessionID string, updateType string, data any)
}

var (
	ErrSessionNotFound             = errors.New("session not found")
	ErrSessionCompleted            = errors.New("session already completed")
	ErrInvalidAmount               = errors.New("payment amount must be a positive number")
	ErrMerchantWalletNotConfigured = errors.New("merchant wallet is not configured for this session")
	ErrParticipantNotFound         = errors.New("participant not found by wallet or user id")
	ErrDuplicatePayment            = errors.New("participant already has a successful payment")
)

type Service struct {
	sessionRepo     SessionRepo
	participantRepo ParticipantRepo
	paymentRepo     PaymentRepo
	ledger          ledger.Ledger
	broadcaster     Broadcaster
	locks           *sessionlock.Keyed
	tokenAddress    string
}

func New(sessionRepo SessionRepo, participantRepo ParticipantRepo, paymentRepo PaymentRepo, ldg ledger.Ledger, broadcaster Broadcaster, locks *sessionlock.Keyed, tokenAddress string) *Service {
	return &Service{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		paymentRepo:     paymentRepo,
		ledger:          ldg,
		broadcaster:     broadcaster,
		locks:           locks,
		tokenAddress:    tokenAddress,
	}
}

// Pay settles a participant's share against the merchant wallet through
// the ledger and records the outcome. A participant that already has a
// successful payment is rejected, so a double-submitted form cannot
// double-count toward the collected total. A ledger failure still leaves
// a failed record behind for audit.
func (s *Service) Pay(ctx context.Context, sessionID string, userID string, walletAddress string, amount float64) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
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
	if session.Status == domain.SessionCompleted {
		return nil, ErrSessionCompleted
	}
	if session.MerchantWallet == "" {
		return nil, ErrMerchantWalletNotConfigured
	}

	wallet := sessionservice.NormalizeWallet(walletAddress)
	participant, err := s.participantRepo.FindByWalletOrUserID(ctx, sessionID, wallet, userID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}

	existing, err := s.paymentRepo.FindSuccessfulByParticipant(ctx, participant.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		zap.L().Info("duplicate payment rejected",
			zap.String("sessionID", sessionID),
			zap.String("participantID", participant.ID),
		)
		return nil, ErrDuplicatePayment
	}

	fromAddress := wallet
	if fromAddress == "" {
		fromAddress = participant.WalletAddress
	}

	payment := &domain.Payment{
		SessionID:     sessionID,
		ParticipantID: participant.ID,
		FromAddress:   fromAddress,
		ToAddress:     session.MerchantWallet,
		Amount:        amount,
		TokenAddress:  s.tokenAddress,
	}

	receipt, ledgerErr := s.ledger.Pay(ctx, fromAddress, session.MerchantWallet, amount, s.tokenAddress)
	if ledgerErr != nil {
		payment.Status = domain.PaymentFailed
		if _, err := s.paymentRepo.Create(ctx, payment); err != nil {
			zap.L().Error("can't record failed payment", zap.Error(err))
			return nil, err
		}
		zap.L().Error("ledger payment failed",
			zap.String("sessionID", sessionID),
			zap.String("participantID", participant.ID),
			zap.Error(ledgerErr),
		)
		return nil, fmt.Errorf("ledger payment failed: %w", ledgerErr)
	}

	payment.Status = domain.PaymentSuccess
	payment.TxHash = receipt.TxHash
	created, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		zap.L().Error("can't record payment", zap.Error(err))
		return nil, err
	}

	zap.L().Info("payment recorded",
		zap.String("sessionID", sessionID),
		zap.String("participantID", participant.ID),
		zap.Float64("amount", amount),
		zap.String("txHash", created.TxHash),
	)
	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "payment-made", map[string]any{
		"participantId": participant.ID,
		"userId":        participant.UserID,
		"amount":        created.Amount,
		"txHash":        created.TxHash,
	})
	return created, nil
}

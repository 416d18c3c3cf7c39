package itemservice

import (
	"context"
	"errors"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"github.com/santiagotarnoski/qrsplit/internal/sessionlock"
	"go.uber.org/zap"
)

type SessionRepo interface {
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Session, error)
	IncrementTotal(ctx context.Context, sessionID string, delta float64) (*domain.Session, error)
}

type ItemRepo interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	FindByID(ctx context.Context, sessionID string, itemID string) (*domain.Item, error)
	UpdateAssignees(ctx context.Context, itemID string, assignees []string) (*domain.Item, error)
}

type Broadcaster interface {
	BroadcastSessionUpdate(ctx context.Context, sessionID string, updateType string, data any)
}

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrInvalidAmount    = errors.New("item amount must be a positive number")
	ErrItemNotFound     = errors.New("item not found")
)

type Service struct {
	sessionRepo SessionRepo
	itemRepo    ItemRepo
	txManager   pg.TXManager
	broadcaster Broadcaster
	locks       *sessionlock.Keyed
}

func New(sessionRepo SessionRepo, itemRepo ItemRepo, txManager pg.TXManager, broadcaster Broadcaster, locks *sessionlock.Keyed) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		itemRepo:    itemRepo,
		txManager:   txManager,
		broadcaster: broadcaster,
		locks:       locks,
	}
}

// Add persists an item and bumps the session total by the item's full
// cost. The lock serializes concurrent adds on the same session so the
// incremental total never loses an update.
func (s *Service) Add(ctx context.Context, sessionID string, name string, amount, tax, tip float64, assignees []string) (*domain.Item, error) {
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

	if assignees == nil {
		assignees = []string{}
	}

	// The insert and the total increment commit together or not at all.
	var item *domain.Item
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		created, err := s.itemRepo.Create(ctx, &domain.Item{
			SessionID: sessionID,
			Name:      name,
			Amount:    amount,
			Tax:       tax,
			Tip:       tip,
			Assignees: assignees,
		})
		if err != nil {
			zap.L().Error("can't create item", zap.Error(err))
			return err
		}
		if _, err := s.sessionRepo.IncrementTotal(ctx, sessionID, created.Total()); err != nil {
			zap.L().Error("can't increment session total", zap.String("sessionID", sessionID), zap.Error(err))
			return err
		}
		item = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("item added",
		zap.String("sessionID", sessionID),
		zap.String("itemID", item.ID),
		zap.Float64("total", item.Total()),
	)
	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "item-added", map[string]any{
		"itemId": item.ID,
		"name":   item.Name,
		"amount": item.Amount,
	})
	return item, nil
}

// UpdateAssignees replaces the item's assignee set. An empty set means
// the item is shared by everyone.
func (s *Service) UpdateAssignees(ctx context.Context, sessionID string, itemID string, assignees []string) (*domain.Item, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	existing, err := s.itemRepo.FindByID(ctx, sessionID, itemID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrItemNotFound
	}

	if assignees == nil {
		assignees = []string{}
	}
	item, err := s.itemRepo.UpdateAssignees(ctx, itemID, assignees)
	if err != nil {
		zap.L().Error("can't update assignees", zap.String("itemID", itemID), zap.Error(err))
		return nil, err
	}

	s.broadcaster.BroadcastSessionUpdate(ctx, sessionID, "item-assignees-updated", map[string]any{
		"itemId":    item.ID,
		"assignees": item.Assignees,
	})
	return item, nil
}

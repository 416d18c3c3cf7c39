package realtimeservice

import (
	"context"
	"math"
	"time"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/dto"
	"github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SessionRepo interface {
	FindBySessionID(ctx context.Context, sessionID string) (*domain.Session, error)
	Count(ctx context.Context) (int, error)
}

type ParticipantRepo interface {
	FindBySession(ctx context.Context, sessionID string) ([]domain.Participant, error)
}

type ItemRepo interface {
	FindBySession(ctx context.Context, sessionID string) ([]domain.Item, error)
}

type PaymentRepo interface {
	FindBySession(ctx context.Context, sessionID string) ([]domain.Payment, error)
}

type Engine interface {
	ComputeForProjection(projection *domain.SessionProjection, method string) *splitservice.Result
}

// UpdatePayload is what every observer of a session receives after a
// mutation, and what the mutating request gets back synchronously.
type UpdatePayload struct {
	Type           string               `json:"type"`
	Session        dto.SessionDTO       `json:"session"`
	Splits         *splitservice.Result `json:"splits"`
	Data           any                  `json:"data"`
	Timestamp      string               `json:"timestamp"`
	ConnectedUsers int                  `json:"connectedUsers"`
}

// Service owns the broadcast side of every mutation: reload the session
// projection, recompute splits, push to all observers of that session.
type Service struct {
	hub             *Hub
	sessionRepo     SessionRepo
	participantRepo ParticipantRepo
	itemRepo        ItemRepo
	paymentRepo     PaymentRepo
	engine          Engine
}

func New(hub *Hub, sessionRepo SessionRepo, participantRepo ParticipantRepo, itemRepo ItemRepo, paymentRepo PaymentRepo, engine Engine) *Service {
	return &Service{
		hub:             hub,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		itemRepo:        itemRepo,
		paymentRepo:     paymentRepo,
		engine:          engine,
	}
}

func (s *Service) Hub() *Hub {
	return s.hub
}

// Track registers a session with the hub before any observer connects,
// so presence queries for a fresh session see an empty room instead of
// an unknown one.
func (s *Service) Track(sessionID string) {
	s.hub.Track(sessionID)
}

func (s *Service) ObserverCount(sessionID string) int {
	return s.hub.ObserverCount(sessionID)
}

func (s *Service) SessionCount(ctx context.Context) (int, error) {
	return s.sessionRepo.Count(ctx)
}

func (s *Service) RealtimeStats() (sessions int, observers int) {
	return s.hub.Stats()
}

// LoadProjection assembles the full read snapshot of a session.
// Returns nil when the session does not exist.
func (s *Service) LoadProjection(ctx context.Context, sessionID string) (*domain.SessionProjection, error) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	var (
		participants []domain.Participant
		items        []domain.Item
		payments     []domain.Payment
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.FindBySession(gCtx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.itemRepo.FindBySession(gCtx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.paymentRepo.FindBySession(gCtx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.SessionProjection{
		Session:      *session,
		Participants: participants,
		Items:        items,
		Payments:     payments,
	}, nil
}

// Snapshot loads the projection and the current proportional split.
// Splits are nil while the session has no participants.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*domain.SessionProjection, *splitservice.Result, error) {
	projection, err := s.LoadProjection(ctx, sessionID)
	if err != nil || projection == nil {
		return nil, nil, err
	}

	var splits *splitservice.Result
	if len(projection.Participants) > 0 {
		splits = s.engine.ComputeForProjection(projection, splitservice.MethodProportional)
		s.reconcile(sessionID, projection, splits)
	}
	return projection, splits, nil
}

// reconcile cross-checks the incrementally maintained session total
// against the split engine's independently computed one. Divergence is
// reported, never corrected.
func (s *Service) reconcile(sessionID string, projection *domain.SessionProjection, splits *splitservice.Result) {
	var grandTotal float64
	for _, item := range projection.Items {
		grandTotal += item.Total()
	}
	tolerance := float64(len(projection.Participants)) * 0.01
	if diff := math.Abs(projection.Session.TotalAmount - grandTotal); diff > tolerance {
		zap.L().Warn("session total diverged from item totals",
			zap.String("sessionID", sessionID),
			zap.Float64("storedTotal", projection.Session.TotalAmount),
			zap.Float64("itemTotal", grandTotal),
			zap.Float64("difference", splits.Difference),
		)
	}
}

// BroadcastSessionUpdate pushes the post-mutation state to every observer
// of the session. Failures are logged and swallowed: a broken broadcast
// must never fail the mutation that triggered it.
func (s *Service) BroadcastSessionUpdate(ctx context.Context, sessionID string, updateType string, data any) {
	projection, splits, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		zap.L().Error("broadcast aborted, snapshot failed", zap.String("sessionID", sessionID), zap.Error(err))
		return
	}
	if projection == nil {
		return
	}

	payload := UpdatePayload{
		Type:           updateType,
		Session:        dto.NewSessionDTO(projection),
		Splits:         splits,
		Data:           data,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ConnectedUsers: s.hub.ObserverCount(sessionID),
	}
	s.hub.Publish(sessionID, Event{Name: "session-updated", Data: payload})

	zap.L().Info("session update broadcast",
		zap.String("sessionID", sessionID),
		zap.String("type", updateType),
		zap.Int("connectedUsers", payload.ConnectedUsers),
	)
}

// SyncPayload builds the initial full-state message for a freshly
// subscribed observer. Nil when the session has no participants yet.
func (s *Service) SyncPayload(ctx context.Context, sessionID string) (*UpdatePayload, error) {
	projection, splits, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if projection == nil || len(projection.Participants) == 0 {
		return nil, nil
	}
	return &UpdatePayload{
		Type:           "session-sync",
		Session:        dto.NewSessionDTO(projection),
		Splits:         splits,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ConnectedUsers: s.hub.ObserverCount(sessionID),
	}, nil
}

// CalculateSplits computes the split under an explicitly chosen method
// and announces the result to the session's observers.
func (s *Service) CalculateSplits(ctx context.Context, sessionID string, method string) (*domain.SessionProjection, *splitservice.Result, error) {
	projection, err := s.LoadProjection(ctx, sessionID)
	if err != nil || projection == nil {
		return nil, nil, err
	}

	splits := s.engine.ComputeForProjection(projection, method)
	s.BroadcastSessionUpdate(ctx, sessionID, "splits-calculated", map[string]any{
		"splits": splits,
		"method": splits.Method,
	})
	return projection, splits, nil
}

package service

import (
	"github.com/santiagotarnoski/qrsplit/internal/handlers/health"
	"github.com/santiagotarnoski/qrsplit/internal/handlers/items"
	"github.com/santiagotarnoski/qrsplit/internal/handlers/payments"
	"github.com/santiagotarnoski/qrsplit/internal/handlers/sessions"
	"github.com/santiagotarnoski/qrsplit/internal/handlers/splits"
	"github.com/santiagotarnoski/qrsplit/internal/ledger"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"github.com/santiagotarnoski/qrsplit/internal/repo"
	"github.com/santiagotarnoski/qrsplit/internal/sessionlock"
	itemservice "github.com/santiagotarnoski/qrsplit/internal/service/itemservice"
	paymentservice "github.com/santiagotarnoski/qrsplit/internal/service/paymentservice"
	realtimeservice "github.com/santiagotarnoski/qrsplit/internal/service/realtimeservice"
	sessionservice "github.com/santiagotarnoski/qrsplit/internal/service/sessionservice"
	splitservice "github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
)

type Services struct {
	SessionService  sessions.Service
	ItemService     items.Service
	PaymentService  payments.Service
	SplitService    splits.Service
	HealthService   health.Service
	RealtimeService *realtimeservice.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, ldg ledger.Ledger, tokenAddress string) *Services {
	hub := realtimeservice.NewHub()
	engine := splitservice.New()
	locks := sessionlock.New()

	realtimeService := realtimeservice.New(hub, repo.SessionRepo, repo.ParticipantRepo, repo.ItemRepo, repo.PaymentRepo, engine)
	sessionService := sessionservice.New(repo.SessionRepo, repo.ParticipantRepo, repo.PaymentRepo, realtimeService, locks)
	itemService := itemservice.New(repo.SessionRepo, repo.ItemRepo, txManager, realtimeService, locks)
	paymentService := paymentservice.New(repo.SessionRepo, repo.ParticipantRepo, repo.PaymentRepo, ldg, realtimeService, locks, tokenAddress)

	return &Services{
		SessionService:  sessionService,
		ItemService:     itemService,
		PaymentService:  paymentService,
		SplitService:    realtimeService,
		HealthService:   realtimeService,
		RealtimeService: realtimeService,
	}
}

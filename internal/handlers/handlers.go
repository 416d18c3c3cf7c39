package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/santiagotarnoski/qrsplit/docs"
	healthhandlers "github.com/santiagotarnoski/qrsplit/internal/handlers/health"
	itemshandlers "github.com/santiagotarnoski/qrsplit/internal/handlers/items"
	paymentshandlers "github.com/santiagotarnoski/qrsplit/internal/handlers/payments"
	realtimehandlers "github.com/santiagotarnoski/qrsplit/internal/handlers/realtime"
	sessionshandlers "github.com/santiagotarnoski/qrsplit/internal/handlers/sessions"
	splitshandlers "github.com/santiagotarnoski/qrsplit/internal/handlers/splits"
	"github.com/santiagotarnoski/qrsplit/internal/service"
	httpSwagger "github.com/swaggo/http-swagger"
)

type SessionHandler interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	JoinSession(w http.ResponseWriter, r *http.Request)
	UpdateParticipantWallet(w http.ResponseWriter, r *http.Request)
	UpdateMerchantWallet(w http.ResponseWriter, r *http.Request)
	GetPaymentStatus(w http.ResponseWriter, r *http.Request)
	FinalizeSession(w http.ResponseWriter, r *http.Request)
}

type ItemHandler interface {
	AddItem(w http.ResponseWriter, r *http.Request)
	UpdateAssignees(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Pay(w http.ResponseWriter, r *http.Request)
}

type SplitHandler interface {
	GetSplits(w http.ResponseWriter, r *http.Request)
	CalculateSplits(w http.ResponseWriter, r *http.Request)
}

type RealtimeHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	GetConnectedUsers(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Info(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	SessionHandler  SessionHandler
	ItemHandler     ItemHandler
	PaymentHandler  PaymentHandler
	SplitHandler    SplitHandler
	RealtimeHandler RealtimeHandler
	HealthHandler   HealthHandler
}

func New(s *service.Services, frontendURL string) *Handlers {
	return &Handlers{
		SessionHandler:  sessionshandlers.New(s.SessionService, s.RealtimeService, frontendURL),
		ItemHandler:     itemshandlers.New(s.ItemService, s.RealtimeService),
		PaymentHandler:  paymentshandlers.New(s.PaymentService),
		SplitHandler:    splitshandlers.New(s.SplitService),
		RealtimeHandler: realtimehandlers.New(s.RealtimeService.Hub(), s.RealtimeService),
		HealthHandler:   healthhandlers.New(s.HealthService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Get("/", h.HealthHandler.Info)
	r.Get("/health", h.HealthHandler.Health)
	r.Get("/ws", h.RealtimeHandler.ServeWS)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.SessionHandler.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.SessionHandler.GetSession)
			r.Post("/join", h.SessionHandler.JoinSession)
			r.Put("/participants/{userID}/wallet", h.SessionHandler.UpdateParticipantWallet)
			r.Put("/merchant-wallet", h.SessionHandler.UpdateMerchantWallet)
			r.Get("/payment-status", h.SessionHandler.GetPaymentStatus)
			r.Post("/finalize", h.SessionHandler.FinalizeSession)

			r.Post("/items", h.ItemHandler.AddItem)
			r.Put("/items/{itemID}/assignees", h.ItemHandler.UpdateAssignees)

			r.Get("/splits", h.SplitHandler.GetSplits)
			r.Post("/calculate-splits", h.SplitHandler.CalculateSplits)

			r.Post("/pay", h.PaymentHandler.Pay)
			r.Get("/connected-users", h.RealtimeHandler.GetConnectedUsers)
		})
	})

	return r
}

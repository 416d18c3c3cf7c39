package repo

import (
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	itemrepo "github.com/santiagotarnoski/qrsplit/internal/repo/item-repo"
	participantrepo "github.com/santiagotarnoski/qrsplit/internal/repo/participant-repo"
	paymentrepo "github.com/santiagotarnoski/qrsplit/internal/repo/payment-repo"
	sessionrepo "github.com/santiagotarnoski/qrsplit/internal/repo/session-repo"
)

// Repositories holds the concrete stores. Each service declares its own
// consumer-side interface over the subset of methods it needs, so the
// fields stay concrete here.
type Repositories struct {
	SessionRepo     *sessionrepo.Repository
	ParticipantRepo *participantrepo.Repository
	ItemRepo        *itemrepo.Repository
	PaymentRepo     *paymentrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		SessionRepo:     sessionrepo.New(conn, txManager),
		ParticipantRepo: participantrepo.New(conn),
		ItemRepo:        itemrepo.New(conn),
		PaymentRepo:     paymentrepo.New(conn),
	}
}

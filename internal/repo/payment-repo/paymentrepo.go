package paymentrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

const paymentColumns = `id, session_id, participant_id, from_address, to_address, amount, token_address, status, tx_hash, created_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.SessionID, &p.ParticipantID, &p.FromAddress, &p.ToAddress, &p.Amount, &p.TokenAddress, &p.Status, &p.TxHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
        INSERT INTO payments (id, session_id, participant_id, from_address, to_address, amount, token_address, status, tx_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + paymentColumns
	row := r.db.QueryRow(ctx, query,
		uuid.NewString(), payment.SessionID, payment.ParticipantID, payment.FromAddress,
		payment.ToAddress, payment.Amount, payment.TokenAddress, payment.Status, payment.TxHash,
	)
	created, err := scanPayment(row)
	if err != nil {
		zap.L().Error("failed to create payment", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) FindBySession(ctx context.Context, sessionID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		zap.L().Error("failed to find payments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *Repository) FindSuccessfulByParticipant(ctx context.Context, participantID string) (*domain.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE participant_id = $1 AND status = $2
        ORDER BY created_at
        LIMIT 1`
	payment, err := scanPayment(r.db.QueryRow(ctx, query, participantID, domain.PaymentSuccess))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to find successful payment", zap.Error(err))
		return nil, err
	}
	return payment, nil
}

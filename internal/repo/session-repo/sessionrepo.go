package sessionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const sessionColumns = `id, session_id, merchant_id, merchant_wallet, created_by, status, total_amount, participants_count, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.SessionID, &s.MerchantID, &s.MerchantWallet, &s.CreatedBy,
		&s.Status, &s.TotalAmount, &s.ParticipantsCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	query := `
        INSERT INTO sessions (session_id, merchant_id, merchant_wallet, created_by, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + sessionColumns
	row := r.db.QueryRow(ctx, query, session.SessionID, session.MerchantID, session.MerchantWallet, session.CreatedBy, domain.SessionActive)
	created, err := scanSession(row)
	if err != nil {
		zap.L().Error("failed to create session", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to find session", zap.Error(err))
		return nil, err
	}
	return session, nil
}

// IncrementTotal adds delta to the stored running total inside a transaction
// so concurrent item additions never lose an update.
func (r *Repository) IncrementTotal(ctx context.Context, sessionID string, delta float64) (*domain.Session, error) {
	query := `
        UPDATE sessions
        SET total_amount = total_amount + $1, updated_at = now()
        WHERE session_id = $2
        RETURNING ` + sessionColumns
	var updated *domain.Session
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		session, err := scanSession(r.db.QueryRow(ctx, query, delta, sessionID))
		if err != nil {
			zap.L().Error("failed to increment session total", zap.Error(err))
			return err
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) IncrementParticipants(ctx context.Context, sessionID string) error {
	query := `
        UPDATE sessions
        SET participants_count = participants_count + 1, updated_at = now()
        WHERE session_id = $1`
	if _, err := r.db.Exec(ctx, query, sessionID); err != nil {
		zap.L().Error("failed to increment participants count", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) UpdateMerchantWallet(ctx context.Context, sessionID string, wallet string) (*domain.Session, error) {
	query := `
        UPDATE sessions
        SET merchant_wallet = $1, updated_at = now()
        WHERE session_id = $2
        RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRow(ctx, query, wallet, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to update merchant wallet", zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (r *Repository) SetStatus(ctx context.Context, sessionID string, status string) (*domain.Session, error) {
	query := `
        UPDATE sessions
        SET status = $1, updated_at = now()
        WHERE session_id = $2
        RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRow(ctx, query, status, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to set session status", zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM sessions`).Scan(&count); err != nil {
		zap.L().Error("failed to count sessions", zap.Error(err))
		return 0, err
	}
	return count, nil
}

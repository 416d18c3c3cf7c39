package participantrepo

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

const participantColumns = `id, session_id, user_id, name, wallet_address, added_by, is_operator, created_at`

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Name, &p.WalletAddress, &p.AddedBy, &p.IsOperator, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, participant *domain.Participant) (*domain.Participant, error) {
	query := `
        INSERT INTO participants (id, session_id, user_id, name, wallet_address, added_by, is_operator)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + participantColumns
	row := r.db.QueryRow(ctx, query,
		uuid.NewString(), participant.SessionID, participant.UserID, participant.Name,
		participant.WalletAddress, participant.AddedBy, participant.IsOperator,
	)
	created, err := scanParticipant(row)
	if err != nil {
		zap.L().Error("failed to create participant", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) FindBySession(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		zap.L().Error("failed to find participants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (r *Repository) FindByUserID(ctx context.Context, sessionID string, userID string) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE session_id = $1 AND user_id = $2`
	participant, err := scanParticipant(r.db.QueryRow(ctx, query, sessionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to find participant by user id", zap.Error(err))
		return nil, err
	}
	return participant, nil
}

// FindByWalletOrUserID resolves a participant the way payment requests
// identify themselves: by wallet address first, then by user id.
func (r *Repository) FindByWalletOrUserID(ctx context.Context, sessionID string, wallet string, userID string) (*domain.Participant, error) {
	query := `
        SELECT ` + participantColumns + `
        FROM participants
        WHERE session_id = $1 AND (($2 != '' AND wallet_address = $2) OR ($3 != '' AND user_id = $3))
        ORDER BY created_at
        LIMIT 1`
	participant, err := scanParticipant(r.db.QueryRow(ctx, query, sessionID, wallet, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to resolve participant", zap.Error(err))
		return nil, err
	}
	return participant, nil
}

func (r *Repository) UpdateWallet(ctx context.Context, participantID string, wallet string) (*domain.Participant, error) {
	query := `
        UPDATE participants
        SET wallet_address = $1
        WHERE id = $2
        RETURNING ` + participantColumns
	participant, err := scanParticipant(r.db.QueryRow(ctx, query, wallet, participantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to update participant wallet", zap.Error(err))
		return nil, err
	}
	return participant, nil
}

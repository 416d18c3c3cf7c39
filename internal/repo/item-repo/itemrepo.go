package itemrepo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"go.uber.org/zap"
)

// Assignees are stored as a JSON-encoded list; the encoding never leaves
// this package, business logic only ever sees []string.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

const itemColumns = `id, session_id, name, amount, tax, tip, assignees, created_at`

func encodeAssignees(assignees []string) string {
	if assignees == nil {
		assignees = []string{}
	}
	encoded, err := json.Marshal(assignees)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func decodeAssignees(raw string) []string {
	var assignees []string
	if err := json.Unmarshal([]byte(raw), &assignees); err != nil || assignees == nil {
		return []string{}
	}
	return assignees
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	var rawAssignees string
	err := row.Scan(&item.ID, &item.SessionID, &item.Name, &item.Amount, &item.Tax, &item.Tip, &rawAssignees, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.Assignees = decodeAssignees(rawAssignees)
	return &item, nil
}

func (r *Repository) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	query := `
        INSERT INTO items (id, session_id, name, amount, tax, tip, assignees)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + itemColumns
	row := r.db.QueryRow(ctx, query,
		uuid.NewString(), item.SessionID, item.Name, item.Amount, item.Tax, item.Tip,
		encodeAssignees(item.Assignees),
	)
	created, err := scanItem(row)
	if err != nil {
		zap.L().Error("failed to create item", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *Repository) FindBySession(ctx context.Context, sessionID string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE session_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		zap.L().Error("failed to find items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, sessionID string, itemID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND session_id = $2`
	item, err := scanItem(r.db.QueryRow(ctx, query, itemID, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to find item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *Repository) UpdateAssignees(ctx context.Context, itemID string, assignees []string) (*domain.Item, error) {
	query := `
        UPDATE items
        SET assignees = $1
        WHERE id = $2
        RETURNING ` + itemColumns
	item, err := scanItem(r.db.QueryRow(ctx, query, encodeAssignees(assignees), itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to update item assignees", zap.Error(err))
		return nil, err
	}
	return item, nil
}

package sessionrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()
	defer ctrl.Finish()

	return repo, mockDB, mockTxManager
}

func sessionRows(s *domain.Session) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "session_id", "merchant_id", "merchant_wallet", "created_by",
		"status", "total_amount", "participants_count", "created_at", "updated_at",
	}).AddRow(
		s.ID, s.SessionID, s.MerchantID, s.MerchantWallet, s.CreatedBy,
		s.Status, s.TotalAmount, s.ParticipantsCount, s.CreatedAt, s.UpdatedAt,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Now()

	session := &domain.Session{
		ID:             1,
		SessionID:      "session_1",
		MerchantID:     "merchant_1",
		MerchantWallet: "0xmerchant",
		CreatedBy:      "user_1",
		Status:         domain.SessionActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Session created",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
					WithArgs("session_1", "merchant_1", "0xmerchant", "user_1", domain.SessionActive).
					WillReturnRows(sessionRows(session))
			},
			expectErr: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
					WithArgs("session_1", "merchant_1", "0xmerchant", "user_1", domain.SessionActive).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Create(context.Background(), session)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, session, result)
			}
		})
	}
}

func TestRepository_FindBySessionID(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Now()

	session := &domain.Session{
		ID:          1,
		SessionID:   "session_1",
		MerchantID:  "merchant_1",
		Status:      domain.SessionActive,
		TotalAmount: 42.50,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tests := []struct {
		name      string
		sessionID string
		mockSetup func()
		expectErr bool
		result    *domain.Session
	}{
		{
			name:      "Session exists",
			sessionID: "session_1",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE session_id = $1")).
					WithArgs("session_1").
					WillReturnRows(sessionRows(session))
			},
			expectErr: false,
			result:    session,
		},
		{
			name:      "Session does not exist",
			sessionID: "session_unknown",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE session_id = $1")).
					WithArgs("session_unknown").
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: false,
			result:    nil,
		},
		{
			name:      "Wrapped no-rows is still not found",
			sessionID: "session_unknown",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE session_id = $1")).
					WithArgs("session_unknown").
					WillReturnError(fmt.Errorf("scan row: %w", pgx.ErrNoRows))
			},
			expectErr: false,
			result:    nil,
		},
		{
			name:      "Database error",
			sessionID: "session_1",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE session_id = $1")).
					WithArgs("session_1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
			result:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindBySessionID(context.Background(), tt.sessionID)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_IncrementTotal(t *testing.T) {
	repo, mock, txManager := NewMock(t)
	now := time.Now()

	updated := &domain.Session{
		ID:          1,
		SessionID:   "session_1",
		MerchantID:  "merchant_1",
		Status:      domain.SessionActive,
		TotalAmount: 55.00,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	t.Run("Total incremented", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SET total_amount = total_amount + $1")).
			WithArgs(12.50, "session_1").
			WillReturnRows(sessionRows(updated))

		result, err := repo.IncrementTotal(context.Background(), "session_1", 12.50)
		assert.NoError(t, err)
		assert.Equal(t, updated, result)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SET total_amount = total_amount + $1")).
			WithArgs(12.50, "session_1").
			WillReturnError(errors.New("database error"))

		result, err := repo.IncrementTotal(context.Background(), "session_1", 12.50)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestRepository_IncrementParticipants(t *testing.T) {
	repo, mock, _ := NewMock(t)

	t.Run("Counter incremented", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET participants_count = participants_count + 1")).
			WithArgs("session_1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.IncrementParticipants(context.Background(), "session_1")
		assert.NoError(t, err)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET participants_count = participants_count + 1")).
			WithArgs("session_1").
			WillReturnError(errors.New("database error"))

		err := repo.IncrementParticipants(context.Background(), "session_1")
		assert.Error(t, err)
	})
}

func TestRepository_UpdateMerchantWallet(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Now()

	updated := &domain.Session{
		ID:             1,
		SessionID:      "session_1",
		MerchantID:     "merchant_1",
		MerchantWallet: "0xmerchant",
		Status:         domain.SessionActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	t.Run("Wallet updated", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SET merchant_wallet = $1")).
			WithArgs("0xmerchant", "session_1").
			WillReturnRows(sessionRows(updated))

		result, err := repo.UpdateMerchantWallet(context.Background(), "session_1", "0xmerchant")
		assert.NoError(t, err)
		assert.Equal(t, updated, result)
	})

	t.Run("Session does not exist", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SET merchant_wallet = $1")).
			WithArgs("0xmerchant", "session_unknown").
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.UpdateMerchantWallet(context.Background(), "session_unknown", "0xmerchant")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestRepository_SetStatus(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Now()

	completed := &domain.Session{
		ID:         1,
		SessionID:  "session_1",
		MerchantID: "merchant_1",
		Status:     domain.SessionCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	t.Run("Status updated", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SET status = $1")).
			WithArgs(domain.SessionCompleted, "session_1").
			WillReturnRows(sessionRows(completed))

		result, err := repo.SetStatus(context.Background(), "session_1", domain.SessionCompleted)
		assert.NoError(t, err)
		assert.Equal(t, completed, result)
	})

	t.Run("Session does not exist", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SET status = $1")).
			WithArgs(domain.SessionCompleted, "session_unknown").
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.SetStatus(context.Background(), "session_unknown", domain.SessionCompleted)
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestRepository_Count(t *testing.T) {
	repo, mock, _ := NewMock(t)

	t.Run("Sessions counted", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM sessions")).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.Count(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM sessions")).
			WillReturnError(errors.New("database error"))

		count, err := repo.Count(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 0, count)
	})
}

package domain

import "time"

const (
	// SessionActive session is open and accepts mutations.
	SessionActive string = "active"
	// SessionCompleted every participant has paid, session is closed.
	SessionCompleted string = "completed"
)

const (
	PaymentSuccess string = "success"
	PaymentFailed  string = "failed"
	PaymentPending string = "pending"
)

type Session struct {
	ID                int       `db:"id"`
	SessionID         string    `db:"session_id"`
	MerchantID        string    `db:"merchant_id"`
	MerchantWallet    string    `db:"merchant_wallet"`
	CreatedBy         string    `db:"created_by"`
	Status            string    `db:"status"`
	TotalAmount       float64   `db:"total_amount"`
	ParticipantsCount int       `db:"participants_count"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type Participant struct {
	ID            string    `db:"id"`
	SessionID     string    `db:"session_id"`
	UserID        string    `db:"user_id"`
	Name          string    `db:"name"`
	WalletAddress string    `db:"wallet_address"`
	AddedBy       string    `db:"added_by"`
	IsOperator    bool      `db:"is_operator"`
	CreatedAt     time.Time `db:"created_at"`
}

// DisplayName prefers the human-readable name over the raw user id.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "User " + p.UserID
}

type Item struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Name      string    `db:"name"`
	Amount    float64   `db:"amount"`
	Tax       float64   `db:"tax"`
	Tip       float64   `db:"tip"`
	Assignees []string  `db:"assignees"`
	CreatedAt time.Time `db:"created_at"`
}

// Total is the full item cost including tax and tip.
func (i Item) Total() float64 {
	return i.Amount + i.Tax + i.Tip
}

type Payment struct {
	ID            string    `db:"id"`
	SessionID     string    `db:"session_id"`
	ParticipantID string    `db:"participant_id"`
	FromAddress   string    `db:"from_address"`
	ToAddress     string    `db:"to_address"`
	Amount        float64   `db:"amount"`
	TokenAddress  string    `db:"token_address"`
	Status        string    `db:"status"`
	TxHash        string    `db:"tx_hash"`
	CreatedAt     time.Time `db:"created_at"`
}

// SessionProjection is the full read snapshot splits are computed from.
type SessionProjection struct {
	Session      Session
	Participants []Participant
	Items        []Item
	Payments     []Payment
}

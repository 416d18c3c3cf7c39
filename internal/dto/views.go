package dto

import (
	"time"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
)

type SessionDTO struct {
	SessionID         string           `json:"sessionId"`
	MerchantID        string           `json:"merchantId"`
	MerchantWallet    string           `json:"merchantWallet,omitempty"`
	CreatedBy         string           `json:"createdBy,omitempty"`
	Status            string           `json:"status"`
	TotalAmount       float64          `json:"totalAmount"`
	ParticipantsCount int              `json:"participantsCount"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
	Participants      []ParticipantDTO `json:"participants"`
	Items             []ItemDTO        `json:"items"`
	Payments          []PaymentDTO     `json:"payments,omitempty"`
}

type ParticipantDTO struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name,omitempty"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	AddedBy       string    `json:"addedBy,omitempty"`
	IsOperator    bool      `json:"isOperator"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ItemDTO struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Tax       float64   `json:"tax"`
	Tip       float64   `json:"tip"`
	Assignees []string  `json:"assignees"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentDTO struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	FromAddress   string    `json:"fromAddress"`
	ToAddress     string    `json:"toAddress"`
	Amount        float64   `json:"amount"`
	TokenAddress  string    `json:"tokenAddress"`
	Status        string    `json:"status"`
	TxHash        string    `json:"txHash"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewParticipantDTO(p *domain.Participant) ParticipantDTO {
	return ParticipantDTO{
		ID:            p.ID,
		SessionID:     p.SessionID,
		UserID:        p.UserID,
		Name:          p.Name,
		WalletAddress: p.WalletAddress,
		AddedBy:       p.AddedBy,
		IsOperator:    p.IsOperator,
		CreatedAt:     p.CreatedAt,
	}
}

func NewItemDTO(item *domain.Item) ItemDTO {
	assignees := item.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return ItemDTO{
		ID:        item.ID,
		SessionID: item.SessionID,
		Name:      item.Name,
		Amount:    item.Amount,
		Tax:       item.Tax,
		Tip:       item.Tip,
		Assignees: assignees,
		CreatedAt: item.CreatedAt,
	}
}

func NewPaymentDTO(p *domain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID,
		SessionID:     p.SessionID,
		ParticipantID: p.ParticipantID,
		FromAddress:   p.FromAddress,
		ToAddress:     p.ToAddress,
		Amount:        p.Amount,
		TokenAddress:  p.TokenAddress,
		Status:        p.Status,
		TxHash:        p.TxHash,
		CreatedAt:     p.CreatedAt,
	}
}

// NewSessionDTO renders a full session projection for responses and
// realtime payloads.
func NewSessionDTO(projection *domain.SessionProjection) SessionDTO {
	s := projection.Session
	view := SessionDTO{
		SessionID:         s.SessionID,
		MerchantID:        s.MerchantID,
		MerchantWallet:    s.MerchantWallet,
		CreatedBy:         s.CreatedBy,
		Status:            s.Status,
		TotalAmount:       s.TotalAmount,
		ParticipantsCount: s.ParticipantsCount,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Participants:      make([]ParticipantDTO, 0, len(projection.Participants)),
		Items:             make([]ItemDTO, 0, len(projection.Items)),
	}
	for i := range projection.Participants {
		view.Participants = append(view.Participants, NewParticipantDTO(&projection.Participants[i]))
	}
	for i := range projection.Items {
		view.Items = append(view.Items, NewItemDTO(&projection.Items[i]))
	}
	for i := range projection.Payments {
		view.Payments = append(view.Payments, NewPaymentDTO(&projection.Payments[i]))
	}
	return view
}

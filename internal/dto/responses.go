package dto

import (
	"time"

	"github.com/santiagotarnoski/qrsplit/internal/service/splitservice"
)

type RealtimeInfoDTO struct {
	ConnectedUsers int  `json:"connectedUsers"`
	IsActive       bool `json:"isActive"`
}

type CreateSessionResponseDTO struct {
	Success   bool       `json:"success"`
	SessionID string     `json:"session_id"`
	Session   SessionDTO `json:"session"`
	QRCode    string     `json:"qr_code"`
	WebLink   string     `json:"web_link"`
}

type GetSessionResponseDTO struct {
	SessionDTO
	Realtime RealtimeInfoDTO `json:"realtime"`
}

type JoinSessionResponseDTO struct {
	Success     bool                 `json:"success"`
	Participant ParticipantDTO       `json:"participant"`
	Session     SessionDTO           `json:"session"`
	Splits      *splitservice.Result `json:"splits,omitempty"`
}

type ParticipantWalletResponseDTO struct {
	Success     bool           `json:"success"`
	Participant ParticipantDTO `json:"participant"`
}

type MerchantWalletResponseDTO struct {
	Success bool       `json:"success"`
	Session SessionDTO `json:"session"`
}

type AddItemResponseDTO struct {
	Success bool                 `json:"success"`
	Item    ItemDTO              `json:"item"`
	Session SessionDTO           `json:"session"`
	Splits  *splitservice.Result `json:"splits,omitempty"`
}

type UpdateAssigneesResponseDTO struct {
	Success bool                 `json:"success"`
	Item    ItemDTO              `json:"item"`
	Session SessionDTO           `json:"session"`
	Splits  *splitservice.Result `json:"splits,omitempty"`
}

type SplitsResponseDTO struct {
	Success bool                 `json:"success"`
	Splits  *splitservice.Result `json:"splits"`
}

type PayResponseDTO struct {
	Success        bool       `json:"success"`
	TxHash         string     `json:"txHash"`
	Payment        PaymentDTO `json:"payment"`
	ParticipantID  string     `json:"participantId"`
	MerchantWallet string     `json:"merchantWallet"`
}

type ParticipantPaymentDTO struct {
	ParticipantID string     `json:"participantId"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name,omitempty"`
	WalletAddress string     `json:"walletAddress,omitempty"`
	HasPaid       bool       `json:"hasPaid"`
	Amount        float64    `json:"amount"`
	TxHash        string     `json:"txHash,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type PaymentStatusResponseDTO struct {
	SessionID         string                  `json:"sessionId"`
	MerchantWallet    string                  `json:"merchantWallet,omitempty"`
	TotalParticipants int                     `json:"totalParticipants"`
	PaidParticipants  int                     `json:"paidParticipants"`
	TotalCollected    float64                 `json:"totalCollected"`
	TotalAmount       float64                 `json:"totalAmount"`
	IsFullyPaid       bool                    `json:"isFullyPaid"`
	Participants      []ParticipantPaymentDTO `json:"participants"`
}

type FinalizeResponseDTO struct {
	Success bool       `json:"success"`
	Session SessionDTO `json:"session"`
	Message string     `json:"message"`
}

type ConnectedUserDTO struct {
	ObserverID  string    `json:"observerId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	ConnectedAt time.Time `json:"connectedAt"`
}

type ConnectedUsersResponseDTO struct {
	ConnectedUsers int                `json:"connectedUsers"`
	Users          []ConnectedUserDTO `json:"users"`
	IsActive       bool               `json:"isActive"`
	LastActivity   *time.Time         `json:"lastActivity,omitempty"`
}

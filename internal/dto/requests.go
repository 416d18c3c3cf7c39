package dto

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/santiagotarnoski/qrsplit/pkg/numeral"
)

// FlexNumber accepts monetary input as a JSON number, a locale-ambiguous
// string ("2.000,50"), or null. Strings go through numeral.Normalize;
// anything unparseable decodes to 0 so validation can reject it.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*f = FlexNumber(numeral.Normalize(raw))
		return nil
	}

	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexNumber(value)
	return nil
}

type CreateSessionRequestDTO struct {
	MerchantID     string `json:"merchant_id" example:"merchant_42"`
	MerchantWallet string `json:"merchant_wallet,omitempty" example:"0xAbC123"`
	CreatedBy      string `json:"created_by,omitempty" example:"user_1"`
}

type JoinSessionRequestDTO struct {
	UserID        string `json:"user_id" example:"user_1"`
	Name          string `json:"name,omitempty" example:"Ana"`
	WalletAddress string `json:"wallet_address,omitempty" example:"0xAbC123"`
	AddedBy       string `json:"added_by,omitempty"`
	IsOperator    bool   `json:"is_operator,omitempty"`
}

type ParticipantWalletRequestDTO struct {
	WalletAddress string `json:"walletAddress" example:"0xAbC123"`
	Name          string `json:"name,omitempty"`
}

type MerchantWalletRequestDTO struct {
	WalletAddress string `json:"walletAddress" example:"0xAbC123"`
	UserID        string `json:"userId,omitempty"`
}

type AddItemRequestDTO struct {
	Name      string          `json:"name" example:"Pizza"`
	Amount    FlexNumber      `json:"amount" swaggertype:"string" example:"2.000,50"`
	Tax       FlexNumber      `json:"tax,omitempty" swaggertype:"string" example:"100"`
	Tip       FlexNumber      `json:"tip,omitempty" swaggertype:"string" example:"50"`
	Assignees []string        `json:"assignees,omitempty"`
	RawAmount json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw amount around so rejections can echo the
// exact input back to the client.
func (r *AddItemRequestDTO) UnmarshalJSON(data []byte) error {
	type alias AddItemRequestDTO
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var rawFields struct {
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &rawFields); err != nil {
		return err
	}
	decoded.RawAmount = rawFields.Amount
	*r = AddItemRequestDTO(decoded)
	return nil
}

type UpdateAssigneesRequestDTO struct {
	Assignees         []string `json:"assignees"`
	PreviousAssignees []string `json:"previousAssignees,omitempty"`
}

type PayRequestDTO struct {
	UserID        string     `json:"user_id,omitempty" example:"user_1"`
	WalletAddress string     `json:"wallet_address,omitempty" example:"0xAbC123"`
	Amount        FlexNumber `json:"amount" swaggertype:"number" example:"43.33"`
	TokenAddress  string     `json:"token_address,omitempty" example:"ETH"`
}

type CalculateSplitsRequestDTO struct {
	Method string `json:"method,omitempty" example:"proportional"`
}

package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// The ledger is a simulated settlement layer: payments always clear, a
// receipt only carries a generated transaction hash. A real chain
// integration is out of scope and would implement the same contract.

var ErrUnavailable = errors.New("ledger unavailable")

type Receipt struct {
	TxHash string `json:"tx_hash"`
}

type Ledger interface {
	Pay(ctx context.Context, fromAddress string, toAddress string, amount float64, tokenAddress string) (*Receipt, error)
}

// Mock is the in-process ledger used when no external simulator is
// configured.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Pay(_ context.Context, _ string, _ string, _ float64, _ string) (*Receipt, error) {
	return &Receipt{TxHash: generateTxHash()}, nil
}

func generateTxHash() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "0x0"
	}
	return "0x" + hex.EncodeToString(buf)
}

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/santiagotarnoski/qrsplit/pkg/clients"
	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

type payRequest struct {
	FromAddress  string  `json:"from_address"`
	ToAddress    string  `json:"to_address"`
	Amount       float64 `json:"amount"`
	TokenAddress string  `json:"token_address"`
}

// Client talks to an external ledger simulator over HTTP. Transient
// failures are retried with a growing backoff before giving up.
type Client struct {
	url    string
	client clients.HTTPClientI
}

func NewClient(url string, client clients.HTTPClientI) *Client {
	return &Client{
		url:    url,
		client: client,
	}
}

func (c *Client) Pay(ctx context.Context, fromAddress string, toAddress string, amount float64, tokenAddress string) (*Receipt, error) {
	body := payRequest{
		FromAddress:  fromAddress,
		ToAddress:    toAddress,
		Amount:       amount,
		TokenAddress: tokenAddress,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		statusCode, respBody, err := c.client.PostJSON(ctx, c.url+"/api/pay", body)
		if err != nil {
			lastErr = err
			zap.L().Warn("ledger call failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
			if attempt < maxRetries {
				time.Sleep(retryInterval * time.Duration(attempt))
			}
			continue
		}

		if statusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected ledger status code %d", statusCode)
			zap.L().Warn("ledger returned unexpected status", zap.Int("status", statusCode), zap.Int("attempt", attempt))
			if attempt < maxRetries {
				time.Sleep(retryInterval * time.Duration(attempt))
			}
			continue
		}

		var receipt Receipt
		if err := json.Unmarshal(respBody, &receipt); err != nil {
			return nil, fmt.Errorf("failed to parse ledger response: %w", err)
		}
		return &receipt, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

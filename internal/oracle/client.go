// Package oracle talks to the external credit-rating service. The service is
// a black box: given a customer id it returns the customer's rating and the
// time the rating was taken. The client packages the reply into a
// CreditRatingAssertion carrying the oracle's signer key, which the loan
// issuance flow countersigns into the transaction.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/logger"
)

type ratingRequest struct {
	CustomerID string `json:"customerId"`
}

type ratingResponse struct {
	CustomerName string    `json:"customerName"`
	CustomerID   string    `json:"customerId"`
	Rating       int       `json:"rating"`
	Time         time.Time `json:"time"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	oracleKey  string
	validity   time.Duration
}

func New(baseURL, oracleKey string, validity time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		oracleKey:  oracleKey,
		validity:   validity,
	}
}

func (c *Client) FetchAssertion(ctx context.Context, customerID string) (domain.CreditRatingAssertion, error) {
	logger.Info("oracle client fetch rating", logger.Fields{
		"customerId": customerID,
	})

	body, err := json.Marshal(ratingRequest{CustomerID: customerID})
	if err != nil {
		return domain.CreditRatingAssertion{}, fmt.Errorf("encode rating request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/creditRating", bytes.NewReader(body))
	if err != nil {
		return domain.CreditRatingAssertion{}, fmt.Errorf("build rating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.CreditRatingAssertion{}, fmt.Errorf("call credit rating service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.CreditRatingAssertion{}, fmt.Errorf("credit rating service returned status %d", resp.StatusCode)
	}

	var rating ratingResponse
	if err := json.NewDecoder(resp.Body).Decode(&rating); err != nil {
		return domain.CreditRatingAssertion{}, fmt.Errorf("decode rating response: %w", err)
	}
	if rating.CustomerID != customerID {
		return domain.CreditRatingAssertion{}, fmt.Errorf("credit rating service answered for customer %q, asked for %q", rating.CustomerID, customerID)
	}

	return domain.CreditRatingAssertion{
		CustomerID:   rating.CustomerID,
		CustomerName: rating.CustomerName,
		Rating:       rating.Rating,
		AssertedAt:   rating.Time,
		Validity:     c.validity,
		OracleKey:    c.oracleKey,
	}, nil
}

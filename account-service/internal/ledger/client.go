package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/models"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	opAppend = "append"
	opList   = "list"
	opDelete = "delete"
)

var errEmptyBody = errors.New("empty response body")

type Options struct {
	// BaseURL is the transaction collection, e.g. http://host:8081/api/bank/v1/transaction.
	BaseURL string
	Timeout time.Duration
	// BreakerEnabled puts a circuit breaker in front of the transport. It trips
	// after BreakerThreshold consecutive failures and stays open for BreakerCooldown.
	BreakerEnabled   bool
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

// Client is the HTTP LedgerClient. Each call makes exactly one attempt.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var _ domain.LedgerClient = (*Client)(nil)

func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}
	if opts.BreakerEnabled {
		c.breaker = newBreaker(opts, logger)
	}
	return c
}

func newBreaker(opts Options, logger *zap.Logger) *gobreaker.CircuitBreaker {
	threshold := opts.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

type appendRequest struct {
	AccountID int64            `json:"accountId"`
	Amount    decimal.Decimal  `json:"amount"`
	Type      models.EntryType `json:"type"`
}

func (c *Client) Append(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryType) (*models.LedgerEntry, error) {
	body, err := json.Marshal(appendRequest{AccountID: accountID, Amount: amount, Type: kind})
	if err != nil {
		return nil, fmt.Errorf("encode ledger entry: %w", err)
	}

	data, err := c.do(ctx, opAppend, http.MethodPut, c.baseURL, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.LedgerProtocolError{Op: opAppend, Err: errEmptyBody}
	}

	var entry models.LedgerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, &domain.LedgerProtocolError{Op: opAppend, Err: err}
	}
	if entry.ID == 0 {
		return nil, &domain.LedgerProtocolError{Op: opAppend, Err: errors.New("entry has no id")}
	}
	return &entry, nil
}

// ListByAccount returns an empty, non-nil slice when the account has no entries.
func (c *Client) ListByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error) {
	query := url.Values{"accountId": {strconv.FormatInt(accountID, 10)}}
	data, err := c.do(ctx, opList, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.LedgerProtocolError{Op: opList, Err: errEmptyBody}
	}

	var entries []models.LedgerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &domain.LedgerProtocolError{Op: opList, Err: err}
	}
	if entries == nil {
		return nil, &domain.LedgerProtocolError{Op: opList, Err: errors.New("null entry list")}
	}
	return entries, nil
}

// DeleteByID treats a missing entry as deleted.
func (c *Client) DeleteByID(ctx context.Context, id int64) error {
	_, err := c.do(ctx, opDelete, http.MethodDelete, c.baseURL+"/"+strconv.FormatInt(id, 10), nil, http.StatusNotFound)
	return err
}

// do sends one request and returns the body of a 2xx (or extra accepted)
// response. Every failure comes back as a *domain.LedgerTransportError.
func (c *Client) do(ctx context.Context, op, method, target string, body []byte, accepted ...int) ([]byte, error) {
	call := func() (any, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, &domain.LedgerTransportError{Op: op, Err: err}
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &domain.LedgerTransportError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &domain.LedgerTransportError{Op: op, Err: err}
		}
		if !statusAccepted(resp.StatusCode, accepted) {
			return nil, &domain.LedgerTransportError{Op: op, StatusCode: resp.StatusCode}
		}
		return data, nil
	}

	var (
		result any
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(call)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &domain.LedgerTransportError{Op: op, Err: err}
		}
	} else {
		result, err = call()
	}
	if err != nil {
		c.logger.Warn("ledger call failed", zap.String("op", op), zap.String("url", target), zap.Error(err))
		return nil, err
	}
	return result.([]byte), nil
}

func statusAccepted(status int, extra []int) bool {
	if status >= 200 && status < 300 {
		return true
	}
	for _, s := range extra {
		if status == s {
			return true
		}
	}
	return false
}

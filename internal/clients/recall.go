// Package clients talks to the agent competition REST API: balances, trade
// history, and trade execution.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"recallctl/internal/chains"
	"recallctl/internal/domain"
	"recallctl/pkg/retrier"
)

const (
	balancesPath = "/api/agent/balances"
	tradesPath   = "/api/agent/trades"
	executePath  = "/api/trade/execute"

	defaultTimeout = 30 * time.Second
)

// ParseMode decides what happens to malformed numeric fields in API
// responses: Lenient zeroes them and keeps going, Strict fails the call.
// The decision is made once, by the caller, at construction time.
type ParseMode int

const (
	ParseLenient ParseMode = iota
	ParseStrict
)

// RecallClient is the execution-API client. Read endpoints are retried with
// backoff; trade execution is submitted exactly once.
type RecallClient struct {
	baseURL string
	key     string
	http    *http.Client
	retr    *retrier.Retrier
	venues  *chains.Registry
	mode    ParseMode
	log     *zap.Logger

	malformed atomic.Uint64
}

// NewRecallClient returns a client for the API at baseURL authenticating
// with the agent's bearer key.
func NewRecallClient(baseURL, key string, venues *chains.Registry, mode ParseMode, log *zap.Logger) *RecallClient {
	return &RecallClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: defaultTimeout},
		retr:    retrier.New(3, time.Second, 10*time.Second),
		venues:  venues,
		mode:    mode,
		log:     log,
	}
}

// MalformedFields returns how many numeric fields were zeroed in lenient
// mode since the client was built.
func (c *RecallClient) MalformedFields() uint64 {
	return c.malformed.Load()
}

// Balances fetches the agent's current holdings.
func (c *RecallClient) Balances(ctx context.Context) ([]domain.Balance, error) {
	var payload struct {
		Balances []balanceWire `json:"balances"`
	}
	raw, err := retrier.DoWithData(ctx, c.retr, func(ctx context.Context) (json.RawMessage, error) {
		return c.get(ctx, balancesPath)
	})
	if err != nil {
		return nil, err
	}
	wires, err := decodeEnvelope(raw, &payload, func() []balanceWire { return payload.Balances })
	if err != nil {
		return nil, errors.Wrap(err, "decode balances")
	}

	balances := make([]domain.Balance, 0, len(wires))
	for i := range wires {
		b, err := wires[i].toDomain(c)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// Trades fetches the full trade history. Ordering is whatever the API
// returns; the ledger re-sorts.
func (c *RecallClient) Trades(ctx context.Context) ([]domain.TradeRecord, error) {
	var payload struct {
		Trades []tradeWire `json:"trades"`
	}
	raw, err := retrier.DoWithData(ctx, c.retr, func(ctx context.Context) (json.RawMessage, error) {
		return c.get(ctx, tradesPath)
	})
	if err != nil {
		return nil, err
	}
	wires, err := decodeEnvelope(raw, &payload, func() []tradeWire { return payload.Trades })
	if err != nil {
		return nil, errors.Wrap(err, "decode trades")
	}

	trades := make([]domain.TradeRecord, 0, len(wires))
	for i := range wires {
		t, err := wires[i].toDomain(c)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// BalanceAmount returns the held amount of a token on a venue, matching by
// symbol or address. Zero when the token is not held.
func (c *RecallClient) BalanceAmount(ctx context.Context, venue, token string) (decimal.Decimal, error) {
	balances, err := c.Balances(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	meta, ok := c.venues.Get(venue)
	if !ok {
		return decimal.Zero, errors.Errorf("unknown venue %q", venue)
	}

	upper := strings.ToUpper(token)
	lower := strings.ToLower(token)
	for i := range balances {
		b := &balances[i]
		if b.Venue != meta.Specific {
			continue
		}
		if strings.ToUpper(b.Symbol) == upper || (lower != "" && strings.ToLower(b.Address) == lower) {
			return b.Amount, nil
		}
	}
	return decimal.Zero, nil
}

// ExecuteTrade submits one swap and reports its settled outcome. Never
// retried: a timed-out order may still have filled.
func (c *RecallClient) ExecuteTrade(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	from, err := c.venues.MustGet(req.FromVenue)
	if err != nil {
		return domain.OrderResult{}, err
	}
	to, err := c.venues.MustGet(req.ToVenue)
	if err != nil {
		return domain.OrderResult{}, err
	}

	payload := executeWire{
		FromToken:         req.FromToken,
		ToToken:           req.ToToken,
		Amount:            req.Amount.String(),
		SlippageTolerance: req.Slippage,
		FromChain:         from.Family,
		ToChain:           to.Family,
		FromSpecificChain: from.Specific,
		ToSpecificChain:   to.Specific,
		Reason:            req.Reason,
	}

	var resp struct {
		Transaction transactionWire `json:"transaction"`
	}
	if err := c.post(ctx, executePath, payload, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return resp.Transaction.toDomain(c)
}

func (c *RecallClient) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	return c.do(req)
}

func (c *RecallClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return err
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode response")
}

func (c *RecallClient) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("%s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// parseDecimal applies the client's ParseMode to one numeric field. Missing
// fields are zero, not malformed.
func (c *RecallClient) parseDecimal(field string, raw looseNumber) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err == nil {
		return d, nil
	}
	if c.mode == ParseStrict {
		return decimal.Zero, errors.Wrapf(err, "malformed %s %q", field, s)
	}

	c.malformed.Add(1)
	c.log.Warn("malformed numeric field zeroed",
		zap.String("field", field),
		zap.String("value", s))
	return decimal.Zero, nil
}

package clients

import (
	"bytes"
	"encoding/json"

	"recallctl/internal/domain"
)

// unknownVenue stands in when the API returns an entry with no chain at all,
// so such entries still get a stable asset key.
const unknownVenue = "?"

// looseNumber captures a JSON field the API serves inconsistently as number,
// string, or null. The raw text is kept and parsed under the client's
// ParseMode.
type looseNumber string

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	if string(s) == "null" {
		*n = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*n = looseNumber(s)
	return nil
}

// decodeEnvelope handles both response shapes the API serves: an object
// wrapping the list, or the bare list itself.
func decodeEnvelope[T any](raw json.RawMessage, envelope any, items func() []T) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	if err := json.Unmarshal(trimmed, envelope); err != nil {
		return nil, err
	}
	return items(), nil
}

func venueOf(specific, family string) string {
	if specific != "" {
		return specific
	}
	if family != "" {
		return family
	}
	return unknownVenue
}

type balanceWire struct {
	Symbol        string      `json:"symbol"`
	Address       string      `json:"address"`
	Chain         string      `json:"chain"`
	SpecificChain string      `json:"specificChain"`
	Amount        looseNumber `json:"amount"`
	Value         looseNumber `json:"value"`
}

func (w *balanceWire) toDomain(c *RecallClient) (domain.Balance, error) {
	amount, err := c.parseDecimal("balance amount", w.Amount)
	if err != nil {
		return domain.Balance{}, err
	}
	value, err := c.parseDecimal("balance value", w.Value)
	if err != nil {
		return domain.Balance{}, err
	}

	return domain.Balance{
		Symbol:   w.Symbol,
		Address:  w.Address,
		Venue:    venueOf(w.SpecificChain, w.Chain),
		Amount:   amount,
		ValueUsd: value,
	}, nil
}

type tradeWire struct {
	FromTokenSymbol   string      `json:"fromTokenSymbol"`
	FromTokenAddress  string      `json:"fromTokenAddress"`
	FromChain         string      `json:"fromChain"`
	FromSpecificChain string      `json:"fromSpecificChain"`
	FromAmount        looseNumber `json:"fromAmount"`
	ToTokenSymbol     string      `json:"toTokenSymbol"`
	ToTokenAddress    string      `json:"toTokenAddress"`
	ToChain           string      `json:"toChain"`
	ToSpecificChain   string      `json:"toSpecificChain"`
	ToAmount          looseNumber `json:"toAmount"`
	TradeAmountUsd    looseNumber `json:"tradeAmountUsd"`
	Timestamp         string      `json:"timestamp"`
	Reason            string      `json:"reason"`
}

func (w *tradeWire) toDomain(c *RecallClient) (domain.TradeRecord, error) {
	fromAmount, err := c.parseDecimal("trade fromAmount", w.FromAmount)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	toAmount, err := c.parseDecimal("trade toAmount", w.ToAmount)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	valueUsd, err := c.parseDecimal("trade tradeAmountUsd", w.TradeAmountUsd)
	if err != nil {
		return domain.TradeRecord{}, err
	}

	return domain.TradeRecord{
		FromSymbol:  w.FromTokenSymbol,
		FromAddress: w.FromTokenAddress,
		FromVenue:   venueOf(w.FromSpecificChain, w.FromChain),
		FromAmount:  fromAmount,
		ToSymbol:    w.ToTokenSymbol,
		ToAddress:   w.ToTokenAddress,
		ToVenue:     venueOf(w.ToSpecificChain, w.ToChain),
		ToAmount:    toAmount,
		ValueUsd:    valueUsd,
		Timestamp:   w.Timestamp,
		Reason:      w.Reason,
	}, nil
}

type executeWire struct {
	FromToken         string `json:"fromToken"`
	ToToken           string `json:"toToken"`
	Amount            string `json:"amount"`
	SlippageTolerance string `json:"slippageTolerance"`
	FromChain         string `json:"fromChain"`
	ToChain           string `json:"toChain"`
	FromSpecificChain string `json:"fromSpecificChain"`
	ToSpecificChain   string `json:"toSpecificChain"`
	Reason            string `json:"reason"`
}

type transactionWire struct {
	Success         bool        `json:"success"`
	FromTokenSymbol string      `json:"fromTokenSymbol"`
	ToTokenSymbol   string      `json:"toTokenSymbol"`
	FromAmount      looseNumber `json:"fromAmount"`
	ToAmount        looseNumber `json:"toAmount"`
	Price           looseNumber `json:"price"`
	TradeAmountUsd  looseNumber `json:"tradeAmountUsd"`
	Reason          string      `json:"reason"`
	Timestamp       string      `json:"timestamp"`
}

func (w *transactionWire) toDomain(c *RecallClient) (domain.OrderResult, error) {
	fromAmount, err := c.parseDecimal("transaction fromAmount", w.FromAmount)
	if err != nil {
		return domain.OrderResult{}, err
	}
	toAmount, err := c.parseDecimal("transaction toAmount", w.ToAmount)
	if err != nil {
		return domain.OrderResult{}, err
	}
	price, err := c.parseDecimal("transaction price", w.Price)
	if err != nil {
		return domain.OrderResult{}, err
	}
	valueUsd, err := c.parseDecimal("transaction tradeAmountUsd", w.TradeAmountUsd)
	if err != nil {
		return domain.OrderResult{}, err
	}

	return domain.OrderResult{
		Success:    w.Success,
		FromSymbol: w.FromTokenSymbol,
		ToSymbol:   w.ToTokenSymbol,
		FromAmount: fromAmount,
		ToAmount:   toAmount,
		Price:      price,
		ValueUsd:   valueUsd,
		Reason:     w.Reason,
		Timestamp:  w.Timestamp,
	}, nil
}

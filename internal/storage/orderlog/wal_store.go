// Package orderlog persists submitted orders and their outcomes in an
// append-only WAL so the console can show recent activity across restarts.
// Positions are never persisted; they are rebuilt from trade history.
package orderlog

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultDir       = "./wal/orders"
	segmentThreshold = 1000
	maxSegments      = 100
	entryKeyPrefix   = "order_"
)

// Entry is one journaled order submission.
type Entry struct {
	ClientOrderID string          `json:"client_order_id"`
	FromToken     string          `json:"from_token"`
	ToToken       string          `json:"to_token"`
	FromVenue     string          `json:"from_venue"`
	ToVenue       string          `json:"to_venue"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

// Store is a WAL-backed order journal.
type Store struct {
	wal *gowal.Wal
	mu  sync.Mutex
}

// NewStore opens (or creates) the journal under dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "orders_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init order journal WAL")
	}
	return &Store{wal: wal}, nil
}

// Append journals one order submission.
func (s *Store) Append(e Entry) error {
	if s == nil || s.wal == nil {
		return errors.New("order journal is not initialized")
	}
	if e.ClientOrderID == "" {
		return errors.New("client order id is required")
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal order entry")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.wal.CurrentIndex() + 1
	return s.wal.Write(next, entryKeyPrefix+e.ClientOrderID, payload)
}

// Recent returns up to n most recent entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("order journal is not initialized")
	}
	if n <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, n)
	for idx := s.wal.CurrentIndex(); idx > 0 && len(entries) < n; idx-- {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, entryKeyPrefix) {
			continue
		}
		var e Entry
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, errors.Wrapf(err, "unmarshal order entry at index %d", idx)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close releases the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}
	return s.wal.Close()
}

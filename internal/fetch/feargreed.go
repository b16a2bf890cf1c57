package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// FearGreed fetches the alternative.me Fear & Greed index. Incremental runs
// take the last few days; an empty store takes the full history (limit 0).
type FearGreed struct {
	baseURL   string
	client    *http.Client
	sentiment storage.SentimentStore
	limit     int
	log       *zap.Logger
}

// FearGreedOptions for creating FearGreed.
type FearGreedOptions struct {
	BaseURL        string
	Client         *http.Client
	SentimentStore storage.SentimentStore

	// Limit bounds incremental fetches. <= 0 falls back to 30.
	Limit int

	Logger *zap.Logger
}

// NewFearGreed creates a new FearGreed source.
func NewFearGreed(opts FearGreedOptions) *FearGreed {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Limit <= 0 {
		opts.Limit = 30
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &FearGreed{
		baseURL:   opts.BaseURL,
		client:    opts.Client,
		sentiment: opts.SentimentStore,
		limit:     opts.Limit,
		log:       opts.Logger,
	}
}

var _ Source = (*FearGreed)(nil)

// Name identifies the source.
func (f *FearGreed) Name() string { return "feargreed" }

// fngResponse mirrors /fng/. The API returns every field as a string.
type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

// Fetch reads the index. limit=0 asks the API for the full history.
func (f *FearGreed) Fetch(ctx context.Context) ([]domain.TableBatch, error) {
	limit := f.limit
	if _, err := f.sentiment.Latest(ctx); errors.Is(err, storage.ErrNotFound) {
		f.log.Info("sentiment store empty, fetching full history")
		limit = 0
	} else if err != nil {
		return nil, fmt.Errorf("probe sentiment store: %w", err)
	}

	endpoint := fmt.Sprintf("%s/fng/?limit=%d&format=json", f.baseURL, limit)

	var resp fngResponse
	if err := getJSON(ctx, f.client, endpoint, &resp); err != nil {
		return nil, err
	}

	var rows []domain.Row
	for _, d := range resp.Data {
		ts, err := strconv.ParseInt(d.Timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse fng timestamp %q: %w", d.Timestamp, err)
		}
		value, err := strconv.ParseFloat(d.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse fng value %q: %w", d.Value, err)
		}
		rows = append(rows, domain.SentimentObservation{
			Timestamp:      ts,
			Value:          value,
			Classification: d.Classification,
		}.Row())
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return []domain.TableBatch{{Table: domain.SentimentTable.Name, Rows: rows}}, nil
}

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// CoinGecko fetches market-chart prices incrementally from the stored
// high-water timestamp, plus the daily supply and dominance snapshots.
type CoinGecko struct {
	baseURL string
	client  *http.Client
	prices  storage.PriceStore

	assets       []string
	backfillDays int

	log *zap.Logger
	now func() time.Time
}

// CoinGeckoOptions for creating CoinGecko.
type CoinGeckoOptions struct {
	BaseURL    string
	Client     *http.Client
	PriceStore storage.PriceStore

	// Assets are CoinGecko coin ids, e.g. "bitcoin", "ethereum".
	Assets []string

	// BackfillDays bounds the first fetch when an asset has no rows yet.
	BackfillDays int

	Logger *zap.Logger
}

// NewCoinGecko creates a new CoinGecko source.
func NewCoinGecko(opts CoinGeckoOptions) *CoinGecko {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.BackfillDays <= 0 {
		opts.BackfillDays = 360
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CoinGecko{
		baseURL:      opts.BaseURL,
		client:       opts.Client,
		prices:       opts.PriceStore,
		assets:       opts.Assets,
		backfillDays: opts.BackfillDays,
		log:          opts.Logger,
		now:          time.Now,
	}
}

var _ Source = (*CoinGecko)(nil)

// Name identifies the source.
func (c *CoinGecko) Name() string { return "coingecko" }

// marketChartResponse mirrors /coins/{id}/market_chart/range. Each entry is
// a [millisecond timestamp, value] pair.
type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

type coinInfoResponse struct {
	MarketData struct {
		CirculatingSupply float64 `json:"circulating_supply"`
		MarketCap         struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
	} `json:"market_data"`
}

type globalResponse struct {
	Data struct {
		TotalMarketCap struct {
			USD float64 `json:"usd"`
		} `json:"total_market_cap"`
	} `json:"data"`
}

// Fetch pulls price rows for every configured asset plus today's supply and
// dominance snapshots. A failing asset is logged and skipped so the
// remaining assets and snapshots still land.
func (c *CoinGecko) Fetch(ctx context.Context) ([]domain.TableBatch, error) {
	var batches []domain.TableBatch

	var priceRows []domain.Row
	for _, asset := range c.assets {
		rows, err := c.fetchPrices(ctx, asset)
		if err != nil {
			c.log.Warn("price fetch failed",
				zap.String("asset", asset),
				zap.Error(err))
			continue
		}
		priceRows = append(priceRows, rows...)
	}
	if len(priceRows) > 0 {
		batches = append(batches, domain.TableBatch{Table: domain.PriceTable.Name, Rows: priceRows})
	}

	info, err := c.fetchCoinInfo(ctx, "bitcoin")
	if err != nil {
		c.log.Warn("coin info fetch failed", zap.Error(err))
		return batches, nil
	}

	midnight := c.todayMidnightUTC()
	if supply := info.MarketData.CirculatingSupply; supply > 0 {
		batches = append(batches, domain.TableBatch{
			Table: domain.SupplyTable.Name,
			Rows: []domain.Row{
				domain.SupplySnapshot{Timestamp: midnight, CirculatingSupply: supply}.Row(),
			},
		})
	}

	var global globalResponse
	if err := getJSON(ctx, c.client, c.baseURL+"/global", &global); err != nil {
		c.log.Warn("global data fetch failed", zap.Error(err))
		return batches, nil
	}
	btcMcap := info.MarketData.MarketCap.USD
	totalMcap := global.Data.TotalMarketCap.USD
	if btcMcap > 0 && totalMcap > 0 {
		batches = append(batches, domain.TableBatch{
			Table: domain.DominanceTable.Name,
			Rows: []domain.Row{
				domain.DominanceSnapshot{
					Timestamp: midnight,
					Dominance: btcMcap / totalMcap * 100,
				}.Row(),
			},
		})
	}

	return batches, nil
}

// fetchPrices reads the market chart from one second past the stored
// high-water timestamp (or the backfill window on an empty store) to now.
func (c *CoinGecko) fetchPrices(ctx context.Context, asset string) ([]domain.Row, error) {
	to := c.now().UTC().Unix()

	last, err := c.prices.LatestTimestamp(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("read watermark: %w", err)
	}
	from := last + 1
	if last == 0 {
		from = to - int64(c.backfillDays)*86400
	}
	if from >= to {
		c.log.Debug("price data up to date", zap.String("asset", asset))
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		c.baseURL, url.PathEscape(asset), from, to)

	var chart marketChartResponse
	if err := getJSON(ctx, c.client, endpoint, &chart); err != nil {
		return nil, err
	}

	mcaps := byTimestamp(chart.MarketCaps)
	volumes := byTimestamp(chart.TotalVolumes)

	var rows []domain.Row
	for _, p := range chart.Prices {
		ts := int64(p[0]) / 1000
		if ts < from {
			continue
		}
		rows = append(rows, domain.PriceObservation{
			Timestamp: ts,
			AssetID:   asset,
			Price:     p[1],
			MarketCap: mcaps[int64(p[0])],
			Volume:    volumes[int64(p[0])],
		}.Row())
	}
	c.log.Debug("fetched prices",
		zap.String("asset", asset),
		zap.Int("rows", len(rows)))
	return rows, nil
}

func (c *CoinGecko) fetchCoinInfo(ctx context.Context, asset string) (*coinInfoResponse, error) {
	endpoint := fmt.Sprintf(
		"%s/coins/%s?market_data=true&localization=false&tickers=false&community_data=false&developer_data=false&sparkline=false",
		c.baseURL, url.PathEscape(asset))

	var info coinInfoResponse
	if err := getJSON(ctx, c.client, endpoint, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *CoinGecko) todayMidnightUTC() int64 {
	t := c.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// byTimestamp indexes [ms, value] pairs by their millisecond timestamp.
func byTimestamp(pairs [][2]float64) map[int64]float64 {
	m := make(map[int64]float64, len(pairs))
	for _, p := range pairs {
		m[int64(p[0])] = p[1]
	}
	return m
}

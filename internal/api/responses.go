package api

import "cycle-radar/internal/domain"

// Wire shapes for the query API. Field names match the stored column names
// so API consumers and SQL consumers read the same vocabulary.

type priceRow struct {
	Timestamp int64   `json:"timestamp"`
	AssetID   string  `json:"asset_id"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Volume    float64 `json:"total_volume"`
}

type sentimentRow struct {
	Timestamp      int64   `json:"timestamp"`
	Value          float64 `json:"value"`
	Classification string  `json:"value_classification"`
}

func toSentimentRow(o domain.SentimentObservation) sentimentRow {
	return sentimentRow{Timestamp: o.Timestamp, Value: o.Value, Classification: o.Classification}
}

type trendRow struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

func toTrendRow(o domain.TrendObservation) trendRow {
	return trendRow{Date: o.Date, Score: o.Score}
}

type macroRow struct {
	Date       string  `json:"date"`
	Ticker     string  `json:"ticker"`
	ClosePrice float64 `json:"close_price"`
}

func toMacroRow(o domain.MacroObservation) macroRow {
	return macroRow{Date: o.Date, Ticker: o.Ticker, ClosePrice: o.ClosePrice}
}

type dominanceRow struct {
	Timestamp int64   `json:"timestamp"`
	Dominance float64 `json:"dominance"`
}

func toDominanceRow(o domain.DominanceSnapshot) dominanceRow {
	return dominanceRow{Timestamp: o.Timestamp, Dominance: o.Dominance}
}

type piCycleRow struct {
	Timestamp     int64   `json:"timestamp"`
	BTCPrice      float64 `json:"btc_price"`
	SMA111        float64 `json:"sma_111"`
	SMA350Doubled float64 `json:"sma_350_x2"`
	Signal        string  `json:"signal"`
}

func toPiCycleRow(r domain.PiCycleRow) piCycleRow {
	return piCycleRow{
		Timestamp:     r.Timestamp,
		BTCPrice:      r.BTCPrice,
		SMA111:        r.SMA111,
		SMA350Doubled: r.SMA350Doubled,
		Signal:        r.Signal,
	}
}

type wma200Row struct {
	Timestamp int64   `json:"timestamp"`
	BTCPrice  float64 `json:"btc_price"`
	WMA200    float64 `json:"wma_200"`
}

func toWMA200Row(r domain.WMA200Row) wma200Row {
	return wma200Row{Timestamp: r.Timestamp, BTCPrice: r.BTCPrice, WMA200: r.WMA200}
}

type s2fRow struct {
	Timestamp  int64   `json:"timestamp"`
	BTCPrice   float64 `json:"btc_price"`
	Ratio      float64 `json:"ratio"`
	ModelPrice float64 `json:"model_price"`
}

func toS2FRow(r domain.S2FRow) s2fRow {
	return s2fRow{Timestamp: r.Timestamp, BTCPrice: r.BTCPrice, Ratio: r.Ratio, ModelPrice: r.ModelPrice}
}

type puellRow struct {
	Timestamp        int64   `json:"timestamp"`
	BTCPrice         float64 `json:"btc_price"`
	IssuanceUSD      float64 `json:"issuance_usd"`
	IssuanceUSD365MA float64 `json:"issuance_usd_365ma"`
	Multiple         float64 `json:"multiple"`
}

func toPuellRow(r domain.PuellRow) puellRow {
	return puellRow{
		Timestamp:        r.Timestamp,
		BTCPrice:         r.BTCPrice,
		IssuanceUSD:      r.IssuanceUSD,
		IssuanceUSD365MA: r.IssuanceUSD365MA,
		Multiple:         r.Multiple,
	}
}

package domain

// PriceObservation is one market data point for one asset.
// Corresponds to a row in the crypto_prices table.
type PriceObservation struct {
	Timestamp int64   // Unix timestamp in seconds (UTC)
	AssetID   string  // e.g. "bitcoin", "ethereum"
	Price     float64 // close price in the quote currency
	MarketCap float64
	Volume    float64
}

// PricePoint is the minimal (timestamp, price) view of a price series
// consumed by the rolling metric calculations.
type PricePoint struct {
	Timestamp int64
	Price     float64
}

// SentimentObservation is one Fear & Greed index reading (0-100).
// Corresponds to a row in the sentiment_index table.
type SentimentObservation struct {
	Timestamp      int64
	Value          float64
	Classification string // label reported by the upstream index ("Greed", "Fear", ...)
}

// TrendObservation is one daily search-interest score (0-100).
// Corresponds to a row in the trend_scores table. The upstream service
// may revise recent days, so arrival can be out of order.
type TrendObservation struct {
	Date  string // YYYY-MM-DD
	Score float64
}

// MacroObservation is one (ticker, trading day) close.
// Corresponds to a row in the macro_indicators table.
type MacroObservation struct {
	Date       string // YYYY-MM-DD
	Ticker     string // e.g. "SPX", "Gold", "DXY", "US10Y"
	ClosePrice float64
}

// SupplySnapshot is one daily circulating-supply reading.
// Corresponds to a row in the supply_snapshots table.
type SupplySnapshot struct {
	Timestamp         int64
	CirculatingSupply float64
}

// DominanceSnapshot is one daily BTC dominance reading in percent.
// Corresponds to a row in the dominance_snapshots table.
type DominanceSnapshot struct {
	Timestamp int64
	Dominance float64
}

// Row returns the observation as a tabular row matching PriceTable.
func (o PriceObservation) Row() Row {
	return Row{
		"timestamp":    o.Timestamp,
		"asset_id":     o.AssetID,
		"price":        o.Price,
		"market_cap":   o.MarketCap,
		"total_volume": o.Volume,
	}
}

// Row returns the observation as a tabular row matching SentimentTable.
func (o SentimentObservation) Row() Row {
	return Row{
		"timestamp":            o.Timestamp,
		"value":                o.Value,
		"value_classification": o.Classification,
	}
}

// Row returns the observation as a tabular row matching TrendTable.
func (o TrendObservation) Row() Row {
	return Row{"date": o.Date, "score": o.Score}
}

// Row returns the observation as a tabular row matching MacroTable.
func (o MacroObservation) Row() Row {
	return Row{"date": o.Date, "ticker": o.Ticker, "close_price": o.ClosePrice}
}

// Row returns the snapshot as a tabular row matching SupplyTable.
func (o SupplySnapshot) Row() Row {
	return Row{"timestamp": o.Timestamp, "circulating_supply": o.CirculatingSupply}
}

// Row returns the snapshot as a tabular row matching DominanceTable.
func (o DominanceSnapshot) Row() Row {
	return Row{"timestamp": o.Timestamp, "dominance": o.Dominance}
}

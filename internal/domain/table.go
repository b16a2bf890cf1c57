package domain

// ColumnKind is the semantic type of a column, used by the merge engine to
// canonicalize key values. Numeric covers both integers and floats so a key
// that drifts between the two (e.g. an integer timestamp read back as a
// float) still compares equal. Date covers calendar-day columns stored as
// YYYY-MM-DD text; unix-second timestamps are Numeric, not Date, so points
// on the same day never collapse into one key.
type ColumnKind int

const (
	KindNumeric ColumnKind = iota
	KindDate
	KindText
)

// Column describes one column of a raw table.
type Column struct {
	Name string
	Kind ColumnKind
}

// TableSpec describes a raw observation table: its columns and the subset
// forming the primary key. The merge engine and the spec-driven store
// implementations are both driven by it.
type TableSpec struct {
	Name       string
	Columns    []Column
	KeyColumns []string
}

// Column returns the column with the given name, if present.
func (s TableSpec) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row is one tabular record keyed by column name, as handed over by an
// upstream fetcher. A row's schema must be a superset of the target table's.
type Row map[string]any

// TableBatch binds a set of fetched rows to their target raw table.
type TableBatch struct {
	Table string
	Rows  []Row
}

// Raw table specs. Primary-key uniqueness on these is enforced both by the
// merge engine's key check and by the store schema.
var (
	PriceTable = TableSpec{
		Name: "crypto_prices",
		Columns: []Column{
			{Name: "timestamp", Kind: KindNumeric},
			{Name: "asset_id", Kind: KindText},
			{Name: "price", Kind: KindNumeric},
			{Name: "market_cap", Kind: KindNumeric},
			{Name: "total_volume", Kind: KindNumeric},
		},
		KeyColumns: []string{"timestamp", "asset_id"},
	}

	SentimentTable = TableSpec{
		Name: "sentiment_index",
		Columns: []Column{
			{Name: "timestamp", Kind: KindNumeric},
			{Name: "value", Kind: KindNumeric},
			{Name: "value_classification", Kind: KindText},
		},
		KeyColumns: []string{"timestamp"},
	}

	TrendTable = TableSpec{
		Name: "trend_scores",
		Columns: []Column{
			{Name: "date", Kind: KindDate},
			{Name: "score", Kind: KindNumeric},
		},
		KeyColumns: []string{"date"},
	}

	MacroTable = TableSpec{
		Name: "macro_indicators",
		Columns: []Column{
			{Name: "date", Kind: KindDate},
			{Name: "ticker", Kind: KindText},
			{Name: "close_price", Kind: KindNumeric},
		},
		KeyColumns: []string{"date", "ticker"},
	}

	SupplyTable = TableSpec{
		Name: "supply_snapshots",
		Columns: []Column{
			{Name: "timestamp", Kind: KindNumeric},
			{Name: "circulating_supply", Kind: KindNumeric},
		},
		KeyColumns: []string{"timestamp"},
	}

	DominanceTable = TableSpec{
		Name: "dominance_snapshots",
		Columns: []Column{
			{Name: "timestamp", Kind: KindNumeric},
			{Name: "dominance", Kind: KindNumeric},
		},
		KeyColumns: []string{"timestamp"},
	}
)

// RawTables lists every raw table spec, keyed by table name.
var RawTables = map[string]TableSpec{
	PriceTable.Name:     PriceTable,
	SentimentTable.Name: SentimentTable,
	TrendTable.Name:     TrendTable,
	MacroTable.Name:     MacroTable,
	SupplyTable.Name:    SupplyTable,
	DominanceTable.Name: DominanceTable,
}

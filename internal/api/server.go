// Package api serves the read-only HTTP query surface over the stored raw
// series, derived indicators, and the classified risk snapshot.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/risk"
	"cycle-radar/internal/storage"
)

const (
	defaultHistoryLimit = 365
	maxHistoryLimit     = 730
)

// Server exposes the query API. All endpoints are read-only.
type Server struct {
	assessor *risk.Assessor

	prices    storage.PriceStore
	sentiment storage.SentimentStore
	trend     storage.TrendStore
	macro     storage.MacroStore
	dominance storage.DominanceStore
	piCycle   storage.PiCycleStore
	wma200    storage.WMA200Store
	s2f       storage.S2FStore
	puell     storage.PuellStore

	log *zap.Logger
}

// Options for creating Server.
type Options struct {
	Assessor *risk.Assessor

	PriceStore     storage.PriceStore
	SentimentStore storage.SentimentStore
	TrendStore     storage.TrendStore
	MacroStore     storage.MacroStore
	DominanceStore storage.DominanceStore
	PiCycleStore   storage.PiCycleStore
	WMA200Store    storage.WMA200Store
	S2FStore       storage.S2FStore
	PuellStore     storage.PuellStore

	Logger *zap.Logger
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		assessor:  opts.Assessor,
		prices:    opts.PriceStore,
		sentiment: opts.SentimentStore,
		trend:     opts.TrendStore,
		macro:     opts.MacroStore,
		dominance: opts.DominanceStore,
		piCycle:   opts.PiCycleStore,
		wma200:    opts.WMA200Store,
		s2f:       opts.S2FStore,
		puell:     opts.PuellStore,
		log:       opts.Logger,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/indicators/{name}/latest", s.handleIndicatorLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/indicators/{name}/history", s.handleIndicatorHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/prices/{asset}/history", s.handlePriceHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/macro/{ticker}/latest", s.handleMacroLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/macro/{ticker}/history", s.handleMacroHistory).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.assessor.Snapshot(r.Context()))
}

func (s *Server) handleIndicatorLatest(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	row, err := s.latestByName(r, name)
	if err != nil {
		s.writeStoreError(w, name, err)
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleIndicatorHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	limit, err := historyLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.historyByName(r, name, limit)
	if err != nil {
		s.writeStoreError(w, name, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	limit, err := historyLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	obs, err := s.prices.History(r.Context(), asset, limit)
	if err != nil {
		s.writeStoreError(w, "prices", err)
		return
	}

	rows := make([]priceRow, len(obs))
	for i, o := range obs {
		rows[i] = priceRow{
			Timestamp: o.Timestamp,
			AssetID:   o.AssetID,
			Price:     o.Price,
			MarketCap: o.MarketCap,
			Volume:    o.Volume,
		}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMacroLatest(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	obs, err := s.macro.Latest(r.Context(), ticker)
	if err != nil {
		s.writeStoreError(w, ticker, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMacroRow(*obs))
}

func (s *Server) handleMacroHistory(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	limit, err := historyLimit(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	obs, err := s.macro.History(r.Context(), ticker, limit)
	if err != nil {
		s.writeStoreError(w, ticker, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapRows(obs, toMacroRow))
}

// errUnknownIndicator distinguishes a bad name from an empty store.
var errUnknownIndicator = errors.New("unknown indicator")

func (s *Server) latestByName(r *http.Request, name string) (any, error) {
	ctx := r.Context()
	switch name {
	case domain.IndicatorSentiment:
		obs, err := s.sentiment.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toSentimentRow(*obs), nil
	case domain.IndicatorTrend:
		obs, err := s.trend.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toTrendRow(*obs), nil
	case domain.IndicatorDominance:
		obs, err := s.dominance.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toDominanceRow(*obs), nil
	case domain.IndicatorPiCycle:
		row, err := s.piCycle.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toPiCycleRow(*row), nil
	case domain.IndicatorWMA200:
		row, err := s.wma200.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toWMA200Row(*row), nil
	case domain.IndicatorS2F:
		row, err := s.s2f.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toS2FRow(*row), nil
	case domain.IndicatorPuell:
		row, err := s.puell.Latest(ctx)
		if err != nil {
			return nil, err
		}
		return toPuellRow(*row), nil
	default:
		return nil, errUnknownIndicator
	}
}

func (s *Server) historyByName(r *http.Request, name string, limit int) (any, error) {
	ctx := r.Context()
	switch name {
	case domain.IndicatorSentiment:
		obs, err := s.sentiment.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(obs, toSentimentRow), nil
	case domain.IndicatorTrend:
		obs, err := s.trend.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(obs, toTrendRow), nil
	case domain.IndicatorDominance:
		obs, err := s.dominance.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(obs, toDominanceRow), nil
	case domain.IndicatorPiCycle:
		rows, err := s.piCycle.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(rows, toPiCycleRow), nil
	case domain.IndicatorWMA200:
		rows, err := s.wma200.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(rows, toWMA200Row), nil
	case domain.IndicatorS2F:
		rows, err := s.s2f.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(rows, toS2FRow), nil
	case domain.IndicatorPuell:
		rows, err := s.puell.History(ctx, limit)
		if err != nil {
			return nil, err
		}
		return mapRows(rows, toPuellRow), nil
	default:
		return nil, errUnknownIndicator
	}
}

// historyLimit parses ?limit=, defaulting to a year and capping at two.
func historyLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit, nil
}

func (s *Server) writeStoreError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, errUnknownIndicator):
		s.writeError(w, http.StatusNotFound, "unknown indicator "+name)
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, name+" has no data")
	default:
		s.log.Error("query failed", zap.String("indicator", name), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "query failed")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func mapRows[T, U any](rows []T, f func(T) U) []U {
	out := make([]U, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}
	return out
}

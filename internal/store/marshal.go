package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/shoplog/internal/ledger"
)

// priceColumns splits a Price into the nullable cash_price / points_price
// columns.
func priceColumns(p ledger.Price) (cash, points any) {
	if v, ok := p.Cash(); ok {
		cash = v
	}
	if v, ok := p.Points(); ok {
		points = v
	}
	return cash, points
}

func priceFromColumns(cash, points sql.NullFloat64) ledger.Price {
	switch {
	case cash.Valid && points.Valid:
		return ledger.DualPrice(cash.Float64, points.Float64)
	case cash.Valid:
		return ledger.CashPrice(cash.Float64)
	case points.Valid:
		return ledger.PointsPrice(points.Float64)
	default:
		return ledger.Price{}
	}
}

func unmarshalPromoIDs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal promo ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

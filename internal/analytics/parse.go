package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// saleDateLayouts are tried in order when parsing the sale-date column.
var saleDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// parseSaleDate coerces a feed value into a UTC timestamp. Unparseable
// values report ok=false and are excluded from month buckets; they never
// abort the request.
func parseSaleDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range saleDateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// parseAmount coerces a feed value into a float64. Unparseable or
// non-finite values report ok=false and are treated as missing.
func parseAmount(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// isPaid is the broad payment-flag matcher: booleans and numbers are
// truthy, strings match the set the feed has been observed to use.
func isPaid(v any) bool {
	switch p := v.(type) {
	case bool:
		return p
	case float64:
		return p != 0
	case int:
		return p != 0
	case json.Number:
		f, err := p.Float64()
		return err == nil && f != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(p))
		s = strings.ReplaceAll(s, "não", "nao")
		switch s {
		case "sim", "s", "pago", "paga", "true", "1", "yes", "y":
			return true
		}
	}
	return false
}

// asString renders a feed cell the way the report keys need it
// (cota IDs, UFs, segments).
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		if s == math.Trunc(s) && !math.IsInf(s, 0) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

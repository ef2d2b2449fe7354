package reconcile

import (
	"log"
	"strings"
	"time"

	"github.com/clearhaven/homestock/internal/models"
)

// expiryLayouts are tried in order. The day-first layout matches what the
// mobile clients write; RFC 3339 covers timestamps coming from imports.
var expiryLayouts = []string{
	"2/1/2006",
	time.RFC3339,
	"2006-01-02",
}

// Status is the derived classification of a single inventory item.
type Status struct {
	LowStock bool
	Expired  bool
}

// Classify derives low-stock and expired status for one item. It is pure:
// a malformed expiry date yields Expired=false, never an error.
func Classify(amount, minStock int, rawExpiry string, now time.Time) Status {
	s := Status{LowStock: amount < minStock}
	if expiry, ok := ParseExpiry(rawExpiry); ok {
		s.Expired = expiry.Before(now)
	}
	return s
}

// ParseExpiry parses a raw expiry value. Accepted shapes are DD/MM/YYYY
// (day and month may be unpadded) and RFC 3339 timestamps. An empty value,
// the "N/A" sentinel, or anything unparseable reports ok=false.
func ParseExpiry(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, models.ExpiryNone) {
		return time.Time{}, false
	}

	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	log.Printf("reconcile: unparseable expiry date %q, treating as no expiry", raw)
	return time.Time{}, false
}

// NormalizeName is the canonical form used for duplicate detection, both
// within a shopping list and when matching purchases back to inventory.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

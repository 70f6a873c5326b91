package service

import (
	"time"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

// minmax guard against a zero denominator
const statsEpsilon = 1e-9

// BuildCustomerStats computes normalized purchase frequency and recency for
// one customer. No transactions for the customer yields empty maps. Without
// any parseable dates every recency defaults to 0.5.
func BuildCustomerStats(lines []model.TransactionLine, customerID string) model.CustomerStats {
	stats := model.CustomerStats{
		Frequency: make(map[string]float64),
		Recency:   make(map[string]float64),
	}

	qty := make(map[string]float64)
	lastSeen := make(map[string]time.Time)
	var first, last time.Time
	for _, tl := range lines {
		if tl.CustomerID != customerID || tl.ProductID == "" {
			continue
		}
		qty[tl.ProductID] += tl.Qty
		if tl.OrderDate.IsZero() {
			continue
		}
		if tl.OrderDate.After(lastSeen[tl.ProductID]) {
			lastSeen[tl.ProductID] = tl.OrderDate
		}
		if first.IsZero() || tl.OrderDate.Before(first) {
			first = tl.OrderDate
		}
		if tl.OrderDate.After(last) {
			last = tl.OrderDate
		}
	}
	if len(qty) == 0 {
		return stats
	}

	minQ, maxQ := 0.0, 0.0
	started := false
	for _, q := range qty {
		if !started {
			minQ, maxQ = q, q
			started = true
			continue
		}
		if q < minQ {
			minQ = q
		}
		if q > maxQ {
			maxQ = q
		}
	}
	for pid, q := range qty {
		stats.Frequency[pid] = (q - minQ) / (maxQ - minQ + statsEpsilon)
	}

	if last.IsZero() {
		for pid := range qty {
			stats.Recency[pid] = 0.5
		}
		return stats
	}
	span := float64(daysBetween(first, last)) + statsEpsilon
	for pid := range qty {
		seen, ok := lastSeen[pid]
		if !ok {
			stats.Recency[pid] = 0.5
			continue
		}
		r := 1.0 - float64(daysBetween(seen, last))/span
		if r < 0 {
			r = 0
		}
		if r > 1 {
			r = 1
		}
		stats.Recency[pid] = r
	}
	return stats
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

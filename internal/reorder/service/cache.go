package service

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

// Session memoizes derived artifacts (customer stats, association rules)
// across repeated requests over the same uploaded history. Keys are content
// hashes of the inputs plus the parameter set, so a changed upload or option
// never serves a stale result. Caller-owned; safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	stats map[uint64]model.CustomerStats
	rules map[uint64][]model.AssociationRule
}

func NewSession() *Session {
	return &Session{
		stats: make(map[uint64]model.CustomerStats),
		rules: make(map[uint64][]model.AssociationRule),
	}
}

// CustomerStats returns memoized stats for (lines, customerID).
func (s *Session) CustomerStats(lines []model.TransactionLine, customerID string) model.CustomerStats {
	key := hashLines(lines, "stats", customerID)
	s.mu.Lock()
	cached, ok := s.stats[key]
	s.mu.Unlock()
	if ok {
		return cached
	}
	built := BuildCustomerStats(lines, customerID)
	s.mu.Lock()
	s.stats[key] = built
	s.mu.Unlock()
	return built
}

// Associations returns memoized rules for (lines, options).
func (s *Session) Associations(lines []model.TransactionLine, names map[string]string, opt model.AssocOptions) []model.AssociationRule {
	key := hashLines(lines, "assoc", strings.Join(opt.ExcludeNameContains, "\x1f"))
	s.mu.Lock()
	cached, ok := s.rules[key]
	s.mu.Unlock()
	if ok {
		return cached
	}
	mined := MineAssociations(lines, names, opt)
	s.mu.Lock()
	s.rules[key] = mined
	s.mu.Unlock()
	return mined
}

func hashLines(lines []model.TransactionLine, params ...string) uint64 {
	h := fnv.New64a()
	for _, p := range params {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	for _, tl := range lines {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%g\x1f%d\n",
			tl.CustomerID, tl.ProductID, tl.OrderID, tl.Qty, tl.OrderDate.Unix())
	}
	return h.Sum64()
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

func TestSessionCustomerStatsMemoized(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "P1", Qty: 2, OrderID: "O1", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "P1", Qty: 1, OrderID: "O2", OrderDate: day(10)},
		{CustomerID: "C1", ProductID: "P2", Qty: 1, OrderID: "O2", OrderDate: day(10)},
	}
	s := NewSession()

	first := s.CustomerStats(lines, "C1")
	second := s.CustomerStats(lines, "C1")
	assert.Equal(t, first, second)
	require.Len(t, s.stats, 1)

	// different customer, different entry
	s.CustomerStats(lines, "C2")
	assert.Len(t, s.stats, 2)

	// changed history, different entry
	lines[0].Qty = 5
	s.CustomerStats(lines, "C1")
	assert.Len(t, s.stats, 3)
}

func TestSessionAssociationsKeyedByOptions(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "A", OrderID: "O1", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "B", OrderID: "O1", OrderDate: day(0)},
	}
	names := map[string]string{"A": "Scopa", "B": "Trasporto"}
	s := NewSession()

	all := s.Associations(lines, names, model.AssocOptions{})
	require.Len(t, all, 1)

	filtered := s.Associations(lines, names, model.AssocOptions{ExcludeNameContains: []string{"trasporto"}})
	assert.Empty(t, filtered)
	assert.Len(t, s.rules, 2, "exclusion list is part of the cache key")

	again := s.Associations(lines, names, model.AssocOptions{})
	assert.Equal(t, all, again)
	assert.Len(t, s.rules, 2)
}

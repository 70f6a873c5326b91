package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

func TestRecommendDueSoonScoresAboveHalf(t *testing.T) {
	// P bought at days 0, 10, 20 (median gap 10); reference = day 25
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "P", Qty: 1, OrderID: "O1", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "P", Qty: 1, OrderID: "O2", OrderDate: day(10)},
		{CustomerID: "C1", ProductID: "P", Qty: 1, OrderID: "O3", OrderDate: day(20)},
	}
	recs := Recommend(lines, nil, nil, model.RecommendOptions{ReferenceDate: day(25)})
	require.Len(t, recs, 1)

	// raw reorder score before blending: logistic((5-10)/10) > 0.5
	assert.Greater(t, logistic(5, 10), 0.5)
	assert.Equal(t, "C1", recs[0].CustomerID)
	assert.Equal(t, "P", recs[0].ProductID)
	assert.Equal(t, 1.0, recs[0].Normalized)
	assert.Contains(t, recs[0].Reasons, "periodic reorder")
}

func TestRecommendTopScoreNormalizedToOne(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "P1", Qty: 1, OrderID: "O1", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "P1", Qty: 1, OrderID: "O2", OrderDate: day(30)},
		{CustomerID: "C1", ProductID: "P2", Qty: 1, OrderID: "O3", OrderDate: day(300)},
		{CustomerID: "C2", ProductID: "P3", Qty: 1, OrderID: "O4", OrderDate: day(100)},
	}
	recs := Recommend(lines, nil, nil, model.RecommendOptions{ReferenceDate: day(310)})

	best := map[string]float64{}
	for _, r := range recs {
		if r.Normalized > best[r.CustomerID] {
			best[r.CustomerID] = r.Normalized
		}
		assert.GreaterOrEqual(t, r.Normalized, 0.0)
		assert.LessOrEqual(t, r.Normalized, 1.0)
	}
	assert.Equal(t, 1.0, best["C1"])
	assert.Equal(t, 1.0, best["C2"])
}

func TestRecommendCrossSell(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "P1", Qty: 1, OrderID: "O1", OrderDate: day(0)},
	}
	rules := []model.AssociationRule{
		{ProductA: "P1", ProductB: "P2", CoCount: 2, Support: 0.5, Lift: 2.0},
	}
	names := map[string]string{"P2": "Guanti nitrile"}
	recs := Recommend(lines, rules, names, model.RecommendOptions{ReferenceDate: day(30)})
	require.Len(t, recs, 2)

	var crossSell *model.Recommendation
	for i := range recs {
		if recs[i].ProductID == "P2" {
			crossSell = &recs[i]
		}
	}
	require.NotNil(t, crossSell, "unpurchased partner must be recommended")
	assert.Equal(t, "Guanti nitrile", crossSell.Name)
	assert.InDelta(t, 0.3*0.5*2.0, crossSell.Score, 1e-9)
	assert.Contains(t, crossSell.Reasons, "bought with P1")
}

func TestRecommendCrossSellSkipsOwnedProducts(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "P1", Qty: 1, OrderID: "O1", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "P2", Qty: 1, OrderID: "O2", OrderDate: day(5)},
	}
	rules := []model.AssociationRule{
		{ProductA: "P1", ProductB: "P2", CoCount: 1, Support: 1, Lift: 1},
	}
	recs := Recommend(lines, rules, nil, model.RecommendOptions{ReferenceDate: day(10)})
	for _, r := range recs {
		assert.NotContains(t, r.Reasons, "bought with P1", "already purchased partners get no cross-sell reason")
		assert.NotContains(t, r.Reasons, "bought with P2")
	}
}

func TestRecommendDegradedWithoutDates(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C1", ProductID: "P1", Qty: 10, OrderID: "O1"},
		{CustomerID: "C1", ProductID: "P2", Qty: 5, OrderID: "O2"},
		{CustomerID: "C2", ProductID: "P1", Qty: 2, OrderID: "O3"},
	}
	recs := Recommend(lines, nil, nil, model.RecommendOptions{})
	require.Len(t, recs, 3)

	assert.Equal(t, "C1", recs[0].CustomerID)
	assert.Equal(t, "P1", recs[0].ProductID)
	assert.Equal(t, 10, recs[0].Qty)
	assert.Equal(t, 1.0, recs[0].Normalized)
	assert.Equal(t, []string{"sales history"}, recs[0].Reasons)

	assert.Equal(t, 0.5, recs[1].Normalized)
	assert.Equal(t, 1.0, recs[2].Normalized, "each customer normalizes against its own max")
}

func TestRecommendSortedPerCustomer(t *testing.T) {
	lines := []model.TransactionLine{
		{CustomerID: "C2", ProductID: "P1", Qty: 1, OrderID: "O1", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "P2", Qty: 1, OrderID: "O2", OrderDate: day(0)},
		{CustomerID: "C1", ProductID: "P3", Qty: 1, OrderID: "O3", OrderDate: day(200)},
	}
	recs := Recommend(lines, nil, nil, model.RecommendOptions{ReferenceDate: day(210)})
	require.Len(t, recs, 3)
	assert.Equal(t, "C1", recs[0].CustomerID)
	assert.Equal(t, "C1", recs[1].CustomerID)
	assert.Equal(t, "C2", recs[2].CustomerID)
	assert.GreaterOrEqual(t, recs[0].Normalized, recs[1].Normalized)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 10.0, median([]float64{10, 10}))
	assert.Equal(t, 7.5, median([]float64{5, 10}))
	assert.Equal(t, 10.0, median([]float64{20, 10, 5}))
	assert.Equal(t, 0.0, median(nil))
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

func TestSAPOrder(t *testing.T) {
	lines := []model.MatchResult{
		{ProductID: "ART-001", Code: "X1", Qty: 2},
		{Code: "RAW-99", Qty: 1},     // unmatched, raw code carried over
		{Desc: "solo testo", Qty: 3}, // no code at all, skipped
	}
	data, err := SAPOrder(OrderHeader{DocDate: "2025-03-01", CardCode: "C001", Comments: "riordino"}, lines)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"ORDR", "RDR1"}, f.GetSheetList())

	ordr, err := f.GetRows("ORDR")
	require.NoError(t, err)
	require.Len(t, ordr, 2)
	assert.Equal(t, []string{"DocDate", "CardCode", "Comments"}, ordr[0])
	assert.Equal(t, []string{"2025-03-01", "C001", "riordino"}, ordr[1])

	rdr1, err := f.GetRows("RDR1")
	require.NoError(t, err)
	require.Len(t, rdr1, 3)
	assert.Equal(t, []string{"ItemCode", "Quantity"}, rdr1[0])
	assert.Equal(t, []string{"ART-001", "2"}, rdr1[1], "matched id wins over the raw code")
	assert.Equal(t, []string{"RAW-99", "1"}, rdr1[2])
}

func TestRecommendationsCSV(t *testing.T) {
	recs := []model.Recommendation{
		{CustomerID: "C1", ProductID: "P1", Name: "Scopa", Qty: 2, Score: 0.61803, Normalized: 1, Reasons: []string{"periodic reorder", "bought with P2"}},
	}
	data, err := RecommendationsCSV(recs)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"customer_id", "product_id", "name", "predicted_qty", "score", "normalized_score", "reason"}, rows[0])
	assert.Equal(t, []string{"C1", "P1", "Scopa", "2", "0.618", "1.000", "periodic reorder; bought with P2"}, rows[1])
}

func TestRecommendationsJSON(t *testing.T) {
	data, err := RecommendationsJSON([]model.Recommendation{
		{CustomerID: "C1", ProductID: "P1", Score: 0.5, Normalized: 1, Reasons: []string{"sales history"}},
	})
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "C1", out[0]["customer_id"])
	assert.Equal(t, 1.0, out[0]["normalized_score"])
	_, hasQty := out[0]["predicted_qty"]
	assert.False(t, hasQty, "zero qty is omitted")
}

// Package export renders matched orders and recommendations for the
// surrounding systems: a two-sheet SAP import workbook and flat CSV/JSON
// recommendation dumps.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

// OrderHeader is the ORDR sheet content of a SAP sales-order import.
type OrderHeader struct {
	DocDate  string
	CardCode string
	Comments string
}

// SAPOrder builds an xlsx workbook with an ORDR header sheet and an RDR1
// lines sheet. Lines without any resolvable item code are skipped; the
// matched code wins over the raw order code.
func SAPOrder(header OrderHeader, lines []model.MatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("ORDR"); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow("ORDR", "A1", &[]any{"DocDate", "CardCode", "Comments"}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow("ORDR", "A2", &[]any{header.DocDate, header.CardCode, header.Comments}); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("RDR1"); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow("RDR1", "A1", &[]any{"ItemCode", "Quantity"}); err != nil {
		return nil, err
	}
	row := 2
	for _, ln := range lines {
		code := ln.ProductID
		if code == "" {
			code = ln.Code
		}
		if code == "" {
			continue
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow("RDR1", cell, &[]any{code, ln.Qty}); err != nil {
			return nil, err
		}
		row++
	}

	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecommendationsCSV renders the ranked list as a flat CSV.
func RecommendationsCSV(recs []model.Recommendation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"customer_id", "product_id", "name", "predicted_qty", "score", "normalized_score", "reason"}); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		row := []string{
			rec.CustomerID,
			rec.ProductID,
			rec.Name,
			fmt.Sprintf("%d", rec.Qty),
			fmt.Sprintf("%.3f", rec.Score),
			fmt.Sprintf("%.3f", rec.Normalized),
			strings.Join(rec.Reasons, "; "),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecommendationsJSON renders the ranked list as indented JSON.
func RecommendationsJSON(recs []model.Recommendation) ([]byte, error) {
	return json.MarshalIndent(recs, "", "  ")
}

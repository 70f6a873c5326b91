package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

func TestExtractRecordsUnsupported(t *testing.T) {
	_, err := ExtractRecords(model.Document{})
	assert.ErrorIs(t, err, ErrUnsupportedDocument)

	// a single all-blank row is as good as no table
	_, err = ExtractRecords(model.Document{Rows: [][]string{{"", "  ", ""}}})
	assert.ErrorIs(t, err, ErrUnsupportedDocument)
}

func TestExtractRecordsTextBlock(t *testing.T) {
	recs, err := ExtractRecords(model.Document{
		Pages: []string{"ITEM QTY\nWIDGET RED\n5\nNET TOTAL"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "WIDGET RED", recs[0].Desc)
	assert.Equal(t, 5, recs[0].Qty)
	assert.Equal(t, "widget red", recs[0].DescNorm)
	assert.Empty(t, recs[0].Code)
}

func TestExtractRecordsTextMultiLineDescAndCode(t *testing.T) {
	page := "Item Description Qty\n" +
		"SCOPA INDUSTRIALE\n" +
		"MANICO LEGNO\n" +
		"2.0 12345678\n" +
		"HSN 9603\n" +
		"SPAZZOLA WC\n" +
		"3\n" +
		"Net Total 120,00"
	recs, err := ExtractRecords(model.Document{Pages: []string{page}})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "SCOPA INDUSTRIALE MANICO LEGNO", recs[0].Desc)
	assert.Equal(t, 2, recs[0].Qty)
	assert.Equal(t, "12345678", recs[0].Code, "last 5+ digit run on the quantity line is the code")

	assert.Equal(t, "SPAZZOLA WC", recs[1].Desc)
	assert.Equal(t, 3, recs[1].Qty)
}

func TestExtractRecordsTextFlushAtTotal(t *testing.T) {
	// description pending when the totals line arrives: flushed with qty 1
	recs, err := ExtractRecords(model.Document{
		Pages: []string{"ITEM QTY\nGUANTI NITRILE\nGrand Total"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "GUANTI NITRILE", recs[0].Desc)
	assert.Equal(t, 1, recs[0].Qty)
}

func TestExtractRecordsSimplePass(t *testing.T) {
	// no Item/Qty header anywhere: every qualifying uppercase line is a
	// record, quantity from the nearby window
	page := "Spett.le cliente\nSCOPA INDUSTRIALE\n4 pezzi\nGUANTI NITRILE\nsenza quantita"
	recs, err := ExtractRecords(model.Document{Pages: []string{page}})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "SCOPA INDUSTRIALE", recs[0].Desc)
	assert.Equal(t, 4, recs[0].Qty)
	assert.Equal(t, "GUANTI NITRILE", recs[1].Desc)
	assert.Equal(t, 4, recs[1].Qty, "window of two lines either side picks up the nearest number")
}

func TestExtractRecordsTable(t *testing.T) {
	// 30 data rows so the 20-vote threshold is reachable
	rows := [][]string{{"Codice", "Descrizione prodotto ordinato", "Q.ta"}}
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("ART-%03d", i),
			fmt.Sprintf("descrizione articolo numero %d", i),
			fmt.Sprintf("%d", i+1),
		})
	}
	recs, err := ExtractRecords(model.Document{Rows: rows})
	require.NoError(t, err)
	require.Len(t, recs, 31, "every row including the header becomes a record")

	assert.Equal(t, "ART-000", recs[1].Code)
	assert.Equal(t, "descrizione articolo numero 0", recs[1].Desc)
	assert.Equal(t, 1, recs[1].Qty)
	assert.Equal(t, "ART-029", recs[30].Code)
	assert.Equal(t, 30, recs[30].Qty)
}

func TestExtractRecordsTableFallsBackToText(t *testing.T) {
	// numeric-only table: no code or description column emerges, so the
	// text path takes over
	rows := make([][]string, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i), fmt.Sprintf("%d", i*2)})
	}
	recs, err := ExtractRecords(model.Document{
		Rows:  rows,
		Pages: []string{"ITEM QTY\nWIDGET RED\n5\nNET TOTAL"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "WIDGET RED", recs[0].Desc)
}

package fileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAnyRowsUnsupported(t *testing.T) {
	_, err := ReadAnyRows(strings.NewReader("x"), "order.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file")
}

func TestReadAnyMapsCSV(t *testing.T) {
	data := "Codice;Descrizione;Qta\nART-001;Scopa industriale;2\nART-002;Guanti nitrile;10\n"
	maps, err := ReadAnyMaps(strings.NewReader(data), "vendite.csv", 1)
	require.NoError(t, err)
	require.Len(t, maps, 2)
	assert.Equal(t, "ART-001", maps[0]["Codice"])
	assert.Equal(t, "Guanti nitrile", maps[1]["Descrizione"])
	assert.Equal(t, "10", maps[1]["Qta"])
}

func TestReadAnyMapsHeaderOffset(t *testing.T) {
	data := "report vendite,,\nCodice,Qta,\nART-001,2,\n"
	maps, err := ReadAnyMaps(strings.NewReader(data), "vendite.csv", 2)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "ART-001", maps[0]["Codice"])
}

func TestPickHeaderBlankCells(t *testing.T) {
	h := pickHeader([][]string{{"Codice", "", " Qta "}}, 1)
	assert.Equal(t, []string{"Codice", "Column 2", "Qta"}, h)
}

func TestPickHeaderRowOutOfRange(t *testing.T) {
	h := pickHeader([][]string{{"a", "b"}}, 9)
	assert.Equal(t, []string{"a", "b"}, h)
}

func TestRowsToMapsSkipsEmptyRows(t *testing.T) {
	rows := [][]string{
		{"Codice", "Qta"},
		{"ART-001", "1"},
		{"", "  "},
		{"ART-002"}, // ragged short row
	}
	maps := rowsToMaps(rows, []string{"Codice", "Qta"}, 1)
	require.Len(t, maps, 2)
	assert.Equal(t, "", maps[1]["Qta"])
}

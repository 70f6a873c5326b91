package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSVRows reads CSV auto-detecting the encoding and converting to UTF-8.
// UTF-8 and the western single-byte encodings common in SAP exports are
// supported out of the box.
func readCSVRows(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	// peek a bit to detect encoding
	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1252", "cp1252":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	case "iso-8859-1", "latin1":
		dec = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.Comma = sniffDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter: SAP CSV exports come both comma- and semicolon-separated.
func sniffDelimiter(peek []byte) rune {
	firstLine := string(peek)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

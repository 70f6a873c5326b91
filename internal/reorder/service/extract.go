package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

var (
	reCodeCell = regexp.MustCompile(`^[A-Za-z0-9._-]{3,}$`)
	reNumCell  = regexp.MustCompile(`^\d+([,.]\d+)?$`)
	reNumber   = regexp.MustCompile(`\d+[.,]\d+|\d+`)
	reLongCode = regexp.MustCompile(`\d{5,}`)
)

const (
	headerProbeRows = 5  // header is picked among this many leading rows
	columnSample    = 50 // cells sampled per column for classification
	columnVoteMin   = 20 // votes needed to assign a column role
	longTextMin     = 15 // cells longer than this vote for "description"
)

// start/stop markers for the text fallback
var stopMarkers = []string{"Net Total", "Grand", "Net", "Delivery Date"}

const nonItemPrefix = "HSN"

// ExtractRecords turns a raw order document into OrderRecords. Table rows
// are tried first via column-role voting; if that yields nothing usable the
// page text is scanned for uppercase item blocks. A document with neither
// rows nor pages is unsupported.
func ExtractRecords(doc model.Document) ([]model.OrderRecord, error) {
	rows := doc.Rows
	// an all-blank leading row means upstream table detection found nothing
	if len(rows) > 0 && allBlank(rows[0]) {
		rows = nil
	}
	if len(rows) == 0 && len(doc.Pages) == 0 {
		return nil, ErrUnsupportedDocument
	}

	if len(rows) > 0 {
		if recs, ok := extractTable(rows); ok {
			return finishRecords(recs), nil
		}
	}
	if len(doc.Pages) == 0 {
		return nil, nil
	}
	return finishRecords(extractText(doc.Pages)), nil
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// extractTable assigns column roles by majority vote. Returns ok=false when
// no row ends up with a code or a description, which sends the caller to the
// text fallback.
func extractTable(rows [][]string) ([]model.OrderRecord, bool) {
	// the widest of the first few rows fixes the column count
	probe := rows
	if len(probe) > headerProbeRows {
		probe = probe[:headerProbeRows]
	}
	n, most := 0, -1
	for _, r := range probe {
		total := 0
		for _, c := range r {
			total += len(c)
		}
		if total > most {
			most = total
			n = len(r)
		}
	}
	if n == 0 {
		return nil, false
	}

	grid := make([][]string, len(rows))
	for i, r := range rows {
		g := make([]string, n)
		copy(g, r) // pads short rows, truncates long ones
		for j := range g {
			g[j] = strings.TrimSpace(g[j])
		}
		grid[i] = g
	}

	recs := make([]model.OrderRecord, len(grid))
	for i := range recs {
		recs[i].Qty = 1
	}

	// first matching column in scan order wins; a field already set on a row
	// is never overwritten, except the default quantity
	for c := 0; c < n; c++ {
		codeVotes, numVotes, longVotes := 0, 0, 0
		for r := 0; r < len(grid) && r < columnSample; r++ {
			v := grid[r][c]
			if reCodeCell.MatchString(v) {
				codeVotes++
			}
			if reNumCell.MatchString(v) {
				numVotes++
			}
			if len(v) > longTextMin {
				longVotes++
			}
		}
		if codeVotes >= columnVoteMin {
			for r := range grid {
				if recs[r].Code == "" {
					recs[r].Code = grid[r][c]
				}
			}
		}
		if numVotes >= columnVoteMin {
			for r := range grid {
				if recs[r].Qty == 1 {
					if q, ok := parseQty(grid[r][c]); ok {
						recs[r].Qty = q
					}
				}
			}
		}
		if longVotes >= columnVoteMin {
			for r := range grid {
				if recs[r].Desc == "" {
					recs[r].Desc = grid[r][c]
				}
			}
		}
	}

	for _, rec := range recs {
		if rec.Code != "" || rec.Desc != "" {
			return recs, true
		}
	}
	return nil, false
}

// extractText scans page text for uppercase item description blocks
// terminated by a quantity line. Scanning starts after a header line naming
// both the item and the quantity column.
func extractText(pages []string) []model.OrderRecord {
	var recs []model.OrderRecord
	for _, page := range pages {
		lines := splitLines(page)
		inTable := false
		var desc []string

		flush := func(qty int, code string) {
			recs = append(recs, model.OrderRecord{
				Code: code,
				Desc: strings.TrimSpace(strings.Join(desc, " ")),
				Qty:  qty,
			})
			desc = nil
		}

		for _, line := range lines {
			if !inTable {
				if containsAny(line, "Item", "ITEM") && containsAny(line, "Qty", "QTY") {
					inTable = true
				}
				continue
			}
			if containsAnyFold(line, stopMarkers...) {
				if len(desc) > 0 {
					flush(1, "")
				}
				break
			}
			if isItemLine(line, 3) {
				desc = append(desc, line)
				continue
			}
			if len(desc) == 0 {
				continue
			}
			if m := reNumber.FindString(line); m != "" {
				qty := 1
				if q, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64); err == nil && q > 0 {
					qty = int(math.Round(q))
					if qty < 1 {
						qty = 1
					}
				}
				code := ""
				if cc := reLongCode.FindAllString(line, -1); len(cc) > 0 {
					code = cc[len(cc)-1]
				}
				flush(qty, code)
			} else if isItemLine(line, 0) {
				desc = append(desc, line)
			}
		}
		if len(desc) > 0 {
			flush(1, "")
		}
	}
	if len(recs) > 0 {
		return recs
	}
	return extractTextSimple(pages)
}

// extractTextSimple is the last resort when no Item/Qty header exists: every
// qualifying uppercase line becomes one record, quantity taken from the
// first parseable number within two lines either side.
func extractTextSimple(pages []string) []model.OrderRecord {
	var recs []model.OrderRecord
	for _, page := range pages {
		lines := splitLines(page)
		for i, line := range lines {
			if !isItemLine(line, 3) {
				continue
			}
			qty := 1
			for j := max(0, i-2); j < len(lines) && j <= i+2; j++ {
				m := reNumber.FindString(lines[j])
				if m == "" {
					continue
				}
				if q, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64); err == nil {
					qty = int(math.Round(q))
					if qty < 1 {
						qty = 1
					}
					break
				}
			}
			recs = append(recs, model.OrderRecord{Desc: line, Qty: qty})
		}
	}
	return recs
}

func finishRecords(recs []model.OrderRecord) []model.OrderRecord {
	for i := range recs {
		recs[i].DescNorm = Normalize(recs[i].Desc)
		if recs[i].Qty < 1 {
			recs[i].Qty = 1
		}
	}
	return recs
}

func splitLines(page string) []string {
	raw := strings.Split(page, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

func containsAny(line string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

// case-insensitive variant; totals lines appear as both "Net Total" and
// "NET TOTAL" in the wild
func containsAnyFold(line string, terms ...string) bool {
	u := strings.ToUpper(line)
	for _, t := range terms {
		if strings.Contains(u, strings.ToUpper(t)) {
			return true
		}
	}
	return false
}

// isItemLine: fully uppercase, has at least one letter, longer than minLen,
// and not a known non-item line (HSN tax codes).
func isItemLine(line string, minLen int) bool {
	if len([]rune(line)) <= minLen {
		return false
	}
	if strings.HasPrefix(line, nonItemPrefix) {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return hasLetter && line == strings.ToUpper(line)
}

func parseQty(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	q, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	n := int(q)
	if n < 1 {
		n = 1
	}
	return n, true
}

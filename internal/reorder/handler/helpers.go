package handler

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/service"
	"github.com/Paris769/prestashop-reorder-interface/internal/utils"
)

// Column synonyms seen across SAP and PrestaShop exports. Resolution happens
// here, before anything reaches the matching/scoring core.
var (
	customerCols = []string{"customer_id", "cardcode", "cliente", "codice cliente/fornitore", "codcliente"}
	productCols  = []string{"product_id", "itemcode", "codice articolo", "articolo", "sku", "prodotto", "reference", "codarticolo"}
	nameCols     = []string{"name", "itemname", "descrizione articolo", "descrizione", "description", "product", "descarticolo"}
	qtyCols      = []string{"quantity", "qty", "qta", "qtasped", "quantità", "pezzi", "qta ordinata", "qtavenduta"}
	dateCols     = []string{"order_date", "docdate", "data", "date"}
	orderCols    = []string{"order_id", "ddt", "docnum", "numero ddt"}
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}/_ ]+`)

// normHeaderKey: lowercase, NBSP to space, strip separators, collapse.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", " ", " ", " ").Replace(s)
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey finds the real header in rec for one of the wanted synonyms:
// exact normalized match first, then containment either way, longest wanted
// synonym winning.
func resolveKey(rec map[string]string, wanted []string) string {
	norms := make([]string, len(wanted))
	for i, w := range wanted {
		norms[i] = normHeaderKey(w)
	}
	for k := range rec {
		nk := normHeaderKey(k)
		for _, n := range norms {
			if nk == n {
				return k
			}
		}
	}
	bestKey := ""
	bestScore := 0
	for k := range rec {
		nk := normHeaderKey(k)
		score := 0
		for _, n := range norms {
			if n != "" && (strings.Contains(nk, n) || strings.Contains(n, nk)) && len(n) > score {
				score = len(n)
			}
		}
		if score > bestScore {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02.01.2006",
	"02-01-2006",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toTransactionLines maps header records to transaction lines and collects
// product names. Rows without a product id are dropped.
func toTransactionLines(maps []map[string]string) ([]model.TransactionLine, map[string]string) {
	names := make(map[string]string)
	if len(maps) == 0 {
		return nil, names
	}
	first := maps[0]
	custKey := resolveKey(first, customerCols)
	prodKey := resolveKey(first, productCols)
	nameKey := resolveKey(first, nameCols)
	qtyKey := resolveKey(first, qtyCols)
	dateKey := resolveKey(first, dateCols)
	orderKey := resolveKey(first, orderCols)

	lines := make([]model.TransactionLine, 0, len(maps))
	for _, rec := range maps {
		pid := strings.TrimSpace(rec[prodKey])
		if prodKey == "" || pid == "" {
			continue
		}
		qty := 0.0
		if q, ok := utils.ParseFloat(rec[qtyKey]); ok {
			qty = q
		}
		tl := model.TransactionLine{
			CustomerID: strings.TrimSpace(rec[custKey]),
			ProductID:  pid,
			Name:       strings.TrimSpace(rec[nameKey]),
			Qty:        qty,
			OrderID:    strings.TrimSpace(rec[orderKey]),
			OrderDate:  parseDate(rec[dateKey]),
		}
		if tl.Name != "" {
			names[pid] = tl.Name
		}
		lines = append(lines, tl)
	}
	return lines, names
}

// toCatalog maps header records to catalog items; PrepareCatalog rejects
// tables that lack ids or names entirely.
func toCatalog(maps []map[string]string) ([]model.CatalogItem, error) {
	items := make([]model.CatalogItem, 0, len(maps))
	if len(maps) > 0 {
		prodKey := resolveKey(maps[0], productCols)
		nameKey := resolveKey(maps[0], nameCols)
		for _, rec := range maps {
			items = append(items, model.CatalogItem{
				ProductID: strings.TrimSpace(rec[prodKey]),
				Name:      strings.TrimSpace(rec[nameKey]),
			})
		}
	}
	return service.PrepareCatalog(items)
}

// toOrderRecords maps an order spreadsheet to records via header synonyms.
// ok is false when neither a code nor a description column exists; callers
// then hand the raw grid to the heuristic extractor.
func toOrderRecords(maps []map[string]string) ([]model.OrderRecord, bool) {
	if len(maps) == 0 {
		return nil, false
	}
	first := maps[0]
	codeKey := resolveKey(first, productCols)
	descKey := resolveKey(first, nameCols)
	qtyKey := resolveKey(first, qtyCols)
	if codeKey == "" && descKey == "" {
		return nil, false
	}
	recs := make([]model.OrderRecord, 0, len(maps))
	for _, rec := range maps {
		r := model.OrderRecord{
			Code: strings.TrimSpace(rec[codeKey]),
			Desc: strings.TrimSpace(rec[descKey]),
			Qty:  1,
		}
		if q, ok := utils.ParseFloat(rec[qtyKey]); ok && int(q) >= 1 {
			r.Qty = int(q)
		}
		if r.Code == "" && r.Desc == "" {
			continue
		}
		r.DescNorm = service.Normalize(r.Desc)
		recs = append(recs, r)
	}
	return recs, len(recs) > 0
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

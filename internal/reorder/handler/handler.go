package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Paris769/prestashop-reorder-interface/internal/config"
	"github.com/Paris769/prestashop-reorder-interface/internal/export"
	"github.com/Paris769/prestashop-reorder-interface/internal/fileio"
	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/service"
)

type matchResponse struct {
	Rows    []model.MatchResult `json:"rows"`
	Options model.MatchOptions  `json:"options"`
}

// Match resolves an uploaded order (spreadsheet or raw text) against an
// uploaded catalog, optionally biased by one customer's sales history.
func Match(cfg config.Config, logger zerolog.Logger, session *service.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)

		results, opt, err := runMatch(cfg, session, r)
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, log, matchResponse{Rows: results, Options: opt})
		log.Info().Int("rows", len(results)).Dur("elapsed", time.Since(start)).Msg("match done")
	}
}

// MatchExport runs the same pipeline and answers with a SAP ORDR/RDR1
// workbook of the usable lines.
func MatchExport(cfg config.Config, logger zerolog.Logger, session *service.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)

		results, _, err := runMatch(cfg, session, r)
		if err != nil {
			writeError(w, log, err)
			return
		}

		usable := results[:0]
		for _, res := range results {
			if res.Status != model.StatusNotFound {
				usable = append(usable, res)
			}
		}
		header := export.OrderHeader{
			DocDate:  r.FormValue("doc_date"),
			CardCode: r.FormValue("card_code"),
			Comments: r.FormValue("comments"),
		}
		b, err := export.SAPOrder(header, usable)
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="sap_order.xlsx"`)
		_, _ = w.Write(b)
		log.Info().Int("rows", len(usable)).Msg("sap export done")
	}
}

// Recommend scores reorder and cross-sell proposals from an uploaded sales
// history.
func Recommend(cfg config.Config, logger zerolog.Logger, session *service.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		lines, names, err := readSales(r, "sales")
		if err != nil {
			writeError(w, log, err)
			return
		}
		hasCustomer := false
		for _, tl := range lines {
			if tl.CustomerID != "" {
				hasCustomer = true
				break
			}
		}
		if len(lines) > 0 && !hasCustomer {
			writeError(w, log, wrapMalformed("sales table has no customer column"))
			return
		}

		assocOpt := model.AssocOptions{ExcludeNameContains: splitList(r.FormValue("exclude_name"))}
		rules := session.Associations(lines, names, assocOpt)

		recOpt := model.RecommendOptions{
			ReferenceDate: parseDate(r.FormValue("reference_date")),
			CadenceDays:   cfg.CadenceDays,
			MaxPartners:   atoi(r.FormValue("max_partners"), 0),
		}
		recs := service.Recommend(lines, rules, names, recOpt)

		// presentation filters
		if minScore := toFloat(r.FormValue("min_score"), 0); minScore > 0 {
			kept := recs[:0]
			for _, rec := range recs {
				if rec.Normalized >= minScore {
					kept = append(kept, rec)
				}
			}
			recs = kept
		}
		if topN := atoi(r.FormValue("top_n"), 0); topN > 0 {
			perCust := make(map[string]int)
			kept := recs[:0]
			for _, rec := range recs {
				if perCust[rec.CustomerID] < topN {
					perCust[rec.CustomerID]++
					kept = append(kept, rec)
				}
			}
			recs = kept
		}

		if r.FormValue("format") == "csv" {
			b, err := export.RecommendationsCSV(recs)
			if err != nil {
				writeError(w, log, err)
				return
			}
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="recommendations.csv"`)
			_, _ = w.Write(b)
		} else {
			writeJSON(w, log, recs)
		}
		log.Info().
			Int("lines", len(lines)).
			Int("rules", len(rules)).
			Int("recs", len(recs)).
			Dur("elapsed", time.Since(start)).
			Msg("recommendations done")
	}
}

// runMatch is the shared /match pipeline: catalog, order records, optional
// customer affinity, then the tiered matcher.
func runMatch(cfg config.Config, session *service.Session, r *http.Request) ([]model.MatchResult, model.MatchOptions, error) {
	var zero model.MatchOptions
	if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
		return nil, zero, wrapMalformed("bad multipart form: " + err.Error())
	}

	catFile, catHeader, err := r.FormFile("catalog")
	if err != nil {
		return nil, zero, wrapMalformed("missing catalog file")
	}
	defer catFile.Close()
	catMaps, err := fileio.ReadAnyMaps(catFile, catHeader.Filename, atoi(r.FormValue("catalog_header_row"), 1))
	if err != nil {
		return nil, zero, wrapMalformed("failed to read catalog: " + err.Error())
	}
	catalog, err := toCatalog(catMaps)
	if err != nil {
		return nil, zero, err
	}

	records, err := readOrderRecords(r)
	if err != nil {
		return nil, zero, err
	}

	stats := model.CustomerStats{}
	if customerID := r.FormValue("customer_id"); customerID != "" {
		lines, _, err := readSales(r, "sales")
		if err == nil && len(lines) > 0 {
			stats = session.CustomerStats(lines, customerID)
		}
	}

	opt := model.MatchOptions{
		AcceptThreshold: toFloat(r.FormValue("accept_threshold"), cfg.Match.AcceptThreshold),
		ReviewThreshold: toFloat(r.FormValue("review_threshold"), cfg.Match.ReviewThreshold),
		TopK:            atoi(r.FormValue("top_k"), cfg.Match.TopK),
		SimWeight:       toFloat(r.FormValue("sim_weight"), cfg.Match.SimWeight),
		AffinityWeight:  toFloat(r.FormValue("affinity_weight"), cfg.Match.AffinityWeight),
	}.WithDefaults()

	results, err := service.MatchOrder(records, catalog, stats, service.RatioScorer{}, opt)
	if err != nil {
		return nil, zero, err
	}
	return results, opt, nil
}

// readOrderRecords accepts either an "order" spreadsheet or an "order_text"
// field with raw page text. Spreadsheets go through header-synonym mapping
// first; when no usable columns exist the raw grid goes to the heuristic
// extractor.
func readOrderRecords(r *http.Request) ([]model.OrderRecord, error) {
	if text := r.FormValue("order_text"); text != "" {
		return service.ExtractRecords(model.Document{Pages: []string{text}})
	}

	file, header, err := r.FormFile("order")
	if err != nil {
		return nil, wrapMalformed("missing order file or order_text")
	}
	defer file.Close()

	maps, err := fileio.ReadAnyMaps(file, header.Filename, atoi(r.FormValue("order_header_row"), 1))
	if err != nil {
		return nil, wrapMalformed("failed to read order: " + err.Error())
	}
	if recs, ok := toOrderRecords(maps); ok {
		return recs, nil
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, err
	}
	rows, err := fileio.ReadAnyRows(file, header.Filename)
	if err != nil {
		return nil, wrapMalformed("failed to read order: " + err.Error())
	}
	return service.ExtractRecords(model.Document{Rows: rows})
}

func readSales(r *http.Request, field string) ([]model.TransactionLine, map[string]string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, wrapMalformed("missing " + field + " file")
	}
	defer file.Close()
	maps, err := fileio.ReadAnyMaps(file, header.Filename, atoi(r.FormValue(field+"_header_row"), 1))
	if err != nil {
		return nil, nil, wrapMalformed("failed to read " + field + ": " + err.Error())
	}
	lines, names := toTransactionLines(maps)
	return lines, names, nil
}

func requestLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := r.Header.Get("X-Request-ID"); rid != "" {
		return logger.With().Str("req_id", rid).Logger()
	}
	return logger
}

func wrapMalformed(msg string) error {
	return &malformedError{msg: msg}
}

type malformedError struct{ msg string }

func (e *malformedError) Error() string { return e.msg }
func (e *malformedError) Unwrap() error { return service.ErrMalformedInput }

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrMalformedInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnsupportedDocument),
		errors.Is(err, service.ErrUnsupportedOperation):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	} else {
		log.Warn().Err(err).Msg("request rejected")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

// affinity blend over customer stats
const (
	affinityRecencyWeight   = 0.4
	affinityFrequencyWeight = 0.6
)

// PrepareCatalog derives normalized names and validates that the catalog
// actually carries ids and names. The catalog is not modified.
func PrepareCatalog(items []model.CatalogItem) ([]model.CatalogItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]model.CatalogItem, len(items))
	anyID, anyName := false, false
	for i, it := range items {
		it.NameNorm = Normalize(it.Name)
		out[i] = it
		if it.ProductID != "" {
			anyID = true
		}
		if it.Name != "" {
			anyName = true
		}
	}
	if !anyID {
		return nil, fmt.Errorf("%w: catalog has no product ids", ErrMalformedInput)
	}
	if !anyName {
		return nil, fmt.Errorf("%w: catalog has no product names", ErrMalformedInput)
	}
	return out, nil
}

// MatchOrder resolves each extracted record against the catalog. Tiers, in
// strict priority: exact code, exact normalized description, then fuzzy
// similarity blended with the customer's purchase affinity. The catalog must
// come from PrepareCatalog. A nil scorer fails before any record is
// processed.
func MatchOrder(records []model.OrderRecord, catalog []model.CatalogItem, stats model.CustomerStats, scorer SimilarityScorer, opt model.MatchOptions) ([]model.MatchResult, error) {
	if scorer == nil {
		return nil, ErrUnsupportedOperation
	}
	opt = opt.WithDefaults()

	byCode := make(map[string]int, len(catalog))
	byNorm := make(map[string]int, len(catalog))
	affinity := make([]float64, len(catalog))
	for i, it := range catalog {
		if it.ProductID != "" {
			if _, dup := byCode[it.ProductID]; !dup {
				byCode[it.ProductID] = i
			}
		}
		if it.NameNorm != "" {
			if _, dup := byNorm[it.NameNorm]; !dup { // first match wins
				byNorm[it.NameNorm] = i
			}
		}
		affinity[i] = affinityRecencyWeight*stats.Recency[it.ProductID] +
			affinityFrequencyWeight*stats.Frequency[it.ProductID]
	}

	results := make([]model.MatchResult, 0, len(records))
	for _, rec := range records {
		res := model.MatchResult{Code: rec.Code, Desc: rec.Desc, Qty: rec.Qty}

		if rec.Code != "" {
			if i, ok := byCode[rec.Code]; ok {
				res.ProductID = catalog[i].ProductID
				res.Name = catalog[i].Name
				res.Confidence = 1.0
				res.Method = model.MethodCode
				res.Status = model.StatusOK
				results = append(results, res)
				continue
			}
		}
		if rec.DescNorm != "" {
			if i, ok := byNorm[rec.DescNorm]; ok {
				res.ProductID = catalog[i].ProductID
				res.Name = catalog[i].Name
				res.Confidence = 0.90
				res.Method = model.MethodDescExact
				res.Status = model.StatusOK
				results = append(results, res)
				continue
			}
		}
		if rec.DescNorm == "" {
			res.Method = model.MethodNoName
			res.Status = model.StatusNotFound
			results = append(results, res)
			continue
		}

		// fuzzy tier
		res.Method = model.MethodDescFuzzy
		cands := make([]model.Candidate, len(catalog))
		for i, it := range catalog {
			sim := scorer.Score(rec.DescNorm, it.NameNorm)
			cands[i] = model.Candidate{
				ProductID:  it.ProductID,
				Name:       it.Name,
				Confidence: opt.SimWeight*sim + opt.AffinityWeight*affinity[i],
			}
		}
		// stable keeps catalog order on ties
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].Confidence > cands[j].Confidence })

		if len(cands) == 0 {
			res.Status = model.StatusNotFound
			results = append(results, res)
			continue
		}
		best := cands[0]
		switch {
		case best.Confidence >= opt.AcceptThreshold:
			res.Status = model.StatusOK
		case best.Confidence >= opt.ReviewThreshold:
			res.Status = model.StatusReview
		default:
			res.Status = model.StatusNotFound
		}
		if best.Confidence >= opt.ReviewThreshold {
			res.ProductID = best.ProductID
			res.Name = best.Name
		}
		res.Confidence = round3(best.Confidence)
		if len(cands) > opt.TopK {
			cands = cands[:opt.TopK]
		}
		for i := range cands {
			cands[i].Confidence = round3(cands[i].Confidence)
		}
		res.Candidates = cands
		results = append(results, res)
	}
	return results, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

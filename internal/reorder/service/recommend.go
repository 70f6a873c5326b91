package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

const (
	reorderWeight   = 0.7
	crossSellWeight = 0.3

	reasonReorder = "periodic reorder"
	reasonHistory = "sales history"
)

func reasonCrossSell(source string) string {
	return fmt.Sprintf("bought with %s", source)
}

// Recommend blends reorder propensity with association-driven cross-sell
// into one ranked list per customer. rules usually come from
// MineAssociations over the same lines. When the history carries no usable
// dates the scoring degrades to per-customer quantity aggregation with the
// same output shape.
func Recommend(lines []model.TransactionLine, rules []model.AssociationRule, names map[string]string, opt model.RecommendOptions) []model.Recommendation {
	timed := make([]model.TransactionLine, 0, len(lines))
	for _, tl := range lines {
		if tl.CustomerID == "" || tl.ProductID == "" {
			continue
		}
		if !tl.OrderDate.IsZero() {
			timed = append(timed, tl)
		}
	}
	if len(timed) == 0 {
		return degradedRecommend(lines, names)
	}

	ref := opt.ReferenceDate
	if ref.IsZero() {
		for _, tl := range timed {
			if tl.OrderDate.After(ref) {
				ref = tl.OrderDate
			}
		}
	}
	cadence := opt.CadenceDays
	if cadence <= 0 {
		cadence = model.DefaultCadenceDays
	}

	// raw reorder score per customer/product
	type custProd struct{ cust, prod string }
	dates := make(map[custProd][]time.Time)
	for _, tl := range timed {
		k := custProd{tl.CustomerID, tl.ProductID}
		dates[k] = append(dates[k], tl.OrderDate)
	}
	reorder := make(map[custProd]float64, len(dates))
	maxScore := 0.0
	for k, ds := range dates {
		sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
		sinceLast := float64(daysBetween(ds[len(ds)-1], ref))
		var s float64
		if len(ds) > 1 {
			gaps := make([]float64, 0, len(ds)-1)
			for i := 1; i < len(ds); i++ {
				gaps = append(gaps, float64(daysBetween(ds[i-1], ds[i])))
			}
			s = logistic(sinceLast, median(gaps))
		} else {
			s = logistic(sinceLast, float64(cadence))
		}
		reorder[k] = s
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	partners := partnerTable(rules, opt.MaxPartners)

	// accumulate contributions per customer/product
	type entry struct {
		score   float64
		reasons map[string]struct{}
	}
	acc := make(map[custProd]*entry)
	add := func(k custProd, score float64, reason string) {
		e, ok := acc[k]
		if !ok {
			e = &entry{reasons: make(map[string]struct{})}
			acc[k] = e
		}
		e.score += score
		e.reasons[reason] = struct{}{}
	}

	bought := make(map[string]map[string]struct{})
	for k := range reorder {
		set, ok := bought[k.cust]
		if !ok {
			set = make(map[string]struct{})
			bought[k.cust] = set
		}
		set[k.prod] = struct{}{}
	}
	for k, s := range reorder {
		add(k, reorderWeight*s/maxScore, reasonReorder)
		for _, p := range partners[k.prod] {
			if _, owned := bought[k.cust][p.id]; owned {
				continue
			}
			add(custProd{k.cust, p.id}, crossSellWeight*p.score, reasonCrossSell(k.prod))
		}
	}

	// per-customer normalization
	custMax := make(map[string]float64)
	for k, e := range acc {
		if e.score > custMax[k.cust] {
			custMax[k.cust] = e.score
		}
	}
	recs := make([]model.Recommendation, 0, len(acc))
	for k, e := range acc {
		norm := 0.0
		if m := custMax[k.cust]; m > 0 {
			norm = e.score / m
		}
		reasons := make([]string, 0, len(e.reasons))
		for r := range e.reasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		recs = append(recs, model.Recommendation{
			CustomerID: k.cust,
			ProductID:  k.prod,
			Name:       names[k.prod],
			Score:      e.score,
			Normalized: norm,
			Reasons:    reasons,
		})
	}
	sortRecommendations(recs)
	return recs
}

// degradedRecommend: aggregate quantity per customer/product, normalized by
// each customer's maximum.
func degradedRecommend(lines []model.TransactionLine, names map[string]string) []model.Recommendation {
	type custProd struct{ cust, prod string }
	qty := make(map[custProd]float64)
	for _, tl := range lines {
		if tl.CustomerID == "" || tl.ProductID == "" {
			continue
		}
		qty[custProd{tl.CustomerID, tl.ProductID}] += tl.Qty
	}
	custMax := make(map[string]float64)
	for k, q := range qty {
		if q > custMax[k.cust] {
			custMax[k.cust] = q
		}
	}
	recs := make([]model.Recommendation, 0, len(qty))
	for k, q := range qty {
		norm := 0.0
		if m := custMax[k.cust]; m > 0 {
			norm = q / m
		}
		recs = append(recs, model.Recommendation{
			CustomerID: k.cust,
			ProductID:  k.prod,
			Name:       names[k.prod],
			Qty:        int(q),
			Score:      q,
			Normalized: norm,
			Reasons:    []string{reasonHistory},
		})
	}
	sortRecommendations(recs)
	return recs
}

type partner struct {
	id    string
	score float64
}

// partnerTable indexes rules both ways: each product maps to its cross-sell
// partners with a support*lift contribution, best first.
func partnerTable(rules []model.AssociationRule, limit int) map[string][]partner {
	t := make(map[string][]partner)
	for _, r := range rules {
		s := r.Support * r.Lift
		t[r.ProductA] = append(t[r.ProductA], partner{r.ProductB, s})
		t[r.ProductB] = append(t[r.ProductB], partner{r.ProductA, s})
	}
	for pid, ps := range t {
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].score != ps[j].score {
				return ps[i].score > ps[j].score
			}
			return ps[i].id < ps[j].id
		})
		if limit > 0 && len(ps) > limit {
			ps = ps[:limit]
		}
		t[pid] = ps
	}
	return t
}

// logistic maps days-since-last against the expected cadence; above 0.5 when
// the product is coming due, decaying once it is long overdue.
func logistic(sinceLast, cadence float64) float64 {
	if cadence == 0 {
		cadence = 1
	}
	return 1 / (1 + math.Exp((sinceLast-cadence)/cadence))
}

func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

func sortRecommendations(recs []model.Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CustomerID != recs[j].CustomerID {
			return recs[i].CustomerID < recs[j].CustomerID
		}
		if recs[i].Normalized != recs[j].Normalized {
			return recs[i].Normalized > recs[j].Normalized
		}
		if recs[i].Qty != recs[j].Qty {
			return recs[i].Qty > recs[j].Qty
		}
		return recs[i].ProductID < recs[j].ProductID
	})
}

package service

import (
	"sort"
	"strings"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

// MineAssociations computes pairwise co-purchase rules over the distinct
// product set of each order. names maps product id to catalog name and feeds
// the optional exclusion filter; it may be nil. Rules come back sorted by
// lift descending.
func MineAssociations(lines []model.TransactionLine, names map[string]string, opt model.AssocOptions) []model.AssociationRule {
	excluded := func(pid string) bool {
		if len(opt.ExcludeNameContains) == 0 {
			return false
		}
		name := strings.ToLower(names[pid])
		if name == "" {
			return false
		}
		for _, frag := range opt.ExcludeNameContains {
			if frag != "" && strings.Contains(name, strings.ToLower(frag)) {
				return true
			}
		}
		return false
	}

	orders := make(map[string]map[string]struct{})
	for _, tl := range lines {
		if tl.ProductID == "" || excluded(tl.ProductID) {
			continue
		}
		set, ok := orders[tl.OrderID]
		if !ok {
			set = make(map[string]struct{})
			orders[tl.OrderID] = set
		}
		set[tl.ProductID] = struct{}{}
	}
	total := len(orders)
	if total == 0 {
		return nil
	}

	productOrders := make(map[string]int)
	pairCount := make(map[[2]string]int)
	for _, set := range orders {
		prods := make([]string, 0, len(set))
		for p := range set {
			prods = append(prods, p)
		}
		sort.Strings(prods)
		for i, p := range prods {
			productOrders[p]++
			for _, q := range prods[i+1:] {
				pairCount[[2]string{p, q}]++ // canonical a < b
			}
		}
	}

	rules := make([]model.AssociationRule, 0, len(pairCount))
	for pair, co := range pairCount {
		a, b := pair[0], pair[1]
		pa := float64(productOrders[a]) / float64(total)
		pb := float64(productOrders[b]) / float64(total)
		if pa == 0 || pb == 0 {
			continue // lift undefined
		}
		support := float64(co) / float64(total)
		rules = append(rules, model.AssociationRule{
			ProductA:     a,
			ProductB:     b,
			CoCount:      co,
			Support:      support,
			ConfidenceAB: float64(co) / float64(productOrders[a]),
			ConfidenceBA: float64(co) / float64(productOrders[b]),
			Lift:         support / (pa * pb),
		})
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		if rules[i].Support != rules[j].Support {
			return rules[i].Support > rules[j].Support
		}
		if rules[i].ProductA != rules[j].ProductA {
			return rules[i].ProductA < rules[j].ProductA
		}
		return rules[i].ProductB < rules[j].ProductB
	})
	return rules
}

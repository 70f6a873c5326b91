package service

import (
	"sort"
	"strings"
)

// SimilarityScorer scores two normalized strings in [0,1]. Implementations
// must be symmetric and return 1 for equal inputs.
type SimilarityScorer interface {
	Score(a, b string) float64
}

// RatioScorer is the default scorer: the best of the token-set, token-sort
// and partial ratios, each normalized to [0,1].
type RatioScorer struct{}

func (RatioScorer) Score(a, b string) float64 {
	best := TokenSetRatio(a, b)
	if v := TokenSortRatio(a, b); v > best {
		best = v
	}
	if v := PartialRatio(a, b); v > best {
		best = v
	}
	return best
}

// ratio is normalized Damerau-Levenshtein similarity.
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 1 - float64(d)/float64(m)
}

func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

// TokenSortRatio compares the two strings with their tokens sorted, so word
// order does not matter.
func TokenSortRatio(a, b string) float64 {
	return ratio(tokenSort(a), tokenSort(b))
}

// TokenSetRatio compares the shared-token core against each full token set,
// so one string being a subset of the other still scores high.
func TokenSetRatio(a, b string) float64 {
	sa := tokenSet(a)
	sb := tokenSet(b)

	var inter, onlyA, onlyB []string
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range sb {
		if _, ok := sa[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	best := ratio(t1, t2)
	if t0 != "" {
		if v := ratio(t0, t1); v > best {
			best = v
		}
		if v := ratio(t0, t2); v > best {
			best = v
		}
	}
	return best
}

// PartialRatio slides the shorter string over the longer one and returns the
// best window similarity.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 1
		}
		return 0
	}
	if len(ra) == len(rb) {
		return ratio(string(ra), string(rb))
	}
	short := string(ra)
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if v := ratio(short, string(rb[i:i+len(ra)])); v > best {
			best = v
			if best == 1 {
				break
			}
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		m[t] = struct{}{}
	}
	return m
}

func damerauLevenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := 0; i <= al; i++ {
		dp[i] = make([]int, bl+1)
	}
	for i := 0; i <= al; i++ {
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			dp[i][j] = min3(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)

			// adjacent transposition
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if v := dp[i-2][j-2] + 1; v < dp[i][j] {
					dp[i][j] = v
				}
			}
		}
	}
	return dp[al][bl]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

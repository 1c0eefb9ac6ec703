package errors

import (
	"sort"
	"strings"
)

// SuggestViews returns up to n names from available that look like name,
// closest first.
func SuggestViews(name string, available []string, n int) []string {
	type candidate struct {
		name     string
		distance int
	}

	target := strings.ToLower(name)
	limit := max(2, len([]rune(target))/4)
	var candidates []candidate
	for _, a := range available {
		lower := strings.ToLower(a)
		d := levenshtein(target, lower)
		if strings.Contains(lower, target) || strings.Contains(target, lower) {
			d = 0
		}
		if d <= limit {
			candidates = append(candidates, candidate{name: a, distance: d})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})

	var out []string
	for _, c := range candidates {
		if len(out) == n {
			break
		}
		out = append(out, c.name)
	}
	return out
}

// ViewNotFound builds a view-not-found error that lists similar views.
func ViewNotFound(name string, available []string) *ViewError {
	err := ErrViewNotFound(name)
	if s := SuggestViews(name, available, 3); len(s) > 0 {
		err.WithContext("suggestions", s)
		err.Message += "; did you mean " + strings.Join(s, ", ") + "?"
	}
	return err
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

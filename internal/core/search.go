package core

import (
	"context"
	"sort"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/schollz/closestmatch"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"hrdesk/pkg/domain"
)

// MaxTypoDistance is the edit distance tolerated between a query token and
// a name token.
const MaxTypoDistance = 2

// minSuggestSimilarity gates closestmatch suggestions, which always return
// the nearest candidate however far it is.
const minSuggestSimilarity = 0.5

// EmployeeMatch is a search hit.
type EmployeeMatch struct {
	Employee domain.Employee `json:"employee"`
	Score    int             `json:"score"`
}

// SearchEmployees ranks employees against a free-text query. Matching is
// accent and case insensitive and tolerates small typos in names. A limit
// of zero returns every hit.
func (s *Service) SearchEmployees(ctx context.Context, query string, limit int) ([]EmployeeMatch, error) {
	q := normalizeText(query)
	out := []EmployeeMatch{}
	if q == "" {
		return out, nil
	}
	err := s.observe(ctx, "search_employees", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			dept, _ := suggest(departments(v), q)
			for _, e := range v.ListEmployees() {
				if score := scoreEmployee(q, dept, e); score > 0 {
					out = append(out, EmployeeMatch{Employee: e, Score: score})
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Employee.Name < out[j].Employee.Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SuggestDepartment returns the known department closest to name. It
// reports false when nothing is reasonably close.
func (s *Service) SuggestDepartment(ctx context.Context, name string) (string, bool) {
	var (
		dept string
		ok   bool
	)
	_ = s.view(ctx, func(v domain.TransactionView) error {
		known := departments(v)
		var norm string
		norm, ok = suggest(known, normalizeText(name))
		for _, d := range known {
			if ok && normalizeText(d) == norm {
				dept = d
				break
			}
		}
		return nil
	})
	return dept, ok && dept != ""
}

func scoreEmployee(q, dept string, e domain.Employee) int {
	name := normalizeText(e.Name)
	score := 0
	switch {
	case strings.HasPrefix(name, q):
		score += 60
	case strings.Contains(name, q):
		score += 50
	default:
		score += typoScore(q, name)
	}
	if strings.Contains(normalizeText(e.Username), q) {
		score += 40
	}
	if strings.Contains(normalizeText(e.Email), q) {
		score += 20
	}
	if strings.Contains(normalizeText(e.Position), q) {
		score += 10
	}
	ed := normalizeText(e.Department)
	if ed != "" && (strings.Contains(ed, q) || ed == dept) {
		score += 10
	}
	return score
}

// typoScore compares every query token with every name token.
func typoScore(q, name string) int {
	best := 0
	for _, qt := range strings.Fields(q) {
		if len(qt) < 3 {
			continue
		}
		for _, nt := range strings.Fields(name) {
			d := distance(qt, nt)
			if d <= MaxTypoDistance && d < len(qt) {
				if s := 30 - 10*d; s > best {
					best = s
				}
			}
		}
	}
	return best
}

func suggest(candidates []string, q string) (string, bool) {
	if q == "" || len(candidates) == 0 {
		return "", false
	}
	norm := make([]string, 0, len(candidates))
	for _, c := range candidates {
		norm = append(norm, normalizeText(c))
	}
	best := closestmatch.New(norm, []int{2, 3}).Closest(q)
	if best == "" || similarity(q, best) < minSuggestSimilarity {
		return "", false
	}
	return best, true
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

func distance(a, b string) int {
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(distance(a, b))/float64(longest)
}

package route

import (
	"context"
	"strings"
	"unicode"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

// KeywordRouter is a deterministic Router: a candidate scores one point per
// distinct keyword found in the message as a whole word or phrase. The single
// highest scorer wins; no match or a tie leaves the turn with the entry
// specialist.
type KeywordRouter struct {
	rules map[string][]string
}

var _ contractx.Router = (*KeywordRouter)(nil)

func NewKeywordRouter(rules map[string][]string) *KeywordRouter {
	normalized := make(map[string][]string, len(rules))
	for target, keywords := range rules {
		for _, kw := range keywords {
			if kw = normalize(kw); kw != "" {
				normalized[target] = append(normalized[target], kw)
			}
		}
	}
	return &KeywordRouter{rules: normalized}
}

func (r *KeywordRouter) Classify(ctx context.Context, message string, candidates []contractx.HandoffSpec) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	text := " " + normalize(message) + " "
	best, bestScore, tie := "", 0, false
	for _, c := range candidates {
		score := 0
		seen := map[string]struct{}{}
		for _, kw := range r.rules[c.Target] {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			if strings.Contains(text, " "+kw+" ") {
				score++
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tie = c.Target, score, false
		case score == bestScore && score > 0:
			tie = true
		}
	}

	if bestScore == 0 || tie {
		return "", false, nil
	}
	return best, true, nil
}

// normalize lowercases s and collapses every run of non letters or digits
// into a single space.
func normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

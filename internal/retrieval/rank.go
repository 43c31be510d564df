package retrieval

import "sort"

// ScoredCase is one ranked entry in a semantic or structural ranking.
type ScoredCase struct {
	CaseID string
	Score  float64
}

// rank implements §5's ordering guarantee: "stable sort on (score desc,
// id asc)", then truncates to the top `limit` (0 = unlimited).
func rank(scores map[string]float64, limit int) []ScoredCase {
	out := make([]ScoredCase, 0, len(scores))
	for id, s := range scores {
		out = append(out, ScoredCase{CaseID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CaseID < out[j].CaseID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

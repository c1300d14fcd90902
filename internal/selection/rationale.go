package selection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/stockreco/internal/contracts"
)

// recommendationNamespace 추천 ID 생성용 UUIDv5 namespace
var recommendationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("stockreco/recommendation"))

// RecommendationID returns the deterministic ID of (asOf, symbol)
// 같은 날짜/종목은 재실행해도 같은 ID
func RecommendationID(asOf time.Time, symbol string) string {
	name := asOf.Format("2006-01-02") + "|" + symbol
	return uuid.NewSHA1(recommendationNamespace, []byte(name)).String()
}

// Explain renders a deterministic rationale for a scored candidate
// ⭐ SSOT: S5 추천 사유 생성
// 기여도 큰 팩터부터, 동률은 가중치 → 평가 순서. 사용 불가 팩터는 마지막.
func Explain(c contracts.ScoredCandidate) string {
	order := make(map[string]int, len(c.Factors))
	for i, name := range contracts.AllFactors() {
		order[name] = i
	}

	factors := make([]contracts.Factor, len(c.Factors))
	copy(factors, c.Factors)
	sort.SliceStable(factors, func(i, j int) bool {
		a, b := factors[i], factors[j]
		if a.Available != b.Available {
			return a.Available
		}
		if a.Contribution != b.Contribution {
			return a.Contribution > b.Contribution
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return order[a.Name] < order[b.Name]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s composite score %.4f", c.Symbol, c.Score)
	for _, f := range factors {
		if !f.Available {
			fmt.Fprintf(&sb, "\n- %s: unavailable (%s)", f.Name, f.Note)
			continue
		}
		fmt.Fprintf(&sb, "\n- %s: %s; signal %.2f x weight %.2f = %.4f",
			f.Name, f.Note, f.Signal, f.Weight, f.Contribution)
	}
	return sb.String()
}

// Recommend attaches IDs and rationales to ranked candidates
func Recommend(asOf time.Time, ranked []Ranked) []contracts.Recommendation {
	recs := make([]contracts.Recommendation, len(ranked))
	for i, r := range ranked {
		recs[i] = contracts.Recommendation{
			ID:        RecommendationID(asOf, r.Candidate.Symbol),
			Symbol:    r.Candidate.Symbol,
			Rank:      r.Rank,
			Score:     r.Candidate.Score,
			AsOf:      asOf,
			Rationale: Explain(r.Candidate),
			Factors:   r.Candidate.Factors,
		}
	}
	return recs
}

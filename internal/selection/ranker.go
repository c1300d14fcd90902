package selection

import (
	"container/heap"
	"sort"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

// Ranked is a candidate with its 1-based rank
type Ranked struct {
	Rank      int
	Candidate contracts.ScoredCandidate
}

// Ranker implements S4: min_score filter and bounded Top N
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{
		logger: logger,
	}
}

// Rank drops candidates below minScore and keeps the best topN
// 정렬: score desc → avg volume desc → symbol asc, rank 1..k 연속
func (r *Ranker) Rank(candidates []contracts.ScoredCandidate, topN int, minScore float64) []Ranked {
	if topN < 1 {
		return []Ranked{}
	}

	// 최악 후보가 root 인 크기 topN 의 heap
	h := &worstFirst{}
	filtered := 0
	for i := range candidates {
		c := &candidates[i]
		if c.Score < minScore {
			filtered++
			continue
		}
		if h.Len() < topN {
			heap.Push(h, c)
			continue
		}
		if c.Less((*h)[0]) {
			(*h)[0] = c
			heap.Fix(h, 0)
		}
	}

	kept := []*contracts.ScoredCandidate(*h)
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Less(kept[j])
	})

	ranked := make([]Ranked, len(kept))
	for i, c := range kept {
		ranked[i] = Ranked{Rank: i + 1, Candidate: *c}
	}

	fields := map[string]interface{}{
		"candidates": len(candidates),
		"below_min":  filtered,
		"ranked":     len(ranked),
	}
	if len(ranked) > 0 {
		fields["top_symbol"] = ranked[0].Candidate.Symbol
		fields["top_score"] = ranked[0].Candidate.Score
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked
}

// worstFirst is a min-heap ordered by ranking preference (root = lowest ranked)
type worstFirst []*contracts.ScoredCandidate

func (h worstFirst) Len() int { return len(h) }

func (h worstFirst) Less(i, j int) bool { return h[j].Less(h[i]) }

func (h worstFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x interface{}) {
	*h = append(*h, x.(*contracts.ScoredCandidate))
}

func (h *worstFirst) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

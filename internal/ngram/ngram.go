// Package ngram implements the n-gram language model of spec §4.4: a count
// index over word tuples of length 1..N, conditional probabilities derived
// from it, and the stupid-backoff heuristic the wordifier uses to pick
// fluent words.
package ngram

import (
	"strings"

	"textsteg/internal/seed"
)

const tupleSep = "\x1f"

// level holds the counts for one tuple length, plus the order in which
// distinct tuples were first seen. Go map iteration order is randomized;
// spec §4.4's "initial history... ties broken by iteration order of the
// index" is interpreted here as first-occurrence order, the only
// interpretation compatible with Testable Property 1 (determinism).
type level struct {
	order []string
	count map[string]int
}

func newLevel() *level {
	return &level{count: make(map[string]int)}
}

func (l *level) add(key string) {
	if _, ok := l.count[key]; !ok {
		l.order = append(l.order, key)
	}
	l.count[key]++
}

// Index is the n-gram count model built once per encode (spec §3).
type Index struct {
	N           int
	levels      []*level // levels[0] unused; levels[n] covers tuples of length n
	UniqueWords []string
	TotalWords  int
}

func joinTuple(tuple []string) string {
	return strings.Join(tuple, tupleSep)
}

// Build tokenises cleaned on whitespace and records every contiguous n-gram
// of length 1..n as a tuple, counting occurrences (spec §4.4).
func Build(cleaned string, n int) *Index {
	tokens := strings.Fields(cleaned)
	idx := &Index{N: n, levels: make([]*level, n+1)}
	for i := 1; i <= n; i++ {
		idx.levels[i] = newLevel()
	}

	seenWord := make(map[string]struct{})
	for i := range tokens {
		for length := 1; length <= n; length++ {
			if i+length > len(tokens) {
				continue
			}
			tuple := tokens[i : i+length]
			idx.levels[length].add(joinTuple(tuple))
		}
		w := tokens[i]
		idx.TotalWords++
		if _, ok := seenWord[w]; !ok {
			seenWord[w] = struct{}{}
			idx.UniqueWords = append(idx.UniqueWords, w)
		}
	}
	return idx
}

// countAt returns the occurrence count of tuple at the given length level,
// 0 if absent or if the level doesn't exist.
func (idx *Index) countAt(length int, key string) int {
	if length < 1 || length > idx.N {
		return 0
	}
	return idx.levels[length].count[key]
}

// ConditionalProb returns P(w | context): c/d where c is the count of
// context++[w] and d is the count of context (or TotalWords when context is
// empty). Returns 0 if either tuple is absent (spec §4.4).
func (idx *Index) ConditionalProb(context []string, w string) float64 {
	full := append(append([]string{}, context...), w)
	c := idx.countAt(len(full), joinTuple(full))
	if c == 0 {
		return 0
	}
	var d int
	if len(context) == 0 {
		d = idx.TotalWords
	} else {
		d = idx.countAt(len(context), joinTuple(context))
	}
	if d == 0 {
		return 0
	}
	return float64(c) / float64(d)
}

// InitialHistory finds the (N-1)-prefix that occurs most often as the
// prefix of a length-N tuple (approximated, per spec §4.4, by the raw
// occurrence count of that (N-1)-gram itself — every occurrence of an
// (N-1)-gram that is not the corpus's final tokens also opens a length-N
// tuple). Ties are broken by first-occurrence order.
func (idx *Index) InitialHistory() []string {
	if idx.N < 2 {
		if len(idx.UniqueWords) == 0 {
			return nil
		}
		return []string{idx.UniqueWords[0]}
	}
	lvl := idx.levels[idx.N-1]
	best := ""
	bestCount := -1
	for _, key := range lvl.order {
		c := lvl.count[key]
		if c > bestCount {
			bestCount = c
			best = key
		}
	}
	if best == "" {
		return nil
	}
	return strings.Split(best, tupleSep)
}

// Backoff chooses the next word from candidates given the preceding
// history, using stupid backoff (spec §4.4): starting at order N, form the
// context from the last (n_used-1) history words, score every candidate,
// and fall to a shorter order whenever the best score is zero. The
// immediately previous word is excluded from consideration. If every
// candidate still scores zero at order 1 (no context), a word is drawn
// uniformly from candidates via the shared seeded stream — unlike the
// source's unseeded fallback, this keeps encoder output reproducible (spec
// §9 "Random fallback in n-gram selection").
func (idx *Index) Backoff(history []string, candidates []string, rng *seed.Stream) (string, int) {
	var excludeLast string
	if len(history) > 0 {
		excludeLast = history[len(history)-1]
	}
	pool := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != excludeLast {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}

	for nUsed := idx.N; nUsed >= 1; nUsed-- {
		ctxLen := nUsed - 1
		if ctxLen > len(history) {
			continue
		}
		var context []string
		if ctxLen > 0 {
			context = history[len(history)-ctxLen:]
		}

		best := ""
		bestScore := 0.0
		for _, cand := range pool {
			score := idx.ConditionalProb(context, cand)
			if best == "" || score > bestScore {
				best = cand
				bestScore = score
			}
		}
		if bestScore > 0 {
			return best, nUsed
		}
		if nUsed == 1 {
			idxPick := rng.Uint(len(pool))
			return pool[idxPick], 1
		}
	}
	// unreachable: the nUsed==1 branch above always returns.
	idxPick := rng.Uint(len(pool))
	return pool[idxPick], 1
}

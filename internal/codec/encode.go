package codec

import (
	"fmt"
	"strings"

	"textsteg/internal/alphabet"
	"textsteg/internal/bitstream"
	"textsteg/internal/ngram"
	"textsteg/internal/seed"
)

// Encode implements the wordifier (spec §4.5): payload bytes become a
// sequence of symbols via bitstream, and each symbol is materialized as a
// corpus word under the shared keyed permutation, honoring the skip-word
// policy.
func Encode(p Policy, cleanedCorpus string, payload []byte) (string, Stats, error) {
	if err := p.Validate(); err != nil {
		return "", Stats{}, err
	}

	idx := ngram.Build(cleanedCorpus, p.N)
	if len(idx.UniqueWords) == 0 {
		return "", Stats{}, fmt.Errorf("codec: corpus produced no usable words")
	}

	stream, err := seed.New(p.Passphrase)
	if err != nil {
		return "", Stats{}, err
	}

	switch p.Algorithm.Mode {
	case alphabet.BitMap:
		return encodeBitMap(p, idx, stream, payload)
	case alphabet.ValueMap:
		return encodeValueMap(p, idx, stream, payload)
	default:
		return "", Stats{}, fmt.Errorf("codec: unsupported mode")
	}
}

func encodeBitMap(p Policy, idx *ngram.Index, stream *seed.Stream, payload []byte) (string, Stats, error) {
	m, err := alphabet.NewBitCharMap(p.Bits)
	if err != nil {
		return "", Stats{}, err
	}
	// The map is filled once at setup regardless of UseShuffle: both the
	// encoder and the decoder start from a keyed permutation, not the raw
	// common[0..B] assignment.
	m.Fill(stream)

	skipWords := computeSkipWords(idx.UniqueWords, m)

	history := idx.InitialHistory()
	reader := bitstream.NewReader(payload)
	symbolCount := bitstream.SymbolCount(len(payload), p.Bits)

	var tokens []string
	var stats Stats
	consecutiveSkipsUsed := 0

symbolLoop:
	for i := 0; i < symbolCount; i++ {
		v, _ := reader.ReadBits(p.Bits)
		stats.SymbolsEncoded++

		if p.Algorithm.UseShuffle {
			skipWords = computeSkipWords(idx.UniqueWords, m)
		}

		for {
			guide := alphabet.CharsFromValue(v, m)
			restricted := restrictedChars(m, guide)
			usable := filterUsable(idx.UniqueWords, guide, restricted)

			switch len(usable) {
			case 0:
				// Capacity-fail (spec §9): no usable word exists for this
				// symbol. We emit a token guaranteed to be a skip word
				// (built from a letter outside the map's current value
				// set) rather than the source's buggy "guide" literal,
				// which is composed of mapped characters and would
				// therefore decode as a payload symbol instead of being
				// skipped. This symbol's bits are lost: later tokens still
				// decode to their own values and the shuffle schedule stays
				// in step, but every later payload bit is recovered B
				// positions early.
				tokens = append(tokens, skipLiteral(m))
				history = append(history, ".")
				consecutiveSkipsUsed = 0
				stats.CapacityFails++
				stats.TokensEmitted++
				continue symbolLoop
			case 1:
				tokens = append(tokens, usable[0])
				history = append(history, usable[0])
				consecutiveSkipsUsed = 0
				stats.TokensEmitted++
				if p.Algorithm.UseShuffle {
					m.Fill(stream)
					skipWords = computeSkipWords(idx.UniqueWords, m)
				}
				continue symbolLoop
			default:
				best, nUsed := idx.Backoff(history, usable, stream)
				if nUsed <= p.DepthSkipThreshold && consecutiveSkipsUsed < p.ConsecutiveSkipsLimit && len(skipWords) > 0 {
					bestSkip, _ := idx.Backoff(history, skipWords, stream)
					tokens = append(tokens, bestSkip)
					history = append(history, bestSkip)
					consecutiveSkipsUsed++
					stats.TokensEmitted++
					stats.SkipWordsEmitted++
					// Do not shuffle, do not advance the bitstream: retry
					// this same symbol (spec §4.5 step 4, the >=2-usable
					// skip branch).
					continue
				}
				tokens = append(tokens, best)
				history = append(history, best)
				consecutiveSkipsUsed = 0
				stats.TokensEmitted++
				if p.Algorithm.UseShuffle {
					m.Fill(stream)
					skipWords = computeSkipWords(idx.UniqueWords, m)
				}
				continue symbolLoop
			}
		}
	}

	return strings.Join(tokens, " "), stats, nil
}

func encodeValueMap(p Policy, idx *ngram.Index, stream *seed.Stream, payload []byte) (string, Stats, error) {
	vm, err := alphabet.NewValueCharMap(p.Bits)
	if err != nil {
		return "", Stats{}, err
	}

	candidates := make([]string, 0, len(idx.UniqueWords))
	for _, w := range idx.UniqueWords {
		if !valuePunctuation[w] {
			candidates = append(candidates, w)
		}
	}

	history := idx.InitialHistory()
	reader := bitstream.NewReader(payload)
	symbolCount := bitstream.SymbolCount(len(payload), p.Bits)

	var tokens []string
	var stats Stats

	for i := 0; i < symbolCount; i++ {
		v, _ := reader.ReadBits(p.Bits)
		stats.SymbolsEncoded++

		var usable []string
		for _, w := range candidates {
			if alphabet.ValueFromCharsValueMap(w, vm) == v {
				usable = append(usable, w)
			}
		}

		if len(usable) == 0 {
			// Spec §7: the source panics here; this is a fatal,
			// non-recoverable precondition failure (the corpus cannot
			// represent this value under the current B), not a soft
			// skip-and-continue condition, so we surface it as an error
			// rather than a panic — idiomatic Go for a fatal precondition.
			return "", stats, fmt.Errorf("codec: no corpus word has value %d under bits=%d", v, p.Bits)
		}

		var best string
		if len(usable) == 1 {
			best = usable[0]
		} else {
			best, _ = idx.Backoff(history, usable, stream)
		}
		tokens = append(tokens, best)
		history = append(history, best)
		stats.TokensEmitted++
	}

	return strings.Join(tokens, " "), stats, nil
}

// restrictedChars is the map's full current character set minus guide's
// characters: any of these appearing in a candidate word would set a bit
// the symbol doesn't want set (spec §4.5 step 2).
func restrictedChars(m *alphabet.BitCharMap, guide string) map[rune]struct{} {
	restricted := m.CharSet()
	for _, c := range guide {
		delete(restricted, c)
	}
	return restricted
}

// filterUsable keeps words with no restricted character that contain every
// guide character at least once (spec §4.5 step 3).
func filterUsable(words []string, guide string, restricted map[rune]struct{}) []string {
	var out []string
	for _, w := range words {
		if canUseWord(w, guide, restricted) {
			out = append(out, w)
		}
	}
	return out
}

func canUseWord(w, guide string, restricted map[rune]struct{}) bool {
	need := make(map[rune]bool, len(guide))
	for _, c := range guide {
		need[c] = false
	}
	for _, c := range w {
		if _, bad := restricted[c]; bad {
			return false
		}
		if _, want := need[c]; want {
			need[c] = true
		}
	}
	for _, got := range need {
		if !got {
			return false
		}
	}
	return true
}

func computeSkipWords(words []string, m *alphabet.BitCharMap) []string {
	var out []string
	for _, w := range words {
		if alphabet.IsSkipWordBitMap(w, m) {
			out = append(out, w)
		}
	}
	return out
}

// skipLiteral returns a one-character token guaranteed to be a skip word
// under m's current assignment: a common-character-list letter the map has
// not assigned to any key. Since a BitMap uses at most 9 of the 26 letters
// (B<=8), at least 17 are always free.
func skipLiteral(m *alphabet.BitCharMap) string {
	set := m.CharSet()
	for _, c := range alphabet.CommonChars {
		if _, used := set[c]; !used {
			return string(c)
		}
	}
	// Unreachable: a BitMap never assigns more than 9 of the 26 letters.
	return string(alphabet.CommonChars[0])
}

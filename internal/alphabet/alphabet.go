// Package alphabet implements the symbol alphabet (spec §4.2): the
// bidirectional mapping between B-bit symbol values and small character
// subsets, in both the BitMap and ValueMap variants, plus the keyed
// permutation schedule that advances BitMap state in lockstep between an
// encoder and a decoder.
package alphabet

import (
	"fmt"
	"sort"

	"textsteg/internal/seed"
)

// CommonChars is the fixed 26-letter list ordered by descending English
// frequency. This order is part of the on-the-wire contract (spec §3) and
// must never change.
var CommonChars = [26]rune{
	'i', 't', 'a', 'o', 'e', 'n', 's', 'h', 'r', 'd', 'l', 'c', 'u',
	'm', 'w', 'f', 'g', 'y', 'p', 'b', 'v', 'k', 'j', 'x', 'q', 'z',
}

// Mode distinguishes the two value-encoding schemes of spec §3.
type Mode int

const (
	// BitMap: a symbol's value is the set of characters present in a word.
	BitMap Mode = iota
	// ValueMap: a symbol's value is the multiset-sum of per-character
	// values, modulo 2^B.
	ValueMap
)

// Algorithm is {Shuffle, NoShuffle} x Mode, restricted to the selectors the
// source recognizes (spec §3): Shuffle(ValueMap) is never constructed.
type Algorithm struct {
	Mode       Mode
	UseShuffle bool
}

// ParseAlgorithm maps the recognized CLI selector strings to an Algorithm.
// char-value-shuffle is deliberately rejected: spec §3 notes the source
// never constructs Shuffle(ValueMap) and that the decoder's value-map path
// ignores its shuffle flag, so a faithful implementation refuses the
// combination outright rather than silently no-op-ing it.
func ParseAlgorithm(selector string) (Algorithm, error) {
	switch selector {
	case "char-bit":
		return Algorithm{Mode: BitMap, UseShuffle: false}, nil
	case "char-bit-shuffle":
		return Algorithm{Mode: BitMap, UseShuffle: true}, nil
	case "char-value":
		return Algorithm{Mode: ValueMap, UseShuffle: false}, nil
	case "char-value-shuffle":
		return Algorithm{}, fmt.Errorf("alphabet: algorithm %q is not supported (value-map shuffling is unreachable in the reference design)", selector)
	default:
		return Algorithm{}, fmt.Errorf("alphabet: unknown algorithm %q", selector)
	}
}

// BitKeys returns the B+1 BitMap keys in ascending order: 0, 1, 2, 4, ...,
// 2^(B-1).
func BitKeys(b int) []int {
	keys := make([]int, 0, b+1)
	keys = append(keys, 0)
	for i := 0; i < b; i++ {
		keys = append(keys, 1<<uint(i))
	}
	return keys
}

// BitCharMap pairs a BitMap and its inverse CharToBit map, mutated together
// on every shuffle step so they never drift out of sync (spec §9 "nested
// mutation maps").
type BitCharMap struct {
	B         int
	bitToChar map[int]rune
	charToBit map[rune]int
}

// NewBitCharMap builds the initial map per spec §4.2.1:
// {0: common[0], 1: common[1], 2: common[2], 4: common[3], ...,
// 2^(B-1): common[B]}.
func NewBitCharMap(b int) (*BitCharMap, error) {
	if b < 1 || b > 8 {
		return nil, fmt.Errorf("alphabet: bits must be in [1,8], got %d", b)
	}
	keys := BitKeys(b)
	m := &BitCharMap{
		B:         b,
		bitToChar: make(map[int]rune, len(keys)),
		charToBit: make(map[rune]int, len(keys)),
	}
	for i, k := range keys {
		c := CommonChars[i]
		m.bitToChar[k] = c
		m.charToBit[c] = k
	}
	return m, nil
}

// Fill replaces the B+1 char values by drawing, in ascending key order,
// distinct characters without replacement from the full 26-letter pool
// using the shared stream. This is the only place the encoder and decoder
// shuffle schedules can diverge if implemented differently, so the
// iteration order (ascending key) is load-bearing (spec §4.2.1).
func (m *BitCharMap) Fill(s *seed.Stream) {
	pool := make([]rune, len(CommonChars))
	copy(pool, CommonChars[:])
	remaining := len(pool)

	keys := BitKeys(m.B)
	bitToChar := make(map[int]rune, len(keys))
	charToBit := make(map[rune]int, len(keys))
	for _, k := range keys {
		idx := s.Uint(remaining)
		c := pool[idx]
		pool[idx] = pool[remaining-1]
		remaining--
		bitToChar[k] = c
		charToBit[c] = k
	}
	m.bitToChar = bitToChar
	m.charToBit = charToBit
}

// keysDescending returns the map's BitMap keys sorted descending — used by
// CharsFromValue's greedy construction.
func (m *BitCharMap) keysDescending() []int {
	keys := make([]int, 0, len(m.bitToChar))
	for k := range m.bitToChar {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}

// Char returns the character assigned to bit-key k.
func (m *BitCharMap) Char(k int) (rune, bool) {
	c, ok := m.bitToChar[k]
	return c, ok
}

// Bit returns the bit-key assigned to character c.
func (m *BitCharMap) Bit(c rune) (int, bool) {
	k, ok := m.charToBit[c]
	return k, ok
}

// CharSet returns the set of characters currently assigned to any key.
func (m *BitCharMap) CharSet() map[rune]struct{} {
	set := make(map[rune]struct{}, len(m.charToBit))
	for c := range m.charToBit {
		set[c] = struct{}{}
	}
	return set
}

// ValueFromCharsBitMap implements spec §4.2.3's BitMap branch: v=0;
// iterate word characters left-to-right; for each character not yet seen,
// add its bit-value if mapped; duplicates are ignored.
func ValueFromCharsBitMap(word string, m *BitCharMap) int {
	v := 0
	seen := make(map[rune]struct{})
	for _, c := range word {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if bit, ok := m.Bit(c); ok {
			v += bit
		}
	}
	return v
}

// CharsFromValue implements spec §4.2.4: a minimal guide string whose
// characters' bit-sum equals v, built greedily from descending keys.
func CharsFromValue(v int, m *BitCharMap) string {
	keys := m.keysDescending()
	remaining := v
	var out []rune
	for _, k := range keys {
		if k == remaining {
			if c, ok := m.Char(k); ok {
				out = append(out, c)
			}
			remaining = 0
			break
		}
		if k < remaining {
			if c, ok := m.Char(k); ok {
				out = append(out, c)
			}
			remaining -= k
		}
	}
	return string(out)
}

// IsSkipWordBitMap reports whether w contains no character from m's current
// value set (spec §4.2.5): such a word carries no payload and must not
// advance the bitstream or the shuffle schedule.
func IsSkipWordBitMap(w string, m *BitCharMap) bool {
	for _, c := range w {
		if _, ok := m.Bit(c); ok {
			return false
		}
	}
	return true
}

// ValueCharMap is the deterministic ValueMap construction of spec §3: no
// PRNG involvement, built once and never reshuffled even under
// Shuffle(ValueMap) selectors (spec §4.2.2).
type ValueCharMap struct {
	b       int
	charVal map[rune]int
}

// NewValueCharMap zips common[i] with common[25-i] for i in [0,13), assigning
// both positions the cyclic counter i mod 2^B. The pairing (12,13) maps both
// 'u' and 'm' to the same value; this collision is preserved intentionally
// (spec §9 "ValueMap middle letters" — documented, not "fixed").
func NewValueCharMap(b int) (*ValueCharMap, error) {
	if b < 1 || b > 8 {
		return nil, fmt.Errorf("alphabet: bits must be in [1,8], got %d", b)
	}
	m := &ValueCharMap{b: b, charVal: make(map[rune]int, 26)}
	mod := 1 << uint(b)
	for i := 0; i < 13; i++ {
		v := i % mod
		m.charVal[CommonChars[i]] = v
		m.charVal[CommonChars[25-i]] = v
	}
	return m, nil
}

// Value returns the value assigned to c and whether c is covered.
func (m *ValueCharMap) Value(c rune) (int, bool) {
	v, ok := m.charVal[c]
	return v, ok
}

// ValueFromCharsValueMap implements spec §4.2.3's ValueMap branch: iterate
// characters with no de-duplication, summing mapped values modulo 2^B.
func ValueFromCharsValueMap(word string, m *ValueCharMap) int {
	mod := 1 << uint(m.b)
	v := 0
	for _, c := range word {
		if hit, ok := m.Value(c); ok {
			v += hit
		}
	}
	return v % mod
}

// HasUsableChar reports whether word contains at least one character this
// map assigns a value to. It does not itself exclude punctuation tokens
// (. , ? ; !); the ValueMap encoder drops those from its candidate pool
// separately (codec's valuePunctuation, spec §9 "Punctuation in ValueMap
// mode"), since the decoder never treats them as skip words.
func (m *ValueCharMap) HasUsableChar(word string) bool {
	for _, c := range word {
		if _, ok := m.Value(c); ok {
			return true
		}
	}
	return false
}

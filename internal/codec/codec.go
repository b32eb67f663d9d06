// Package codec ties together the alphabet, bitstream, and n-gram packages
// into the two top-level operations the CLI exposes: Encode (the wordifier,
// spec §4.5) and Decode (the unwordifier, spec §4.6).
package codec

import (
	"fmt"

	"textsteg/internal/alphabet"
)

// Policy holds the shared secrets/parameters an encoder and a decoder must
// agree on (spec §1): passphrase, bits-per-symbol, and algorithm selector,
// plus the encode-only tuning knobs from spec §6.
type Policy struct {
	Passphrase            string
	Bits                  int
	Algorithm             alphabet.Algorithm
	N                     int
	ConsecutiveSkipsLimit int
	DepthSkipThreshold    int
}

// Validate checks the bounds spec §6 fixes: bits in [1,8], n >= 1.
func (p Policy) Validate() error {
	if p.Bits < 1 || p.Bits > 8 {
		return fmt.Errorf("codec: bits must be in [1,8], got %d", p.Bits)
	}
	if p.N < 1 {
		return fmt.Errorf("codec: n must be >= 1, got %d", p.N)
	}
	return nil
}

// Stats summarizes one encode run for the CLI and the run history.
type Stats struct {
	SymbolsEncoded   int
	TokensEmitted    int
	SkipWordsEmitted int
	CapacityFails    int
}

// valuePunctuation is excluded from ValueMap candidate pools: the decoder
// never treats punctuation as a skip word in that mode, so leaving it in
// would require reproducing the spacing the punctuation had in the corpus
// (spec §9 "Punctuation in ValueMap mode").
var valuePunctuation = map[string]bool{
	".": true, ",": true, "?": true, ";": true, "!": true,
}

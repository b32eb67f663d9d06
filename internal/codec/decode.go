package codec

import (
	"fmt"
	"strings"

	"textsteg/internal/alphabet"
	"textsteg/internal/bitstream"
	"textsteg/internal/seed"
)

// Decode implements the unwordifier (spec §4.6): tokenize the stego text by
// single-space split, recover each token's symbol value under the current
// permutation, skip tokens that carry no payload, and pack the recovered
// symbols back into bytes.
func Decode(p Policy, stegoText string) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	stream, err := seed.New(p.Passphrase)
	if err != nil {
		return nil, err
	}

	switch p.Algorithm.Mode {
	case alphabet.BitMap:
		return decodeBitMap(p, stream, stegoText)
	case alphabet.ValueMap:
		return decodeValueMap(p, stream, stegoText)
	default:
		return nil, fmt.Errorf("codec: unsupported mode")
	}
}

// tokenizeSpaceSplit performs spec §4.6's exact single-space split,
// preserving empty tokens (e.g. from doubled spaces) — deliberately not
// strings.Fields, which would collapse them.
func tokenizeSpaceSplit(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

func decodeBitMap(p Policy, stream *seed.Stream, stegoText string) ([]byte, error) {
	m, err := alphabet.NewBitCharMap(p.Bits)
	if err != nil {
		return nil, err
	}
	m.Fill(stream)

	tokens := tokenizeSpaceSplit(stegoText)
	totalBits := (len(tokens) * p.Bits) / 8 * 8
	w := bitstream.NewWriter(totalBits)

	// Processing continues across every token even after the payload's
	// bits are exhausted: remaining non-skip tokens still advance the
	// shuffle schedule (WriteBits becomes a no-op once the budget is
	// spent), which is what keeps a decoder's map in lockstep with an
	// encoder's even when extra tokens trail the real payload (spec §4.6,
	// Testable Property 4).
	remaining := totalBits
	for _, tok := range tokens {
		if alphabet.IsSkipWordBitMap(tok, m) {
			continue
		}
		v := alphabet.ValueFromCharsBitMap(tok, m)
		n := p.Bits
		if remaining < n {
			n = 0
			if remaining > 0 {
				n = remaining
			}
		}
		w.WriteBits(v, n)
		remaining -= n
		if p.Algorithm.UseShuffle {
			m.Fill(stream)
		}
	}

	return w.Bytes(), nil
}

func decodeValueMap(p Policy, _ *seed.Stream, stegoText string) ([]byte, error) {
	vm, err := alphabet.NewValueCharMap(p.Bits)
	if err != nil {
		return nil, err
	}

	tokens := tokenizeSpaceSplit(stegoText)
	totalBits := (len(tokens) * p.Bits) / 8 * 8
	w := bitstream.NewWriter(totalBits)

	remaining := totalBits
	for _, tok := range tokens {
		// ValueMap mode never skips: every token is a payload symbol, and
		// the map is never reshuffled (spec §4.2.2, §4.6).
		v := alphabet.ValueFromCharsValueMap(tok, vm)
		n := p.Bits
		if remaining < n {
			n = 0
			if remaining > 0 {
				n = remaining
			}
		}
		w.WriteBits(v, n)
		remaining -= n
	}

	return w.Bytes(), nil
}

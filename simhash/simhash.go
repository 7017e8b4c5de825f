// Package simhash fingerprints article bodies so that syndicated copies of
// the same story can be recognised across outlets.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

// shingleRunes is the width of the character shingles hashed into the
// fingerprint. Korean text has no reliable word boundaries for this.
const shingleRunes = 3

// DuplicateThreshold is the largest distance at which two bodies are
// treated as the same story.
const DuplicateThreshold = 3

// Fingerprint computes a 64-bit SimHash of text over character shingles,
// ignoring whitespace, punctuation and case.
func Fingerprint(text string) uint64 {
	runes := normalize(text)
	if len(runes) == 0 {
		return 0
	}

	var vector [64]int
	add := func(s []rune) {
		h := fnv.New64a()
		h.Write([]byte(string(s)))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	if len(runes) < shingleRunes {
		add(runes)
	}
	for i := 0; i+shingleRunes <= len(runes); i++ {
		add(runes[i : i+shingleRunes])
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}
	return fingerprint
}

func normalize(text string) []rune {
	out := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}

// Distance returns the Hamming distance between two SimHash fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// DuplicateOf matches each text against the earlier ones. out[i] is the
// index of the first earlier original within DuplicateThreshold of
// texts[i], or -1. Empty texts are never matched and never match.
func DuplicateOf(texts []string) []int {
	type original struct {
		index int
		fp    uint64
	}
	out := make([]int, len(texts))
	var originals []original
	for i, text := range texts {
		out[i] = -1
		if text == "" {
			continue
		}
		fp := Fingerprint(text)
		for _, o := range originals {
			if Similar(fp, o.fp, DuplicateThreshold) {
				out[i] = o.index
				break
			}
		}
		if out[i] < 0 {
			originals = append(originals, original{index: i, fp: fp})
		}
	}
	return out
}

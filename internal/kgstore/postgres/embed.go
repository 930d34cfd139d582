package postgres

import (
	"hash/fnv"
	"math"
	"strings"
)

// shingleSize is the character n-gram width used by [Embed].
const shingleSize = 3

// Embed produces a fixed-length, locally-computed embedding for text by
// hashing every character shingle into one of [Dimensions] buckets and
// L2-normalising the resulting count vector. This is a deliberately
// simple stand-in for a learned embedding model: no semantic embedding
// model is in scope, and this store only needs a vector that is stable
// and puts similar descriptions near each other under cosine distance,
// not a high-quality one.
func Embed(text string) []float32 {
	v := make([]float32, Dimensions)

	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	runes := []rune(norm)
	if len(runes) < shingleSize {
		runes = append(runes, make([]rune, shingleSize-len(runes))...)
	}

	for i := 0; i+shingleSize <= len(runes); i++ {
		shingle := string(runes[i : i+shingleSize])
		h := fnv.New32a()
		_, _ = h.Write([]byte(shingle))
		bucket := h.Sum32() % uint32(Dimensions)
		v[bucket]++
	}

	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm2 := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm2
	}
	return v
}

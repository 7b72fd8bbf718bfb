// Package retrieval implements similarity search over the bundled emergency
// guidance knowledge base, used to ground the ask command's answers.
package retrieval

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Embedder turns text into a fixed-dimension vector. The production mobile
// client supplies model embeddings; the default here is a deterministic
// hashing embedder that needs no model and no network.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

const hashingDimensions = 256

// HashingEmbedder is a bag-of-words feature-hashing embedder. Identical text
// always yields identical vectors, which keeps retrieval reproducible in
// tests and offline.
type HashingEmbedder struct{}

func (HashingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, hashingDimensions)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%hashingDimensions] += 1
	}
	normalize(vec)
	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either vector is zero or the dimensions differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

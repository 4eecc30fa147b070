// Package vector holds the similarity maths shared by the vector store
// adapters: cosine distance, ranking and the float32 BLOB encoding.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// CosineDistance returns 1 - cosine similarity, in [0, 2].
// A zero-length or zero-magnitude vector is maximally distant.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp rounding error.
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim, nil
}

// Candidate is a stored document considered for a query.
// Seq is its insertion order and breaks distance ties.
type Candidate struct {
	Seq       int64
	ID        string
	PatientID string
	Kind      domain.DocumentKind
	Text      string
	Vector    []float32
}

// Rank scores candidates against query and returns the best k, nearest first.
// Equal distances keep insertion order.
func Rank(query []float32, candidates []Candidate, k int) ([]domain.RetrievalHit, error) {
	type scored struct {
		c    Candidate
		dist float64
	}

	all := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d, err := CosineDistance(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", c.ID, err)
		}
		all = append(all, scored{c: c, dist: d})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].c.Seq < all[j].c.Seq
	})

	if k < len(all) {
		all = all[:k]
	}
	hits := make([]domain.RetrievalHit, len(all))
	for i, s := range all {
		hits[i] = domain.RetrievalHit{
			Text:      s.c.Text,
			Kind:      s.c.Kind,
			PatientID: s.c.PatientID,
			Distance:  s.dist,
		}
	}
	return hits, nil
}

// Encode serialises a vector as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses bytes written by Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

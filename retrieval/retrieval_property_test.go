package retrieval

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/BaSui01/rfpflow/types"
)

// Normalize 的输出必须满足：降序、去重、阈值过滤、长度不超过 topK。
func TestNormalize_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "n")
		matches := make([]types.SimilarityMatch, n)
		for i := range matches {
			matches[i] = types.SimilarityMatch{
				SourceRequirementID: rapid.Int64Range(1, 10).Draw(t, "source_id"),
				Score:               rapid.Float64Range(0, 1).Draw(t, "score"),
			}
		}
		topK := rapid.IntRange(1, 10).Draw(t, "topK")
		minScore := rapid.Float64Range(0, 1).Draw(t, "minScore")

		out := Normalize(matches, topK, minScore)

		if len(out) > topK {
			t.Fatalf("output length %d exceeds topK %d", len(out), topK)
		}

		seen := make(map[int64]bool)
		for i, m := range out {
			if m.Score < minScore {
				t.Fatalf("match %d score %f below threshold %f", i, m.Score, minScore)
			}
			if i > 0 && out[i-1].Score < m.Score {
				t.Fatalf("output not sorted descending at %d", i)
			}
			if seen[m.SourceRequirementID] {
				t.Fatalf("duplicate source id %d", m.SourceRequirementID)
			}
			seen[m.SourceRequirementID] = true
		}
	})
}

// 对任意向量，自身相似度为 1，且相似度对称。
func TestCosineSimilarity_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dims := rapid.IntRange(1, 16).Draw(t, "dims")
		a := make([]float64, dims)
		b := make([]float64, dims)
		nonZeroA, nonZeroB := false, false
		for i := 0; i < dims; i++ {
			a[i] = rapid.Float64Range(-10, 10).Draw(t, "a")
			b[i] = rapid.Float64Range(-10, 10).Draw(t, "b")
			nonZeroA = nonZeroA || a[i] != 0
			nonZeroB = nonZeroB || b[i] != 0
		}

		if nonZeroA {
			self := CosineSimilarity(a, a)
			if self < 0.999999 || self > 1 {
				t.Fatalf("self similarity = %f, want 1", self)
			}
		}

		ab := CosineSimilarity(a, b)
		ba := CosineSimilarity(b, a)
		if diff := ab - ba; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("similarity not symmetric: %f vs %f", ab, ba)
		}
		if ab < -1 || ab > 1 {
			t.Fatalf("similarity %f outside [-1,1]", ab)
		}
	})
}

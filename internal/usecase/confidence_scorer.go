package usecase

import (
	"math"
	"strings"

	"github.com/competitive-edge/backend/internal/domain"
)

// Blend weights for the confidence score
const (
	specWeight     = 0.6 // structured field similarity
	semanticWeight = 0.4 // embedding cosine similarity
)

// closenessEpsilon guards the relative-difference denominator against zero.
const closenessEpsilon = 1e-9

// ScoreBreakdown carries the blended confidence score and its two components,
// each in [0,1].
type ScoreBreakdown struct {
	Confidence         float64 `json:"confidenceScore"`
	SpecSimilarity     float64 `json:"specSimilarity"`
	SemanticSimilarity float64 `json:"semanticSimilarity"`
}

// ConfidenceScorer computes a [0,1] match score between a product and a
// candidate's extracted data. It is pure and deterministic: identical inputs
// always produce the identical score.
type ConfidenceScorer struct{}

// NewConfidenceScorer creates a new confidence scorer
func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{}
}

// Score blends structured spec similarity (60%) with semantic embedding
// similarity (40%). The embeddings are supplied by the caller; a missing
// embedding degrades the semantic term to 0 rather than failing.
func (s *ConfidenceScorer) Score(
	schema domain.ProductSchema,
	userData, candidateData map[string]any,
	userEmbedding, candidateEmbedding []float32,
) ScoreBreakdown {
	spec := s.specSimilarity(schema, userData, candidateData)
	semantic := semanticSimilarity(userEmbedding, candidateEmbedding)

	confidence := specWeight*spec + semanticWeight*semantic
	return ScoreBreakdown{
		Confidence:         clamp01(confidence),
		SpecSimilarity:     spec,
		SemanticSimilarity: semantic,
	}
}

// specSimilarity averages a per-field closeness over every schema field valued
// on both sides. Numeric closeness is 1 - min(1, |a-b| / max(|a|, |b|, eps));
// text and boolean closeness is exact case-insensitive equality after trimming.
// With no comparable field the similarity is 0.
func (s *ConfidenceScorer) specSimilarity(schema domain.ProductSchema, userData, candidateData map[string]any) float64 {
	var sum float64
	var count int

	for _, field := range schema.Fields {
		userValue, userOK := userData[field.Name]
		candidateValue, candidateOK := candidateData[field.Name]
		if !userOK || !candidateOK || userValue == nil || candidateValue == nil {
			continue
		}

		if field.Type.IsNumeric() {
			a, aOK := domain.NumericValue(userValue)
			b, bOK := domain.NumericValue(candidateValue)
			if !aOK || !bOK {
				continue
			}
			sum += numericCloseness(a, b)
			count++
			continue
		}

		if textEqual(userValue, candidateValue) {
			sum += 1.0
		}
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func numericCloseness(a, b float64) float64 {
	denom := math.Max(math.Max(math.Abs(a), math.Abs(b)), closenessEpsilon)
	return 1 - math.Min(1, math.Abs(a-b)/denom)
}

func textEqual(a, b any) bool {
	return strings.EqualFold(
		strings.TrimSpace(stringValue(a)),
		strings.TrimSpace(stringValue(b)),
	)
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := coerceValue(v, domain.FieldTypeText).(string); ok {
		return f
	}
	return ""
}

// semanticSimilarity maps the cosine of the two embeddings from [-1,1] to
// [0,1]. A missing or zero-norm vector on either side yields 0.
func semanticSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp01((cosine + 1) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

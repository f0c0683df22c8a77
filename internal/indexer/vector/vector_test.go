package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountVectorizer(t *testing.T) {
	v := NewCount()
	rows := v.FitTransform([]string{"reset password password", "reset email"})

	assert.Equal(t, []string{"email", "password", "reset"}, v.Features())
	require.Len(t, rows, 2)
	assert.Equal(t, Sparse{Indices: []int{1, 2}, Values: []float64{2, 1}}, rows[0])
	assert.Equal(t, Sparse{Indices: []int{0, 2}, Values: []float64{1, 1}}, rows[1])
	assert.Nil(t, v.IDF)
}

func TestTFIDFVectorizerBigramsAndNorm(t *testing.T) {
	v := NewTFIDF()
	rows := v.FitTransform([]string{"reset my password", "reset email"})

	features := v.Features()
	assert.Contains(t, features, "reset my")
	assert.Contains(t, features, "my password")
	assert.NotContains(t, features, "reset email password")
	for _, row := range rows {
		assert.InDelta(t, 1.0, row.Norm(), 1e-12)
	}

	// smooth idf: ln((1+n)/(1+df)) + 1
	assert.InDelta(t, 1.0, v.IDF[v.Vocabulary["reset"]], 1e-12)
	assert.InDelta(t, math.Log(3.0/2.0)+1, v.IDF[v.Vocabulary["email"]], 1e-12)
}

func TestAnalyzeDropsSingleRuneTokens(t *testing.T) {
	v := NewTFIDF()
	v.FitTransform([]string{"do i reset my password"})

	_, hasI := v.Vocabulary["i"]
	assert.False(t, hasI)
	// bigrams are formed after dropping short tokens
	_, ok := v.Vocabulary["do reset"]
	assert.True(t, ok)
}

func TestTransformIgnoresUnknownTerms(t *testing.T) {
	v := NewCount()
	v.FitTransform([]string{"reset password"})

	q := v.Transform("weather today")
	assert.Empty(t, q.Indices)
	assert.Zero(t, q.Norm())
}

func TestCosineAll(t *testing.T) {
	v := NewTFIDF()
	rows := v.FitTransform([]string{"reset password", "weather forecast", "reset email"})

	scores := CosineAll(v.Transform("reset password"), rows)
	require.Len(t, scores, 3)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.Zero(t, scores[1])
	assert.Greater(t, scores[2], 0.0)
	assert.Less(t, scores[2], 1.0)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
	}
}

func TestCosineZeroVectors(t *testing.T) {
	empty := Sparse{}
	row := Sparse{Indices: []int{0}, Values: []float64{3}}

	assert.Zero(t, Cosine(empty, row))
	assert.Equal(t, []float64{0, 0}, CosineAll(empty, []Sparse{row, row}))
	assert.Equal(t, []float64{0}, CosineAll(row, []Sparse{empty}))
	assert.Empty(t, CosineAll(row, nil))
}

func TestDot(t *testing.T) {
	a := Sparse{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := Sparse{Indices: []int{2, 3, 5}, Values: []float64{4, 7, 1}}
	assert.Equal(t, 11.0, Dot(a, b))
	assert.InDelta(t, 11.0/(math.Sqrt(14)*math.Sqrt(66)), Cosine(a, b), 1e-12)
}

package vector

import (
	"math"
	"sort"
)

// Sparse is a row of a document-term matrix: parallel column indices and
// values, ordered by column.
type Sparse struct {
	Indices []int     `cbor:"i"`
	Values  []float64 `cbor:"v"`
}

func fromMap(m map[int]float64) Sparse {
	s := Sparse{
		Indices: make([]int, 0, len(m)),
		Values:  make([]float64, 0, len(m)),
	}
	for col := range m {
		s.Indices = append(s.Indices, col)
	}
	sort.Ints(s.Indices)
	for _, col := range s.Indices {
		s.Values = append(s.Values, m[col])
	}
	return s
}

// Norm returns the Euclidean length of s.
func (s Sparse) Norm() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s Sparse) normalized() Sparse {
	norm := s.Norm()
	if norm == 0 {
		return s
	}
	out := Sparse{
		Indices: s.Indices,
		Values:  make([]float64, len(s.Values)),
	}
	for i, v := range s.Values {
		out.Values[i] = v / norm
	}
	return out
}

// Dot returns the inner product of two sparse rows.
func Dot(a, b Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of a and b, or 0 when either has
// zero length.
func Cosine(a, b Sparse) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// CosineAll scores query against every row of matrix, aligned by position.
func CosineAll(query Sparse, matrix []Sparse) []float64 {
	scores := make([]float64, len(matrix))
	qn := query.Norm()
	if qn == 0 {
		return scores
	}
	for i, row := range matrix {
		rn := row.Norm()
		if rn == 0 {
			continue
		}
		scores[i] = Dot(query, row) / (qn * rn)
	}
	return scores
}

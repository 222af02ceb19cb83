// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package author

import (
	"cmp"
	"math"
	"slices"
)

// Pair is one accepted author pairing: row I of the first list with column
// J of the second.
type Pair struct {
	I, J  int
	Score float64
}

// GreedyPairs accepts the highest-scoring pairs first, never reusing a row
// or column, and stops considering pairs below minScore. Ties break on
// (I, J) so the result is deterministic.
func GreedyPairs(matrix [][]float64, minScore float64) []Pair {
	var candidates []Pair
	for i, row := range matrix {
		for j, s := range row {
			if s >= minScore {
				candidates = append(candidates, Pair{I: i, J: j, Score: s})
			}
		}
	}
	slices.SortFunc(candidates, func(x, y Pair) int {
		return cmp.Or(cmp.Compare(y.Score, x.Score), cmp.Compare(x.I, y.I), cmp.Compare(x.J, y.J))
	})

	usedRow := make(map[int]bool)
	usedCol := make(map[int]bool)
	var pairs []Pair
	for _, c := range candidates {
		if usedRow[c.I] || usedCol[c.J] {
			continue
		}
		usedRow[c.I] = true
		usedCol[c.J] = true
		pairs = append(pairs, c)
	}
	return pairs
}

// OptimalPairs finds the assignment maximizing the total score of pairs at
// or above minScore (Kuhn-Munkres, O(n^3)). Pairs below minScore count as
// zero and are not returned. Results are ordered by (I, J).
func OptimalPairs(matrix [][]float64, minScore float64) []Pair {
	rows := len(matrix)
	if rows == 0 || len(matrix[0]) == 0 {
		return nil
	}
	cols := len(matrix[0])

	transposed := rows > cols
	n, m := rows, cols
	if transposed {
		n, m = cols, rows
	}
	weight := func(i, j int) float64 {
		var s float64
		if transposed {
			s = matrix[j][i]
		} else {
			s = matrix[i][j]
		}
		if s < minScore {
			return 0
		}
		return s
	}

	// 1-indexed potentials; p[j] is the row assigned to column j.
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)
	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := -weight(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	var pairs []Pair
	for j := 1; j <= m; j++ {
		if p[j] == 0 {
			continue
		}
		i, c := p[j]-1, j-1
		if transposed {
			i, c = c, i
		}
		if s := matrix[i][c]; s >= minScore {
			pairs = append(pairs, Pair{I: i, J: c, Score: s})
		}
	}
	slices.SortFunc(pairs, func(x, y Pair) int {
		return cmp.Or(cmp.Compare(x.I, y.I), cmp.Compare(x.J, y.J))
	})
	return pairs
}

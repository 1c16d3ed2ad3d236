// Package align computes edit scripts between two sequences and a
// character-level similarity ratio between two strings.
package align

import "fmt"

// Tag is the kind of an alignment instruction.
type Tag string

const (
	Equal   Tag = "equal"
	Delete  Tag = "delete"
	Insert  Tag = "insert"
	Replace Tag = "replace"
)

// Opcode maps a[I1:I2] onto b[J1:J2].
type Opcode struct {
	Tag Tag `json:"tag"`
	I1  int `json:"i1"`
	I2  int `json:"i2"`
	J1  int `json:"j1"`
	J2  int `json:"j2"`
}

// AlignmentError reports an edit script that does not cover both inputs.
// It is only ever raised as a panic value.
type AlignmentError struct {
	Reason string
}

func (e *AlignmentError) Error() string {
	return "alignment invariant violated: " + e.Reason
}

// Opcodes returns the minimal edit script turning a into b, using exact
// element equality and a longest-common-subsequence alignment.
// Consecutive matches merge into one equal opcode and every maximal
// non-matching run becomes a single delete, insert or replace.
func Opcodes[T comparable](a, b []T) []Opcode {
	matches := lcs(a, b)

	var ops []Opcode
	i, j := 0, 0
	for _, m := range matches {
		ops = appendGap(ops, i, m.i, j, m.j)
		if n := len(ops); n > 0 && ops[n-1].Tag == Equal && ops[n-1].I2 == m.i && ops[n-1].J2 == m.j {
			ops[n-1].I2++
			ops[n-1].J2++
		} else {
			ops = append(ops, Opcode{Tag: Equal, I1: m.i, I2: m.i + 1, J1: m.j, J2: m.j + 1})
		}
		i, j = m.i+1, m.j+1
	}
	ops = appendGap(ops, i, len(a), j, len(b))

	if err := validate(ops, len(a), len(b)); err != nil {
		panic(err)
	}
	return ops
}

type pair struct{ i, j int }

// lcs returns the matched index pairs of one longest common subsequence.
// On ties the earliest match in a wins.
func lcs[T comparable](a, b []T) []pair {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// suffix[i][j] is the LCS length of a[i:] and b[j:].
	width := m + 1
	suffix := make([]int, (n+1)*width)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				suffix[i*width+j] = suffix[(i+1)*width+j+1] + 1
			default:
				suffix[i*width+j] = max(suffix[(i+1)*width+j], suffix[i*width+j+1])
			}
		}
	}

	out := make([]pair, 0, suffix[0])
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, pair{i, j})
			i++
			j++
		case suffix[i*width+j+1] >= suffix[(i+1)*width+j]:
			// Skipping b keeps a[i] available for an earlier match.
			j++
		default:
			i++
		}
	}
	return out
}

func appendGap(ops []Opcode, i1, i2, j1, j2 int) []Opcode {
	var tag Tag
	switch {
	case i1 < i2 && j1 < j2:
		tag = Replace
	case i1 < i2:
		tag = Delete
	case j1 < j2:
		tag = Insert
	default:
		return ops
	}
	return append(ops, Opcode{Tag: tag, I1: i1, I2: i2, J1: j1, J2: j2})
}

func validate(ops []Opcode, n, m int) error {
	i, j := 0, 0
	for k, op := range ops {
		if op.I1 != i || op.J1 != j {
			return &AlignmentError{Reason: fmt.Sprintf("opcode %d starts at (%d,%d), want (%d,%d)", k, op.I1, op.J1, i, j)}
		}
		if op.I2 < op.I1 || op.J2 < op.J1 {
			return &AlignmentError{Reason: fmt.Sprintf("opcode %d has a negative range", k)}
		}
		if k > 0 && op.Tag != Equal && ops[k-1].Tag != Equal {
			return &AlignmentError{Reason: fmt.Sprintf("opcodes %d and %d are adjacent non-equal runs", k-1, k)}
		}
		i, j = op.I2, op.J2
	}
	if i != n || j != m {
		return &AlignmentError{Reason: fmt.Sprintf("script ends at (%d,%d), want (%d,%d)", i, j, n, m)}
	}
	return nil
}

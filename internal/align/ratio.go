package align

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns the Ratcliff/Obershelp similarity of a and b: twice the
// number of characters in matching blocks divided by the total number of
// characters. Two empty strings are identical (1.0).
//
// Characters are compared as runes and no element is treated as junk, so
// long paragraphs are scored the same way as short ones.
func Ratio(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil)
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

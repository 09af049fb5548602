package embedding

import "strings"

// Encode maps a sentence to a fixed-length vector by summing the embeddings
// of every in-vocabulary token. Tokens are split on whitespace and looked up
// exactly (case-sensitive); unknown tokens contribute nothing. A sentence
// with no known tokens encodes to the zero vector.
func (v *Vocabulary) Encode(text string) []float64 {
	sum := make([]float64, v.dim)
	for _, word := range strings.Fields(text) {
		vec := v.vectors[word]
		if vec == nil {
			continue
		}
		for i, val := range vec {
			sum[i] += val
		}
	}
	return sum
}

// Package embedding turns free text into fixed-length sentence vectors using
// a pretrained word-embedding table.
package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Vocabulary is an immutable word-to-vector table. It is loaded once at
// startup and safe for concurrent reads.
type Vocabulary struct {
	dim     int
	vectors map[string][]float64
}

// LoadVocabulary reads a word-embedding table from a text file. A load
// failure is fatal for the caller; there is no partial vocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer f.Close()

	v, err := ParseVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	return v, nil
}

// ParseVocabulary reads a word2vec-style text table: one word per line
// followed by its vector components, whitespace separated. An optional
// "count dimension" header line is accepted and skipped.
func ParseVocabulary(r io.Reader) (*Vocabulary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	v := &Vocabulary{vectors: make(map[string][]float64)}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		// Header line: "<count> <dim>".
		if lineNo == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				if dim, err := strconv.Atoi(fields[1]); err == nil {
					v.dim = dim
					continue
				}
			}
		}

		word := fields[0]
		vec := make([]float64, len(fields)-1)
		for i, s := range fields[1:] {
			val, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad component %q: %w", lineNo, s, err)
			}
			vec[i] = val
		}

		if v.dim == 0 {
			v.dim = len(vec)
		}
		if len(vec) != v.dim {
			return nil, fmt.Errorf("line %d: word %q has %d components, want %d", lineNo, word, len(vec), v.dim)
		}

		v.vectors[word] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}
	if len(v.vectors) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	return v, nil
}

// Dim returns the embedding width.
func (v *Vocabulary) Dim() int { return v.dim }

// Len returns the number of words in the table.
func (v *Vocabulary) Len() int { return len(v.vectors) }

// Lookup returns the vector for a word, or nil if the word is unknown.
// Lookup is case-sensitive and exact.
func (v *Vocabulary) Lookup(word string) []float64 {
	return v.vectors[word]
}

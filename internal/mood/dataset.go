package mood

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Sample is one labeled training example.
type Sample struct {
	Sentence     string
	Danceability float64
	Energy       float64
}

// LoadDataset reads a flat-text training file of `sentence,danceability,energy`
// lines. A line that cannot be parsed is logged and skipped; it never aborts
// the load. Negative labels are clamped to 0 at ingestion.
func LoadDataset(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	samples, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return samples, nil
}

// ParseDataset parses training lines from r. The sentence itself may contain
// commas, so each line is split on its last two commas.
func ParseDataset(r io.Reader) ([]Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var samples []Sample
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseSampleLine(line)
		if err != nil {
			log.Printf("dataset: skipping line %d: %v", lineNo, err)
			continue
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

func parseSampleLine(line string) (Sample, error) {
	last := strings.LastIndex(line, ",")
	if last < 0 {
		return Sample{}, fmt.Errorf("no labels found")
	}
	secondLast := strings.LastIndex(line[:last], ",")
	if secondLast < 0 {
		return Sample{}, fmt.Errorf("only one label found")
	}

	sentence := line[:secondLast]
	danceability, err := strconv.ParseFloat(strings.TrimSpace(line[secondLast+1:last]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("bad danceability: %w", err)
	}
	energy, err := strconv.ParseFloat(strings.TrimSpace(line[last+1:]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("bad energy: %w", err)
	}

	return Sample{
		Sentence:     sentence,
		Danceability: clampNonNegative(danceability),
		Energy:       clampNonNegative(energy),
	}, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

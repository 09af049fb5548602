package mood

import (
	"strings"
	"testing"
)

func TestParseDataset(t *testing.T) {
	input := strings.Join([]string{
		"I danced all night,0.9,0.85",
		"Today was quiet,0.2,0.15",
	}, "\n")

	samples, err := ParseDataset(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Sentence != "I danced all night" {
		t.Errorf("sentence = %q", samples[0].Sentence)
	}
	if samples[0].Danceability != 0.9 || samples[0].Energy != 0.85 {
		t.Errorf("labels = %v, %v", samples[0].Danceability, samples[0].Energy)
	}
}

func TestParseDatasetSentenceWithCommas(t *testing.T) {
	// Only the last two commas separate labels.
	input := "Well, that was odd, honestly,0.5,0.6\n"

	samples, err := ParseDataset(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if samples[0].Sentence != "Well, that was odd, honestly" {
		t.Errorf("sentence = %q", samples[0].Sentence)
	}
}

func TestParseDatasetClampsNegativeLabels(t *testing.T) {
	samples, err := ParseDataset(strings.NewReader("a rough day,-0.3,-1\n"))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if samples[0].Danceability != 0 || samples[0].Energy != 0 {
		t.Errorf("labels = %v, %v, want 0, 0", samples[0].Danceability, samples[0].Energy)
	}
}

func TestParseDatasetSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"good line,0.5,0.5",
		"no labels at all",
		"bad number,abc,0.5",
		"only one label,0.5",
		"",
		"another good line,0.1,0.9",
	}, "\n")

	samples, err := ParseDataset(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2 (malformed lines skipped)", len(samples))
	}
	if samples[0].Sentence != "good line" || samples[1].Sentence != "another good line" {
		t.Errorf("kept samples: %v", samples)
	}
}

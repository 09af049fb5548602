package moodgroups

import (
	"fmt"
	"testing"

	"github.com/calebtn/go-mood-matcher/internal/score"
)

func f(v float64) *float64 { return &v }

func moodTrack(id string, valence, danceability, energy float64) score.Track {
	return score.Track{ID: id, Valence: f(valence), Danceability: f(danceability), Energy: f(energy)}
}

func TestGroupName(t *testing.T) {
	tests := []struct {
		name     string
		centroid map[string]float64
		want     string
	}{
		{
			name:     "high energy high valence",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.7, "danceability": 0.5},
			want:     "Upbeat Party",
		},
		{
			name:     "high energy low valence",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.3, "danceability": 0.5},
			want:     "Intense & Dark",
		},
		{
			name:     "low energy high valence",
			centroid: map[string]float64{"energy": 0.4, "valence": 0.7, "danceability": 0.5},
			want:     "Chill & Happy",
		},
		{
			name:     "low energy low valence",
			centroid: map[string]float64{"energy": 0.3, "valence": 0.3, "danceability": 0.4},
			want:     "Reflective & Melancholy",
		},
		{
			name:     "high danceability adds modifier",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.7, "danceability": 0.9},
			want:     "Upbeat Party (Danceable)",
		},
		{
			name:     "boundary energy exactly 0.6 is low",
			centroid: map[string]float64{"energy": 0.6, "valence": 0.7, "danceability": 0.5},
			want:     "Chill & Happy",
		},
		{
			name:     "boundary valence exactly 0.5 is low",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.5, "danceability": 0.5},
			want:     "Intense & Dark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := groupName(tt.centroid); got != tt.want {
				t.Errorf("groupName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEmptyInput(t *testing.T) {
	groups, outliers := Detect(nil, DefaultConfig())
	if groups != nil || outliers != nil {
		t.Errorf("Detect(nil) = %v, %v, want nil, nil", groups, outliers)
	}
}

func TestDetectTracksMissingMoodAreOutliers(t *testing.T) {
	tracks := []score.Track{
		{ID: "no-features"},
		moodTrack("a", 0.5, 0.5, 0.5),
	}

	groups, outliers := Detect(tracks, Config{NumGroups: 2, MinGroupSize: 1})

	// One valid track for two requested groups: everything is an outlier.
	if groups != nil {
		t.Errorf("groups = %v, want nil", groups)
	}
	if len(outliers) != 2 {
		t.Errorf("outliers = %d tracks, want 2", len(outliers))
	}
}

func TestDetectPreservesAllTracks(t *testing.T) {
	var tracks []score.Track
	// Two well-separated vibes.
	for i := 0; i < 6; i++ {
		tracks = append(tracks, moodTrack(fmt.Sprintf("up%d", i), 0.9, 0.85, 0.9))
	}
	for i := 0; i < 6; i++ {
		tracks = append(tracks, moodTrack(fmt.Sprintf("down%d", i), 0.1, 0.1, 0.15))
	}

	groups, outliers := Detect(tracks, Config{NumGroups: 2, MinGroupSize: 2})

	total := len(outliers)
	for _, g := range groups {
		total += len(g.Tracks)
		if g.Name == "" {
			t.Error("group has empty name")
		}
		if len(g.Centroid) != 3 {
			t.Errorf("centroid has %d features, want 3", len(g.Centroid))
		}
	}
	if total != len(tracks) {
		t.Errorf("groups+outliers cover %d tracks, want %d", total, len(tracks))
	}
}

func TestDetectSmallClustersBecomeOutliers(t *testing.T) {
	var tracks []score.Track
	for i := 0; i < 8; i++ {
		tracks = append(tracks, moodTrack(fmt.Sprintf("t%d", i), 0.5, 0.5, 0.5))
	}

	groups, outliers := Detect(tracks, Config{NumGroups: 2, MinGroupSize: 6})

	// With identical coordinates one cluster takes everything; any cluster
	// below the minimum size must end up in outliers, never dropped.
	total := len(outliers)
	for _, g := range groups {
		total += len(g.Tracks)
		if len(g.Tracks) < 6 {
			t.Errorf("kept group with %d tracks, min is 6", len(g.Tracks))
		}
	}
	if total != len(tracks) {
		t.Errorf("groups+outliers cover %d tracks, want %d", total, len(tracks))
	}
}

package spotify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/calebtn/go-mood-matcher/internal/score"
)

// fakeAPI records batch sizes and serves canned features.
type fakeAPI struct {
	batchSizes []int
	features   map[spotify.ID]*spotify.AudioFeatures
	failBatch  int // 1-based batch index to fail, 0 for none
}

func (f *fakeAPI) GetAudioFeatures(_ context.Context, ids ...spotify.ID) ([]*spotify.AudioFeatures, error) {
	f.batchSizes = append(f.batchSizes, len(ids))
	if f.failBatch == len(f.batchSizes) {
		return nil, errors.New("upstream failure")
	}
	out := make([]*spotify.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = f.features[id] // may be nil
	}
	return out, nil
}

func TestFetchAudioFeatures(t *testing.T) {
	api := &fakeAPI{features: map[spotify.ID]*spotify.AudioFeatures{
		"a": {ID: "a", Valence: 0.6, Danceability: 0.7, Energy: 0.8},
	}}
	c := &Client{api: api}

	tracks := []score.Track{{ID: "a"}, {ID: "b"}}
	result := c.FetchAudioFeatures(context.Background(), tracks)

	if result.Fetched != 1 || result.FailedBatches != 0 {
		t.Errorf("result = %+v, want Fetched=1 FailedBatches=0", result)
	}
	if !tracks[0].HasMood() {
		t.Fatal("track a missing features")
	}
	if *tracks[0].Valence != 0.6 || *tracks[0].Danceability != 0.7 || *tracks[0].Energy != 0.8 {
		t.Errorf("track a features = %v/%v/%v", *tracks[0].Valence, *tracks[0].Danceability, *tracks[0].Energy)
	}
	if tracks[1].HasMood() {
		t.Error("track b should have nil features")
	}
}

func TestFetchAudioFeaturesBatching(t *testing.T) {
	api := &fakeAPI{features: map[spotify.ID]*spotify.AudioFeatures{}}
	c := &Client{api: api}

	tracks := make([]score.Track, 250)
	for i := range tracks {
		tracks[i] = score.Track{ID: fmt.Sprintf("t%03d", i)}
	}
	c.FetchAudioFeatures(context.Background(), tracks)

	want := []int{100, 100, 50}
	if len(api.batchSizes) != len(want) {
		t.Fatalf("made %d calls, want %d", len(api.batchSizes), len(want))
	}
	for i, size := range want {
		if api.batchSizes[i] != size {
			t.Errorf("batch %d size = %d, want %d", i+1, api.batchSizes[i], size)
		}
	}
}

func TestFetchAudioFeaturesFailedBatchContinues(t *testing.T) {
	features := map[spotify.ID]*spotify.AudioFeatures{}
	tracks := make([]score.Track, 150)
	for i := range tracks {
		id := fmt.Sprintf("t%03d", i)
		tracks[i] = score.Track{ID: id}
		features[spotify.ID(id)] = &spotify.AudioFeatures{
			ID: spotify.ID(id), Valence: 0.5, Danceability: 0.5, Energy: 0.5,
		}
	}
	api := &fakeAPI{features: features, failBatch: 1}
	c := &Client{api: api}

	result := c.FetchAudioFeatures(context.Background(), tracks)

	if result.FailedBatches != 1 {
		t.Errorf("FailedBatches = %d, want 1", result.FailedBatches)
	}
	if result.Fetched != 50 {
		t.Errorf("Fetched = %d, want 50 (second batch only)", result.Fetched)
	}
	if tracks[0].HasMood() {
		t.Error("track in failed batch should have nil features")
	}
	if !tracks[149].HasMood() {
		t.Error("track in succeeding batch should have features")
	}
}

func TestFetchAudioFeaturesEmpty(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{api: api}

	result := c.FetchAudioFeatures(context.Background(), nil)
	if len(api.batchSizes) != 0 {
		t.Errorf("made %d calls for empty input, want 0", len(api.batchSizes))
	}
	if result.Fetched != 0 || result.FailedBatches != 0 {
		t.Errorf("result = %+v, want zero", result)
	}
}

func TestFetchAudioFeaturesDuplicateIDs(t *testing.T) {
	api := &fakeAPI{features: map[spotify.ID]*spotify.AudioFeatures{
		"a": {ID: "a", Valence: 0.6, Danceability: 0.7, Energy: 0.8},
	}}
	c := &Client{api: api}

	tracks := []score.Track{{ID: "a"}, {ID: "b"}, {ID: "a"}}
	result := c.FetchAudioFeatures(context.Background(), tracks)

	if want := []int{2}; len(api.batchSizes) != 1 || api.batchSizes[0] != want[0] {
		t.Errorf("batch sizes = %v, want %v (duplicates fetched once)", api.batchSizes, want)
	}
	if result.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2 (both occurrences of a)", result.Fetched)
	}
	if !tracks[0].HasMood() || !tracks[2].HasMood() {
		t.Error("every occurrence of a duplicated ID should get features")
	}
	if tracks[1].HasMood() {
		t.Error("track b should have nil features")
	}
}

package spotify

import (
	"context"
	"log"

	"github.com/zmb3/spotify/v2"

	"github.com/calebtn/go-mood-matcher/internal/score"
)

// maxTracksPerRequest is the Spotify API page-size limit for audio features.
const maxTracksPerRequest = 100

// FetchResult summarizes an audio-features fetch. A failed batch leaves its
// tracks without features; the caller decides whether to surface that.
type FetchResult struct {
	Fetched       int // tracks that received features
	FailedBatches int // batches that failed outright
}

// FetchAudioFeatures retrieves mood attributes for the given tracks,
// updating them in place. Requests are batched to at most 100 tracks per
// call per Spotify API limits. A batch that fails is logged and skipped so
// the remaining batches still complete; tracks in a failed batch, and
// tracks the API returned nothing for, keep nil feature fields.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []score.Track) FetchResult {
	var result FetchResult
	if len(tracks) == 0 {
		return result
	}

	// The same ID can appear more than once in the request; fetch it once
	// and annotate every occurrence.
	ids := make([]spotify.ID, 0, len(tracks))
	indicesByID := make(map[string][]int, len(tracks))
	for i, t := range tracks {
		if _, seen := indicesByID[t.ID]; !seen {
			ids = append(ids, spotify.ID(t.ID))
		}
		indicesByID[t.ID] = append(indicesByID[t.ID], i)
	}

	total := len(ids)
	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)
		batch := ids[i:end]

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			log.Printf("spotify: audio features batch %d-%d of %d failed: %v", i+1, end, total, err)
			result.FailedBatches++
			continue
		}

		for _, f := range features {
			if f == nil {
				continue // track has no audio features
			}
			for _, idx := range indicesByID[f.ID.String()] {
				applyAudioFeatures(&tracks[idx], f)
				result.Fetched++
			}
		}
	}

	return result
}

// applyAudioFeatures copies the mood attributes onto a track.
func applyAudioFeatures(t *score.Track, f *spotify.AudioFeatures) {
	valence := float64(f.Valence)
	danceability := float64(f.Danceability)
	energy := float64(f.Energy)
	t.Valence = &valence
	t.Danceability = &danceability
	t.Energy = &energy
}

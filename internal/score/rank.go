package score

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Track is a candidate track with catalog metadata and mood attributes.
// The mood attribute fields are nil until the catalog fetch fills them in;
// a track the catalog returned nothing for keeps nil fields and is skipped
// by Rank. Track-side valence comes straight from catalog metadata, unlike
// the input recording's valence which is derived from text sentiment.
type Track struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Artist string `json:"artist,omitempty"`

	Valence      *float64 `json:"valence,omitempty"`
	Danceability *float64 `json:"danceability,omitempty"`
	Energy       *float64 `json:"energy,omitempty"`

	FinalScore float64 `json:"trackFinalScore"`
	Closeness  float64 `json:"closeness"`

	// Extra holds any catalog metadata fields the caller sent beyond the
	// ones above, so a ranked track echoes back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// trackFields are the JSON keys handled by the struct fields.
var trackFields = []string{
	"id", "name", "artist",
	"valence", "danceability", "energy",
	"trackFinalScore", "closeness",
}

// trackAlias avoids recursion in the JSON methods.
type trackAlias Track

func (t *Track) UnmarshalJSON(data []byte) error {
	var known trackAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	for _, field := range trackFields {
		delete(extra, field)
	}
	if len(extra) == 0 {
		extra = nil
	}
	*t = Track(known)
	t.Extra = extra
	return nil
}

func (t Track) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(trackAlias(t))
	if err != nil || len(t.Extra) == 0 {
		return data, err
	}
	merged := make(map[string]json.RawMessage, len(trackFields)+len(t.Extra))
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range t.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// HasMood reports whether all mood attributes are present.
func (t *Track) HasMood() bool {
	return t.Valence != nil && t.Danceability != nil && t.Energy != nil
}

// Skipped records a track excluded from a ranking and why.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Ranking is the result of ranking candidate tracks against a target score.
// Tracks without mood attributes are never ranked; they are reported in
// Skipped so the caller can decide whether to surface them.
type Ranking struct {
	Ranked  []Track
	Skipped []Skipped
}

// Rank computes each track's final score and its closeness to the target,
// then sorts ascending by closeness. The sort is stable: tracks with equal
// closeness keep their input order.
func Rank(target float64, tracks []Track) Ranking {
	var r Ranking
	for _, t := range tracks {
		if !t.HasMood() {
			r.Skipped = append(r.Skipped, Skipped{ID: t.ID, Reason: "no audio features"})
			continue
		}
		t.FinalScore = Fuse(*t.Valence, *t.Danceability, *t.Energy)
		t.Closeness = abs(t.FinalScore - target)
		r.Ranked = append(r.Ranked, t)
	}

	sort.SliceStable(r.Ranked, func(i, j int) bool {
		return r.Ranked[i].Closeness < r.Ranked[j].Closeness
	})

	return r
}

// String summarizes a ranking for logging.
func (r Ranking) String() string {
	return fmt.Sprintf("ranked %d, skipped %d", len(r.Ranked), len(r.Skipped))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

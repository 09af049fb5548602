// Package moodgroups clusters candidate tracks into named mood groups using
// their mood attributes, so a caller can present a ranked list broken into
// coherent vibes instead of one flat ordering.
package moodgroups

import (
	"log"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/calebtn/go-mood-matcher/internal/score"
)

// Config holds clustering parameters.
type Config struct {
	NumGroups    int // number of clusters to create (default: 3)
	MinGroupSize int // smaller clusters become outliers
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumGroups:    3,
		MinGroupSize: 3,
	}
}

// Group is a cluster of tracks with a similar mood.
type Group struct {
	Name     string             `json:"name"`
	Tracks   []score.Track      `json:"tracks"`
	Centroid map[string]float64 `json:"centroid"`
}

// trackObservation wraps a Track to implement clusters.Observation.
type trackObservation struct {
	track  *score.Track
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the mood attributes used for clustering, in
// coordinate order.
var featureNames = []string{"energy", "valence", "danceability"}

// Detect groups tracks by mood similarity using k-means. Returns the groups
// and the outlier tracks that fit no group. Tracks missing mood attributes
// are always outliers.
func Detect(tracks []score.Track, cfg Config) ([]Group, []score.Track) {
	if len(tracks) == 0 {
		return nil, nil
	}

	if cfg.NumGroups <= 0 {
		cfg.NumGroups = DefaultConfig().NumGroups
	}

	var valid []*score.Track
	var outliers []score.Track
	for i := range tracks {
		t := &tracks[i]
		if t.HasMood() {
			valid = append(valid, t)
		} else {
			outliers = append(outliers, *t)
		}
	}

	// Fewer complete tracks than clusters: everything is an outlier.
	if len(valid) < cfg.NumGroups {
		for _, t := range valid {
			outliers = append(outliers, *t)
		}
		return nil, outliers
	}

	var obs clusters.Observations
	for _, t := range valid {
		obs = append(obs, trackObservation{
			track: t,
			coords: clusters.Coordinates{
				*t.Energy,
				*t.Valence,
				*t.Danceability,
			},
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumGroups)
	if err != nil {
		log.Printf("moodgroups: k-means partition failed: %v", err)
		for _, t := range valid {
			outliers = append(outliers, *t)
		}
		return nil, outliers
	}

	var groups []Group
	for _, cluster := range result {
		var clusterTracks []score.Track
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				clusterTracks = append(clusterTracks, *to.track)
			}
		}

		if len(clusterTracks) < cfg.MinGroupSize {
			outliers = append(outliers, clusterTracks...)
			continue
		}

		centroid := make(map[string]float64)
		for i, name := range featureNames {
			centroid[name] = cluster.Center[i]
		}

		groups = append(groups, Group{
			Name:     groupName(centroid),
			Tracks:   clusterTracks,
			Centroid: centroid,
		})
	}

	return groups, outliers
}

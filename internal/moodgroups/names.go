package moodgroups

// groupName creates a descriptive name from a centroid's mood attributes.
// Uses a 2x2 energy/valence quadrant system with a danceability modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Danceability modifier: if > 0.7, appends "Danceable".
func groupName(centroid map[string]float64) string {
	energy := centroid["energy"]
	valence := centroid["valence"]
	danceability := centroid["danceability"]

	highEnergy := energy > 0.6
	highValence := valence > 0.5

	var baseName string
	switch {
	case highEnergy && highValence:
		baseName = "Upbeat Party"
	case highEnergy && !highValence:
		baseName = "Intense & Dark"
	case !highEnergy && highValence:
		baseName = "Chill & Happy"
	default:
		baseName = "Reflective & Melancholy"
	}

	if danceability > 0.7 {
		return baseName + " (Danceable)"
	}

	return baseName
}

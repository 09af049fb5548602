// Package score implements the mood scoring pipeline: mapping sentiment
// classifier output to a valence scalar, fusing valence, danceability and
// energy into a single final score, and ranking candidate tracks by how
// closely their score matches a target.
package score

// Fusion weights. They sum to 1.0 and are applied identically to the input
// recording and to every candidate track, which is what makes the closeness
// metric meaningful.
const (
	WeightValence      = 0.5
	WeightDanceability = 0.3
	WeightEnergy       = 0.2
)

// Label is a normalized sentiment class.
type Label string

// Sentiment classes, ordered negative, neutral, positive.
const (
	LabelNegative Label = "NEGATIVE"
	LabelNeutral  Label = "NEUTRAL"
	LabelPositive Label = "POSITIVE"
)

// Valence maps a sentiment classification to an emotional-positivity scalar.
// Neutral sentiment stays near the midpoint regardless of confidence, while
// negative and positive stretch toward the extremes proportionally to it:
//
//	negative: (1 - c) * 0.5        -> [0, 0.5]
//	neutral:  0.4 + c * 0.2        -> [0.4, 0.6]
//	positive: 0.5 + c * 0.5        -> [0.5, 1.0]
//
// Confidence is expected in [0, 1] and is deliberately not clamped; values
// outside that range pass through the formula unchanged.
func Valence(label Label, confidence float64) float64 {
	switch label {
	case LabelNegative:
		return (1 - confidence) * 0.5
	case LabelNeutral:
		return 0.4 + confidence*0.2
	case LabelPositive:
		return 0.5 + confidence*0.5
	default:
		// Unknown labels are treated as neutral with no confidence.
		return 0.4
	}
}

// Fuse combines valence, danceability and energy into one comparable scalar
// using the fixed fusion weights.
func Fuse(valence, danceability, energy float64) float64 {
	return WeightValence*valence + WeightDanceability*danceability + WeightEnergy*energy
}

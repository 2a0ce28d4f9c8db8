// Package sentiment maps numeric review ratings to sentiment categories.
package sentiment

import "github.com/ppiankov/revstat/internal/model"

// Classifier labels ratings using two thresholds.
// Ratings strictly above PositiveAbove are positive, strictly below
// NegativeBelow negative, and everything in between (inclusive) neutral.
type Classifier struct {
	PositiveAbove float64
	NegativeBelow float64
}

// Default uses the 4.0 / 2.0 thresholds of a five-star scale
var Default = Classifier{PositiveAbove: 4.0, NegativeBelow: 2.0}

// FromConfig builds a classifier from the sentiment config section
func FromConfig(cfg model.SentimentConfig) Classifier {
	return Classifier{PositiveAbove: cfg.PositiveAbove, NegativeBelow: cfg.NegativeBelow}
}

// Label classifies a rating
func (c Classifier) Label(rating float64) model.Sentiment {
	if rating > c.PositiveAbove {
		return model.SentimentPositive
	}
	if rating < c.NegativeBelow {
		return model.SentimentNegative
	}
	return model.SentimentNeutral
}

// Label classifies a rating with the default thresholds
func Label(rating float64) model.Sentiment {
	return Default.Label(rating)
}

// Package aggregate computes grouped sentiment counts and summary statistics
// over a cleaned review collection.
//
// Every pass is a pure read of its input. A review's stored sentiment is used
// when present; otherwise it is computed on the fly and not written back.
package aggregate

import (
	"math"

	"github.com/ppiankov/revstat/internal/model"
	"github.com/ppiankov/revstat/internal/sentiment"
)

// Aggregator runs the grouping and summary passes
type Aggregator struct {
	classifier sentiment.Classifier
}

// NewAggregator creates an aggregator that labels unclassified reviews with c
func NewAggregator(c sentiment.Classifier) *Aggregator {
	return &Aggregator{classifier: c}
}

// ByApp counts sentiment per app_name in first-seen order
func (a *Aggregator) ByApp(reviews []model.Review) []model.AppSentiment {
	keys, counts := a.countSentiment(reviews, func(r model.Review) string { return r.AppName })

	out := make([]model.AppSentiment, len(keys))
	for i, k := range keys {
		out[i] = model.AppSentiment{AppName: k, SentimentCounts: counts[k]}
	}
	return out
}

// ByLanguage counts sentiment per review_language in first-seen order
func (a *Aggregator) ByLanguage(reviews []model.Review) []model.LangSentiment {
	keys, counts := a.countSentiment(reviews, func(r model.Review) string { return r.ReviewLanguage })

	out := make([]model.LangSentiment, len(keys))
	for i, k := range keys {
		out[i] = model.LangSentiment{LangName: k, SentimentCounts: counts[k]}
	}
	return out
}

// Annotate returns a copy of reviews with every sentiment set
func (a *Aggregator) Annotate(reviews []model.Review) []model.Review {
	out := make([]model.Review, len(reviews))
	for i, r := range reviews {
		r.Sentiment = a.sentimentOf(r)
		out[i] = r
	}
	return out
}

// Summary reports the most-reviewed app, its most-used device and its
// average rating. Ties go to the key seen first.
func (a *Aggregator) Summary(reviews []model.Review) model.SummaryStatistics {
	// 1. Most reviewed app
	appKeys, appCounts := countBy(reviews, func(r model.Review) string { return r.AppName })
	app, appCount := maxFirstSeen(appKeys, appCounts)

	// 2. Restrict to that app
	var appReviews []model.Review
	for _, r := range reviews {
		if r.AppName == app {
			appReviews = append(appReviews, r)
		}
	}

	// 3. Most used device among those reviews
	devKeys, devCounts := countBy(appReviews, func(r model.Review) string { return r.DeviceType })
	device, deviceCount := maxFirstSeen(devKeys, devCounts)

	// 4. Mean rating, 3 decimals
	var avg float64
	if len(appReviews) > 0 {
		var sum float64
		for _, r := range appReviews {
			sum += r.Rating
		}
		avg = Round(sum/float64(len(appReviews)), 3)
	}

	return model.SummaryStatistics{
		MostReviewedApp: app,
		MostReviews:     appCount,
		MostUsedDevice:  device,
		MostDevices:     deviceCount,
		AvgRating:       avg,
	}
}

// Round rounds v half away from zero to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func (a *Aggregator) sentimentOf(r model.Review) model.Sentiment {
	if r.Sentiment != "" {
		return r.Sentiment
	}
	return a.classifier.Label(r.Rating)
}

func (a *Aggregator) countSentiment(reviews []model.Review, key func(model.Review) string) ([]string, map[string]model.SentimentCounts) {
	var keys []string
	counts := make(map[string]model.SentimentCounts)

	for _, r := range reviews {
		k := key(r)
		c, seen := counts[k]
		if !seen {
			keys = append(keys, k)
		}
		c.Add(a.sentimentOf(r))
		counts[k] = c
	}
	return keys, counts
}

// countBy counts reviews per key, returning keys in first-seen order
func countBy(reviews []model.Review, key func(model.Review) string) ([]string, map[string]int) {
	var keys []string
	counts := make(map[string]int)

	for _, r := range reviews {
		k := key(r)
		if _, seen := counts[k]; !seen {
			keys = append(keys, k)
		}
		counts[k]++
	}
	return keys, counts
}

// maxFirstSeen picks the key with the strictly greatest count
func maxFirstSeen(keys []string, counts map[string]int) (string, int) {
	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, bestCount
}

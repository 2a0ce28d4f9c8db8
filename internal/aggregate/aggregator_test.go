package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/revstat/internal/model"
	"github.com/ppiankov/revstat/internal/sentiment"
)

func review(app, lang, device string, rating float64) model.Review {
	return model.Review{AppName: app, ReviewLanguage: lang, DeviceType: device, Rating: rating}
}

func TestByApp_EndToEndExample(t *testing.T) {
	reviews := []model.Review{
		review("X", "en", "iOS", 5),
		review("X", "en", "iOS", 1),
		review("Y", "de", "Android", 3),
	}

	got := NewAggregator(sentiment.Default).ByApp(reviews)

	assert.Equal(t, []model.AppSentiment{
		{AppName: "X", SentimentCounts: model.SentimentCounts{Positive: 1, Negative: 1}},
		{AppName: "Y", SentimentCounts: model.SentimentCounts{Neutral: 1}},
	}, got)
}

func TestByLanguage_FirstSeenOrder(t *testing.T) {
	reviews := []model.Review{
		review("A", "fr", "iOS", 4.5),
		review("B", "en", "iOS", 2),
		review("C", "fr", "iOS", 1.5),
		review("D", "es", "iOS", 4.01),
	}

	got := NewAggregator(sentiment.Default).ByLanguage(reviews)

	assert.Equal(t, []model.LangSentiment{
		{LangName: "fr", SentimentCounts: model.SentimentCounts{Positive: 1, Negative: 1}},
		{LangName: "en", SentimentCounts: model.SentimentCounts{Neutral: 1}},
		{LangName: "es", SentimentCounts: model.SentimentCounts{Positive: 1}},
	}, got)
}

func TestByLanguage_ReusesStoredSentiment(t *testing.T) {
	r := review("A", "en", "iOS", 5)
	r.Sentiment = model.SentimentNegative

	got := NewAggregator(sentiment.Default).ByLanguage([]model.Review{r})

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Negative)
	assert.Equal(t, 0, got[0].Positive)
}

func TestPasses_DoNotMutateInput(t *testing.T) {
	reviews := []model.Review{review("A", "en", "iOS", 5), review("B", "en", "iOS", 1)}
	agg := NewAggregator(sentiment.Default)

	agg.ByApp(reviews)
	agg.ByLanguage(reviews)
	agg.Summary(reviews)

	for _, r := range reviews {
		assert.Empty(t, r.Sentiment)
	}

	annotated := agg.Annotate(reviews)
	assert.Equal(t, model.SentimentPositive, annotated[0].Sentiment)
	assert.Equal(t, model.SentimentNegative, annotated[1].Sentiment)
	assert.Empty(t, reviews[0].Sentiment)
}

func TestAggregationTotals(t *testing.T) {
	reviews := []model.Review{
		review("A", "en", "iOS", 5), review("B", "de", "iOS", 3.5), review("A", "fr", "Android", 1),
		review("C", "en", "Web", 2), review("B", "en", "iOS", 4.2), review("A", "de", "iOS", 0.5),
		review("D", "ja", "Android", 4), review("C", "fr", "Web", 4.9),
	}
	agg := NewAggregator(sentiment.Default)

	appTotal := 0
	for _, s := range agg.ByApp(reviews) {
		appTotal += s.Total()
	}
	langTotal := 0
	for _, s := range agg.ByLanguage(reviews) {
		langTotal += s.Total()
	}

	assert.Equal(t, len(reviews), appTotal)
	assert.Equal(t, len(reviews), langTotal)
}

func TestSummary(t *testing.T) {
	reviews := []model.Review{
		review("X", "en", "iOS", 5),
		review("Y", "en", "Android", 2),
		review("X", "en", "Android", 1),
		review("X", "de", "Android", 2),
		review("Y", "en", "iOS", 4),
	}

	got := NewAggregator(sentiment.Default).Summary(reviews)

	assert.Equal(t, model.SummaryStatistics{
		MostReviewedApp: "X",
		MostReviews:     3,
		MostUsedDevice:  "Android",
		MostDevices:     2,
		AvgRating:       2.667,
	}, got)
}

func TestSummary_TiesResolveToFirstSeen(t *testing.T) {
	reviews := []model.Review{
		review("B", "en", "Web", 3),
		review("A", "en", "iOS", 4),
		review("A", "en", "Web", 5),
		review("B", "en", "iOS", 1),
	}
	agg := NewAggregator(sentiment.Default)

	first := agg.Summary(reviews)
	assert.Equal(t, "B", first.MostReviewedApp)
	assert.Equal(t, 2, first.MostReviews)
	assert.Equal(t, "Web", first.MostUsedDevice)
	assert.Equal(t, 1, first.MostDevices)
	assert.Equal(t, 2.0, first.AvgRating)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, agg.Summary(reviews))
	}
}

func TestSummary_Empty(t *testing.T) {
	got := NewAggregator(sentiment.Default).Summary(nil)
	assert.Equal(t, model.SummaryStatistics{}, got)
}

func TestEmptyGroupings(t *testing.T) {
	agg := NewAggregator(sentiment.Default)
	assert.Empty(t, agg.ByApp(nil))
	assert.Empty(t, agg.ByLanguage(nil))
	assert.NotNil(t, agg.ByApp(nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.667, Round(5.0/3.0, 3))
	assert.Equal(t, 4.25, Round(4.25, 3))
	assert.Equal(t, 3.0, Round(2.9996, 3))
	assert.Equal(t, 0.0, Round(0, 3))
}

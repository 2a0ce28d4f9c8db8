// Package clean validates raw review records and coerces them into typed Reviews.
//
// A record either becomes a Review or is rejected as a whole; fields are never
// nulled individually. Every rejection carries the reason and offending field so
// callers can account for dropped rows.
package clean

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ppiankov/revstat/internal/model"
	"github.com/ppiankov/revstat/internal/sentiment"
)

// Cleaner turns raw rows into Reviews
type Cleaner struct {
	nullTokens map[string]struct{}
	optional   map[string]struct{}
	layouts    []string
	classifier sentiment.Classifier
	logger     zerolog.Logger
	progress   rate.Sometimes
}

// Outcome is the result of classifying one row: exactly one field is set
type Outcome struct {
	Review    *model.Review
	Rejection *model.Rejection
}

// Valid reports whether the row became a Review
func (o Outcome) Valid() bool {
	return o.Review != nil
}

// Result holds the cleaned collection and the rows that were dropped
type Result struct {
	Reviews    []model.Review
	Rejections []model.Rejection
}

// RejectCounts tallies rejections by reason
func (r Result) RejectCounts() map[model.RejectReason]int {
	counts := make(map[model.RejectReason]int)
	for _, rej := range r.Rejections {
		counts[rej.Reason]++
	}
	return counts
}

// NewCleaner creates a cleaner from the cleaning config
func NewCleaner(cfg model.CleaningConfig, classifier sentiment.Classifier, logger zerolog.Logger) *Cleaner {
	c := &Cleaner{
		nullTokens: make(map[string]struct{}, len(cfg.NullTokens)),
		optional:   make(map[string]struct{}, len(cfg.OptionalFields)),
		layouts:    cfg.DateLayouts,
		classifier: classifier,
		logger:     logger,
		progress:   rate.Sometimes{Interval: time.Second},
	}
	for _, tok := range cfg.NullTokens {
		c.nullTokens[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	for _, f := range cfg.OptionalFields {
		c.optional[f] = struct{}{}
	}
	if len(c.layouts) == 0 {
		c.layouts = model.DefaultDateLayouts
	}
	return c
}

// Clean classifies every row, keeping input order among surviving records
func (c *Cleaner) Clean(rows []model.Row) Result {
	result := Result{
		Reviews:    make([]model.Review, 0, len(rows)),
		Rejections: []model.Rejection{},
	}

	for i, row := range rows {
		c.progress.Do(func() {
			c.logger.Debug().Int("row", i+1).Int("total", len(rows)).Msg("cleaning records")
		})

		outcome := c.Classify(row)
		if outcome.Valid() {
			result.Reviews = append(result.Reviews, *outcome.Review)
			continue
		}
		result.Rejections = append(result.Rejections, *outcome.Rejection)
	}

	c.logger.Debug().
		Int("rows", len(rows)).
		Int("cleaned", len(result.Reviews)).
		Int("rejected", len(result.Rejections)).
		Msg("cleaning finished")

	return result
}

// Classify validates and coerces a single row
func (c *Cleaner) Classify(row model.Row) Outcome {
	rec := row.Record

	// 1. Nullish check over required columns, then any extra columns
	for _, col := range model.RequiredColumns {
		if _, ok := c.optional[col]; ok {
			continue
		}
		val, present := rec[col]
		if !present {
			return reject(row, model.RejectMissingColumn, col, "")
		}
		if c.IsNullish(val) {
			return reject(row, model.RejectNullishField, col, val)
		}
	}
	for _, col := range extraColumns(rec) {
		if _, ok := c.optional[col]; ok {
			continue
		}
		if c.IsNullish(rec[col]) {
			return reject(row, model.RejectNullishField, col, rec[col])
		}
	}

	// 2. Coercion
	review := model.Review{
		AppName:          rec[model.ColAppName],
		ReviewLanguage:   rec[model.ColReviewLanguage],
		DeviceType:       rec[model.ColDeviceType],
		VerifiedPurchase: ParseBool(rec[model.ColVerifiedPurchase]),
	}

	ints := []struct {
		col string
		dst *int
	}{
		{model.ColReviewID, &review.ReviewID},
		{model.ColNumHelpfulVotes, &review.NumHelpfulVotes},
		{model.ColUserID, &review.User.UserID},
		{model.ColUserAge, &review.User.UserAge},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(rec[f.col]))
		if err != nil {
			return reject(row, model.RejectInvalidInteger, f.col, rec[f.col])
		}
		*f.dst = n
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(rec[model.ColRating]), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return reject(row, model.RejectInvalidFloat, model.ColRating, rec[model.ColRating])
	}
	review.Rating = rating

	date, ok := c.parseDate(rec[model.ColReviewDate])
	if !ok {
		return reject(row, model.RejectInvalidDate, model.ColReviewDate, rec[model.ColReviewDate])
	}
	review.ReviewDate = date

	// 3. Nest user attributes
	review.User.UserCountry = rec[model.ColUserCountry]
	if gender, present := rec[model.ColUserGender]; present && !c.IsNullish(gender) {
		review.User.UserGender = gender
	}

	// 4. Sentiment is fixed at creation
	review.Sentiment = c.classifier.Label(review.Rating)

	return Outcome{Review: &review}
}

// IsNullish reports whether a present value counts as missing:
// empty after trimming, or one of the null tokens (case-insensitive)
func (c *Cleaner) IsNullish(value string) bool {
	s := strings.TrimSpace(value)
	if s == "" {
		return true
	}
	_, isToken := c.nullTokens[strings.ToLower(s)]
	return isToken
}

func (c *Cleaner) parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range c.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool maps true/yes/y/1 to true; everything else, including
// false/no/n/0, is false
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func reject(row model.Row, reason model.RejectReason, field, value string) Outcome {
	return Outcome{Rejection: &model.Rejection{
		Line:   row.Line,
		Reason: reason,
		Field:  field,
		Value:  value,
	}}
}

// extraColumns returns the record keys that are not required columns, sorted
func extraColumns(rec model.RawRecord) []string {
	required := make(map[string]struct{}, len(model.RequiredColumns))
	for _, col := range model.RequiredColumns {
		required[col] = struct{}{}
	}

	var extra []string
	for col := range rec {
		if _, ok := required[col]; !ok {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	return extra
}

package model

import "time"

// Column names expected in the input header
const (
	ColReviewID         = "review_id"
	ColAppName          = "app_name"
	ColReviewLanguage   = "review_language"
	ColRating           = "rating"
	ColReviewDate       = "review_date"
	ColVerifiedPurchase = "verified_purchase"
	ColNumHelpfulVotes  = "num_helpful_votes"
	ColDeviceType       = "device_type"
	ColUserID           = "user_id"
	ColUserAge          = "user_age"
	ColUserCountry      = "user_country"
	ColUserGender       = "user_gender"
)

// RequiredColumns lists every column a record must carry to become a Review
var RequiredColumns = []string{
	ColReviewID,
	ColAppName,
	ColReviewLanguage,
	ColRating,
	ColReviewDate,
	ColVerifiedPurchase,
	ColNumHelpfulVotes,
	ColDeviceType,
	ColUserID,
	ColUserAge,
	ColUserCountry,
}

// RawRecord maps a trimmed header name to the raw cell value of one row.
// A column the row did not reach is absent from the map.
type RawRecord map[string]string

// Row is a RawRecord together with the input line it started on
type Row struct {
	Line   int       // 1-based line number in the source
	Record RawRecord // Header -> raw value
}

// Review is a single cleaned, typed app-store review
type Review struct {
	ReviewID         int       `json:"review_id"`
	AppName          string    `json:"app_name"`
	ReviewLanguage   string    `json:"review_language"`
	Rating           float64   `json:"rating"`
	ReviewDate       time.Time `json:"review_date"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	NumHelpfulVotes  int       `json:"num_helpful_votes"`
	DeviceType       string    `json:"device_type"`
	User             User      `json:"user"`
	Sentiment        Sentiment `json:"sentiment,omitempty"` // Empty until classified
}

// User holds the reviewer attributes nested under a Review
type User struct {
	UserID      int    `json:"user_id"`
	UserAge     int    `json:"user_age"`
	UserCountry string `json:"user_country"`
	UserGender  string `json:"user_gender"` // "" when the source value was nullish
}

// Sentiment is the category derived from a numeric rating
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// RejectReason explains why a raw record did not become a Review
type RejectReason string

const (
	RejectMissingColumn  RejectReason = "missing_column"  // Required column absent from the row
	RejectNullishField   RejectReason = "nullish_field"   // Empty, whitespace or null token
	RejectInvalidInteger RejectReason = "invalid_integer" // Not a base-10 integer
	RejectInvalidFloat   RejectReason = "invalid_float"   // Not a number
	RejectInvalidDate    RejectReason = "invalid_date"    // No configured layout matched
)

// Rejection records a discarded input row
type Rejection struct {
	Line   int          `json:"line"`
	Reason RejectReason `json:"reason"`
	Field  string       `json:"field"`
	Value  string       `json:"value,omitempty"`
}

package domain

// PeriodMetrics summarizes a review collection over one window. Percentages are in [0, 100].
type PeriodMetrics struct {
	TotalReviews          int     `json:"totalReviews"`
	AverageRating         float64 `json:"averageRating"`
	ResponseRate          float64 `json:"responseRate"`
	BadReviewResponseRate float64 `json:"badReviewResponseRate"`
}

// MetricDelta holds absolute differences between two snapshots.
type MetricDelta struct {
	TotalReviews          int     `json:"totalReviews"`
	AverageRating         float64 `json:"averageRating"`
	ResponseRate          float64 `json:"responseRate"`
	BadReviewResponseRate float64 `json:"badReviewResponseRate"`
}

// MetricVariance is the percentage change of each PeriodMetrics field, current vs previous.
type MetricVariance struct {
	TotalReviews          float64     `json:"totalReviews"`
	AverageRating         float64     `json:"averageRating"`
	ResponseRate          float64     `json:"responseRate"`
	BadReviewResponseRate float64     `json:"badReviewResponseRate"`
	Absolute              MetricDelta `json:"absolute"`
}

type VenueMetrics struct {
	PeriodMetrics
	VenueName             string         `json:"venueName"`
	MonthOverMonth        MetricVariance `json:"monthOverMonth"`
	PreviousPeriodMetrics PeriodMetrics  `json:"previousPeriodMetrics"`
}

// ReviewMetrics is the full snapshot returned to the dashboard.
type ReviewMetrics struct {
	PeriodMetrics
	WindowDays            int            `json:"windowDays"`
	MonthOverMonth        MetricVariance `json:"monthOverMonth"`
	PreviousPeriodMetrics PeriodMetrics  `json:"previousPeriodMetrics"`
	VenueMetrics          []VenueMetrics `json:"venueMetrics"`
}

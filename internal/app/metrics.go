package app

import (
	"iter"
	"slices"
	"time"

	"reviewdash/internal/domain"
)

const badReviewMaxRating = 3

// FilterSince yields the reviews created at or after cutoff, in input order.
// The sequence is lazy and can be ranged over more than once.
func FilterSince(reviews []domain.ReviewRecord, cutoff time.Time) iter.Seq[domain.ReviewRecord] {
	return func(yield func(domain.ReviewRecord) bool) {
		for _, r := range reviews {
			if r.CreateTime.Before(cutoff) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// FilterWindow yields the reviews with from <= createTime < to, in input order.
func FilterWindow(reviews []domain.ReviewRecord, from, to time.Time) iter.Seq[domain.ReviewRecord] {
	return func(yield func(domain.ReviewRecord) bool) {
		for r := range FilterSince(reviews, from) {
			if !r.CreateTime.Before(to) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// CalculatePeriodMetrics aggregates a review collection. Reviews whose rating is outside 1..5
// count toward TotalReviews but not toward the average or the bad-review bucket.
func CalculatePeriodMetrics(reviews iter.Seq[domain.ReviewRecord]) domain.PeriodMetrics {
	var (
		total, replied   int
		rated, ratingSum int
		bad, badReplied  int
	)
	for r := range reviews {
		total++
		if r.HasReply() {
			replied++
		}
		if !domain.ValidRating(float64(r.Rating)) {
			continue
		}
		rated++
		ratingSum += r.Rating
		if r.Rating <= badReviewMaxRating {
			bad++
			if r.HasReply() {
				badReplied++
			}
		}
	}
	return domain.PeriodMetrics{
		TotalReviews:          total,
		AverageRating:         ratio(ratingSum, rated, 1),
		ResponseRate:          ratio(replied, total, 100),
		BadReviewResponseRate: ratio(badReplied, bad, 100),
	}
}

func ratio(num, den int, scale float64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * scale
}

// PercentChange is the period-over-period change used by the dashboard.
// A zero previous value yields 100 when current is positive and 0 otherwise.
func PercentChange(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

func CalculateVariance(current, previous domain.PeriodMetrics) domain.MetricVariance {
	return domain.MetricVariance{
		TotalReviews:          PercentChange(float64(current.TotalReviews), float64(previous.TotalReviews)),
		AverageRating:         PercentChange(current.AverageRating, previous.AverageRating),
		ResponseRate:          PercentChange(current.ResponseRate, previous.ResponseRate),
		BadReviewResponseRate: PercentChange(current.BadReviewResponseRate, previous.BadReviewResponseRate),
		Absolute: domain.MetricDelta{
			TotalReviews:          current.TotalReviews - previous.TotalReviews,
			AverageRating:         current.AverageRating - previous.AverageRating,
			ResponseRate:          current.ResponseRate - previous.ResponseRate,
			BadReviewResponseRate: current.BadReviewResponseRate - previous.BadReviewResponseRate,
		},
	}
}

// periodBounds returns the start of the current window and of the previous one.
func periodBounds(now time.Time, days int) (currentStart, previousStart time.Time) {
	window := time.Duration(days) * 24 * time.Hour
	currentStart = now.Add(-window)
	previousStart = currentStart.Add(-window)
	return currentStart, previousStart
}

// AggregateVenues groups reviews by venue name and computes the current and previous
// window for each group. Venues come out in first-seen order.
func AggregateVenues(reviews []domain.ReviewRecord, days int, now time.Time) []domain.VenueMetrics {
	var order []string
	groups := make(map[string][]domain.ReviewRecord)
	for _, r := range reviews {
		if _, ok := groups[r.VenueName]; !ok {
			order = append(order, r.VenueName)
		}
		groups[r.VenueName] = append(groups[r.VenueName], r)
	}

	currentStart, previousStart := periodBounds(now, days)
	out := make([]domain.VenueMetrics, 0, len(order))
	for _, venue := range order {
		rs := groups[venue]
		cur := CalculatePeriodMetrics(FilterSince(rs, currentStart))
		prev := CalculatePeriodMetrics(FilterWindow(rs, previousStart, currentStart))
		out = append(out, domain.VenueMetrics{
			PeriodMetrics:         cur,
			VenueName:             venue,
			MonthOverMonth:        CalculateVariance(cur, prev),
			PreviousPeriodMetrics: prev,
		})
	}
	return out
}

// BuildReviewMetrics produces the dashboard snapshot: the aggregate over all venues plus
// one entry per venue.
func BuildReviewMetrics(reviews []domain.ReviewRecord, days int, now time.Time) domain.ReviewMetrics {
	currentStart, previousStart := periodBounds(now, days)
	cur := CalculatePeriodMetrics(FilterSince(reviews, currentStart))
	prev := CalculatePeriodMetrics(FilterWindow(reviews, previousStart, currentStart))
	return domain.ReviewMetrics{
		PeriodMetrics:         cur,
		WindowDays:            days,
		MonthOverMonth:        CalculateVariance(cur, prev),
		PreviousPeriodMetrics: prev,
		VenueMetrics:          AggregateVenues(reviews, days, now),
	}
}

// SortNewestFirst orders reviews by creation time descending; ties fall back to id.
func SortNewestFirst(reviews []domain.ReviewRecord) {
	slices.SortStableFunc(reviews, func(a, b domain.ReviewRecord) int {
		if c := b.CreateTime.Compare(a.CreateTime); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

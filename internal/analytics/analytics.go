// Package analytics holds the backend-independent pieces of the derived
// computations: ranking limits, rounding and day-boundary rules, and the
// rank-preserving decoration pass. Both storage backends share these so
// their observable output is identical.
package analytics

import (
	"time"

	"github.com/deliverus/foodstore/internal/models"
)

// PopularLimit is how many products the popular-products ranking returns.
const PopularLimit = 3

// RankingTimeout is the execution deadline for the raw ranking query.
// Exceeding it is a fetch failure, never a silently empty result.
const RankingTimeout = 5 * time.Second

// ServiceMinutes converts one delivered order into whole service
// minutes. Truncation toward zero is the system-wide rounding rule.
func ServiceMinutes(createdAt, deliveredAt time.Time) int64 {
	return int64(deliveredAt.Sub(createdAt) / time.Minute)
}

// MeanServiceMinutes averages per-order service minutes. With zero
// qualifying orders the result is nil, the documented sentinel.
func MeanServiceMinutes(minutes []int64) *float64 {
	if len(minutes) == 0 {
		return nil
	}
	var total int64
	for _, m := range minutes {
		total += m
	}
	mean := float64(total) / float64(len(minutes))
	return &mean
}

// DayWindow fixes the local-midnight boundaries the daily facets are
// counted against.
type DayWindow struct {
	YesterdayStart time.Time
	TodayStart     time.Time
	TomorrowStart  time.Time
}

func NewDayWindow(now time.Time) DayWindow {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DayWindow{
		YesterdayStart: todayStart.AddDate(0, 0, -1),
		TodayStart:     todayStart,
		TomorrowStart:  todayStart.AddDate(0, 0, 1),
	}
}

// ProductRank is one row of the ranking pass: a product and its total
// historical ordered quantity.
type ProductRank struct {
	ProductID        string
	SoldProductCount int64
}

// DecorateInRankOrder combines the ranking pass with the detail rows of
// the decoration pass. Detail rows may arrive in any order; the output
// follows the ranking (descending sold count). Ranks whose product no
// longer resolves are dropped.
func DecorateInRankOrder(ranks []ProductRank, details map[string]models.PopularProduct) []models.PopularProduct {
	decorated := make([]models.PopularProduct, 0, len(ranks))
	for _, rank := range ranks {
		detail, ok := details[rank.ProductID]
		if !ok {
			continue
		}
		detail.SoldProductCount = rank.SoldProductCount
		decorated = append(decorated, detail)
	}
	return decorated
}

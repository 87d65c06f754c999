// Package report derives sales and inventory reports from stored data.
// Money is always summed with exact decimal arithmetic.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
	"github.com/shopspring/decimal"
)

// SummarizeByDay groups sales dated within the inclusive day range by UTC
// calendar day, ascending. Days without sales are omitted.
func SummarizeByDay(sales []models.Sale, start, end time.Time) ([]models.DailySummary, error) {
	from, to, err := store.DayRange(start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]*models.DailySummary)
	for _, sale := range sales {
		if sale.Date.Before(from) || !sale.Date.Before(to) {
			continue
		}
		day := store.TruncateDay(sale.Date)
		summary, ok := byDay[day]
		if !ok {
			summary = &models.DailySummary{Date: day, Total: decimal.Zero}
			byDay[day] = summary
		}
		summary.Total = summary.Total.Add(sale.Total)
		summary.Count++
	}

	summaries := make([]models.DailySummary, 0, len(byDay))
	for _, summary := range byDay {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})

	return summaries, nil
}

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	case "":
		return PeriodDay, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", store.ErrInvalidArgument, s)
}

// PeriodStart returns the first day of the period containing day. Weeks start
// on Monday.
func PeriodStart(day time.Time, period Period) time.Time {
	day = store.TruncateDay(day)
	switch period {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// Rollup folds ascending daily summaries into weekly or monthly ones. Each
// entry's Date is the first day of its period.
func Rollup(days []models.DailySummary, period Period) []models.DailySummary {
	rolled := []models.DailySummary{}
	for _, day := range days {
		start := PeriodStart(day.Date, period)
		if n := len(rolled); n > 0 && rolled[n-1].Date.Equal(start) {
			rolled[n-1].Total = rolled[n-1].Total.Add(day.Total)
			rolled[n-1].Count += day.Count
			continue
		}
		rolled = append(rolled, models.DailySummary{
			Date:  start,
			Total: day.Total,
			Count: day.Count,
		})
	}
	return rolled
}

package portfolio

import (
	"fmt"
	"sort"
	"time"
)

// Adjusted-week offsets for amounts without a due date and overdue amounts.
const (
	WeekNoDueDate = -1
	WeekOverdue   = 0
)

// WeekBucket accumulates functional amounts due inside one adjusted week.
type WeekBucket struct {
	Offset int
	Label  string
	Amount float64
	Count  int
}

// KPISummary carries the top-line totals over the fully-constrained record
// set (global filters plus all three selections).
type KPISummary struct {
	Count            int
	AmountFunctional float64
	Overdue          float64
	WithinTerm       float64
	NoDueDate        float64
	Weeks            []WeekBucket
}

// ComputeKPI derives the summary totals and adjusted-week buckets as of the
// given instant. Week 0 collects everything already overdue; week n holds
// amounts falling due within the n-th week from asOf.
func ComputeKPI(records []Record, asOf time.Time) KPISummary {
	summary := KPISummary{}
	day := asOf.UTC().Truncate(24 * time.Hour)
	buckets := make(map[int]*WeekBucket)

	for _, r := range records {
		summary.Count++
		summary.AmountFunctional += r.AmountFunctional

		offset := adjustedWeek(r.DueDate, day)
		switch offset {
		case WeekNoDueDate:
			summary.NoDueDate += r.AmountFunctional
		case WeekOverdue:
			summary.Overdue += r.AmountFunctional
		default:
			summary.WithinTerm += r.AmountFunctional
		}

		b, ok := buckets[offset]
		if !ok {
			b = &WeekBucket{Offset: offset, Label: weekLabel(offset)}
			buckets[offset] = b
		}
		b.Amount += r.AmountFunctional
		b.Count++
	}

	summary.Weeks = make([]WeekBucket, 0, len(buckets))
	for _, b := range buckets {
		summary.Weeks = append(summary.Weeks, *b)
	}
	sort.Slice(summary.Weeks, func(i, j int) bool {
		return summary.Weeks[i].Offset < summary.Weeks[j].Offset
	})
	return summary
}

func adjustedWeek(due time.Time, asOfDay time.Time) int {
	if due.IsZero() {
		return WeekNoDueDate
	}
	days := int(due.UTC().Truncate(24*time.Hour).Sub(asOfDay).Hours() / 24)
	if days < 0 {
		return WeekOverdue
	}
	return days/7 + 1
}

func weekLabel(offset int) string {
	switch offset {
	case WeekNoDueDate:
		return "no due date"
	case WeekOverdue:
		return "overdue"
	}
	return fmt.Sprintf("week %d", offset)
}

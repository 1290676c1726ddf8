package stats

import (
	"math"
	"sort"
	"time"

	"crm-service/internal/model"
)

const wonSlug = "won"

// Summary is the headline block of the reporting payload
type Summary struct {
	TotalLeads      int     `json:"totalLeads"`
	PipelineValue   float64 `json:"pipelineValue"`
	WonValue        float64 `json:"wonValue"`
	ConversionRate  float64 `json:"conversionRate"`
	AverageDealSize float64 `json:"averageDealSize"`
}

// summarize computes the headline numbers from leads with their Status
// preloaded. Pipeline value counts leads whose status is not final, plus won
// leads; the value of a lead is its estimated value, falling back to job
// value, falling back to zero.
func summarize(leads []model.Lead) Summary {
	var s Summary
	s.TotalLeads = len(leads)

	wonLeads := 0
	valuedLeads := 0
	var valuedSum float64

	for i := range leads {
		lead := &leads[i]
		won := lead.Status.Slug == wonSlug

		if !lead.Status.IsFinal || won {
			s.PipelineValue += lead.Value()
		}
		if won {
			s.WonValue += lead.Value()
			wonLeads++
		}
		if lead.HasValue() {
			valuedSum += lead.Value()
			valuedLeads++
		}
	}

	if s.TotalLeads > 0 {
		s.ConversionRate = round2(float64(wonLeads) / float64(s.TotalLeads) * 100)
	}
	if valuedLeads > 0 {
		s.AverageDealSize = round2(valuedSum / float64(valuedLeads))
	}
	return s
}

// SourceCount is one bucket of the per-source breakdown
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// countBySource buckets leads by source, descending by count. Leads without
// a source land in the "Unknown" bucket. Ties break alphabetically so the
// ordering is deterministic.
func countBySource(leads []model.Lead) []SourceCount {
	counts := map[string]int{}
	for i := range leads {
		source := leads[i].Source
		if source == "" {
			source = "Unknown"
		}
		counts[source]++
	}

	result := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		result = append(result, SourceCount{Source: source, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Source < result[j].Source
	})
	return result
}

// DailyCount is one day of the creation trend
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// dailyTrend groups leads by calendar date of creation, ascending. Days with
// no leads are omitted.
func dailyTrend(leads []model.Lead) []DailyCount {
	counts := map[string]int{}
	for i := range leads {
		day := leads[i].CreatedAt.Format("2006-01-02")
		counts[day]++
	}

	result := make([]DailyCount, 0, len(counts))
	for day, count := range counts {
		result = append(result, DailyCount{Date: day, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

package stats

import (
	"testing"
	"time"

	"crm-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func leadWith(slug string, isFinal bool, estimated, job *float64) model.Lead {
	return model.Lead{
		EstimatedValue: estimated,
		JobValue:       job,
		Status:         model.LeadStatus{Slug: slug, IsFinal: isFinal},
	}
}

func ptr(v float64) *float64 { return &v }

func TestSummarizeEmpty(t *testing.T) {
	s := summarize(nil)

	assert.Equal(t, 0, s.TotalLeads)
	assert.Equal(t, 0.0, s.PipelineValue)
	assert.Equal(t, 0.0, s.WonValue)
	assert.Equal(t, 0.0, s.ConversionRate)
	assert.Equal(t, 0.0, s.AverageDealSize)
}

func TestSummarizePipelineAndWonValue(t *testing.T) {
	leads := []model.Lead{
		leadWith("new", false, nil, ptr(1000)),
		leadWith("quoted", false, ptr(2500), ptr(2000)), // estimated wins
		leadWith("won", true, ptr(4000), nil),
		leadWith("lost", true, ptr(9000), nil), // final and not won, excluded from pipeline
		leadWith("new", false, nil, nil),       // open lead with no value
	}

	s := summarize(leads)

	assert.Equal(t, 5, s.TotalLeads)
	// 1000 + 2500 + 4000; the lost lead is out, the unvalued lead adds zero
	assert.Equal(t, 7500.0, s.PipelineValue)
	assert.Equal(t, 4000.0, s.WonValue)
	// 1 of 5 won
	assert.Equal(t, 20.0, s.ConversionRate)
	// (1000 + 2500 + 4000 + 9000) / 4 valued leads
	assert.Equal(t, 4125.0, s.AverageDealSize)
}

func TestSummarizeConversionRateRounds(t *testing.T) {
	leads := []model.Lead{
		leadWith("won", true, nil, nil),
		leadWith("new", false, nil, nil),
		leadWith("new", false, nil, nil),
	}

	s := summarize(leads)
	assert.Equal(t, 33.33, s.ConversionRate)
}

func TestCountBySource(t *testing.T) {
	leads := []model.Lead{
		{Source: "website"},
		{Source: "website"},
		{Source: "referral"},
		{Source: ""},
		{Source: "facebook"},
		{Source: "referral"},
	}

	buckets := countBySource(leads)

	assert.Equal(t, []SourceCount{
		{Source: "referral", Count: 2},
		{Source: "website", Count: 2},
		{Source: "Unknown", Count: 1},
		{Source: "facebook", Count: 1},
	}, buckets)
}

func TestDailyTrendAscending(t *testing.T) {
	day := func(s string) time.Time {
		parsed, _ := time.Parse("2006-01-02", s)
		return parsed
	}

	leads := []model.Lead{
		{CreatedAt: day("2026-08-03")},
		{CreatedAt: day("2026-08-01")},
		{CreatedAt: day("2026-08-03")},
		{CreatedAt: day("2026-08-02")},
	}

	trend := dailyTrend(leads)

	assert.Equal(t, []DailyCount{
		{Date: "2026-08-01", Count: 1},
		{Date: "2026-08-02", Count: 1},
		{Date: "2026-08-03", Count: 2},
	}, trend)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, round2(100.0/3))
	assert.Equal(t, 66.67, round2(200.0/3))
	assert.Equal(t, 0.0, round2(0))
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2026, 8, 15, 14, 30, 12, 0, time.UTC)

	start := startOfDay(at)
	end := endOfDay(at)

	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.True(t, end.After(at))
	assert.True(t, end.Before(startOfDay(at.AddDate(0, 0, 1))))
}

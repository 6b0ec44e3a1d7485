package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/query-service/internal/domain"
)

func ticketRaisedAt(raised time.Time) domain.Ticket {
	return domain.Ticket{Status: domain.TicketStatusOpen, DateRaised: raised}
}

func TestMonthlyTicketCounts(t *testing.T) {
	svc := NewAnalyticsService(newFakeSessionRepo())

	tickets := []domain.Ticket{
		ticketRaisedAt(time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC)),
		ticketRaisedAt(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),
		ticketRaisedAt(time.Date(2024, 1, 28, 23, 0, 0, 0, time.UTC)),
	}

	counts := svc.MonthlyTicketCounts(tickets)
	require.Len(t, counts, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), counts[0].Month)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), counts[1].Month)
	assert.Equal(t, 1, counts[1].Count)
}

func TestMonthlyTicketCountsEmpty(t *testing.T) {
	svc := NewAnalyticsService(newFakeSessionRepo())
	assert.Empty(t, svc.MonthlyTicketCounts(nil))
}

func TestStatusSplit(t *testing.T) {
	svc := NewAnalyticsService(newFakeSessionRepo())

	closedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusOpen},
		{Status: domain.TicketStatusOpen},
		{Status: domain.TicketStatusClosed, DateClosed: &closedAt},
	}

	split := svc.StatusSplit(tickets)
	assert.Equal(t, 2, split[domain.TicketStatusOpen])
	assert.Equal(t, 1, split[domain.TicketStatusClosed])
}

func TestDailyLoginTotalsBillOpenSessionsToNow(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := NewAnalyticsService(sessions)

	loginAt := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	_, err := sessions.Open(context.Background(), "SAM", loginAt)
	require.NoError(t, err)

	svc.now = func() time.Time { return loginAt.Add(30 * time.Minute) }

	totals, err := svc.DailyLoginTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "SAM", totals[0].Username)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), totals[0].Day)
	assert.Equal(t, int64(1800), totals[0].Seconds)

	// Re-querying later bills the still-open session further.
	svc.now = func() time.Time { return loginAt.Add(time.Hour) }

	totals, err = svc.DailyLoginTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(3600), totals[0].Seconds)
}

func TestDailyLoginTotalsGroupByUserAndDay(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := NewAnalyticsService(sessions)

	day1 := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	open := func(username string, at time.Time, length time.Duration) {
		_, err := sessions.Open(context.Background(), username, at)
		require.NoError(t, err)
		closed, err := sessions.CloseLatestOpen(context.Background(), username, at.Add(length))
		require.NoError(t, err)
		require.True(t, closed)
	}

	open("AMY", day1, time.Hour)
	open("AMY", day1.Add(4*time.Hour), 30*time.Minute)
	open("AMY", day2, 2*time.Hour)
	open("SAM", day1, time.Hour)

	svc.now = func() time.Time { return day2.Add(12 * time.Hour) }

	totals, err := svc.DailyLoginTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 3)

	// Ordered by day, then username.
	assert.Equal(t, "AMY", totals[0].Username)
	assert.Equal(t, int64(5400), totals[0].Seconds)
	assert.Equal(t, "SAM", totals[1].Username)
	assert.Equal(t, int64(3600), totals[1].Seconds)
	assert.Equal(t, "AMY", totals[2].Username)
	assert.Equal(t, int64(7200), totals[2].Seconds)
}

func TestWeeklyLoginTotalsRestrictToWorkWeek(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := NewAnalyticsService(sessions)

	// Wednesday of the week starting Monday 2024-06-10.
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	monday := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	_, err := sessions.Open(context.Background(), "SAM", monday)
	require.NoError(t, err)
	closed, err := sessions.CloseLatestOpen(context.Background(), "SAM", monday.Add(2*time.Hour))
	require.NoError(t, err)
	require.True(t, closed)

	// Previous Saturday falls outside the Monday-to-Friday window.
	saturday := time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)
	_, err = sessions.Open(context.Background(), "SAM", saturday)
	require.NoError(t, err)
	closed, err = sessions.CloseLatestOpen(context.Background(), "SAM", saturday.Add(8*time.Hour))
	require.NoError(t, err)
	require.True(t, closed)

	totals, err := svc.WeeklyLoginTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "SAM", totals[0].Username)
	assert.Equal(t, int64(7200), totals[0].Seconds)
	assert.Equal(t, "2h 0m", totals[0].Formatted)
}

func TestFormatHoursMinutes(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0h 0m"},
		{59, "0h 0m"},
		{60, "0h 1m"},
		{3600, "1h 0m"},
		{3660, "1h 1m"},
		{5400, "1h 30m"},
		{90000, "25h 0m"},
		{-5, "0h 0m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHoursMinutes(tt.seconds))
	}
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/helpdesk-kit/query-service/internal/domain"
	"github.com/helpdesk-kit/query-service/internal/repository"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

// AnalyticsService derives read-only views over the ticket store and
// the session ledger. Nothing here mutates state. Totals for sessions
// that are still open are computed against the clock at query time, so
// re-querying before logout yields a larger number each time.
type AnalyticsService struct {
	sessions repository.SessionRepository
	now      func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(sessions repository.SessionRepository) *AnalyticsService {
	return &AnalyticsService{sessions: sessions, now: time.Now}
}

// MonthlyCount is one calendar-month bucket of raised tickets.
type MonthlyCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

// MonthlyTicketCounts groups the supplied tickets by the calendar
// month they were raised in, sorted chronologically ascending.
func (s *AnalyticsService) MonthlyTicketCounts(tickets []domain.Ticket) []MonthlyCount {
	buckets := make(map[time.Time]int)
	for _, ticket := range tickets {
		month := time.Date(ticket.DateRaised.Year(), ticket.DateRaised.Month(), 1, 0, 0, 0, 0, ticket.DateRaised.Location())
		buckets[month]++
	}

	result := make([]MonthlyCount, 0, len(buckets))
	for month, count := range buckets {
		result = append(result, MonthlyCount{Month: month, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month.Before(result[j].Month)
	})
	return result
}

// StatusSplit counts the supplied tickets per status value.
func (s *AnalyticsService) StatusSplit(tickets []domain.Ticket) map[domain.TicketStatus]int {
	split := make(map[domain.TicketStatus]int)
	for _, ticket := range tickets {
		split[ticket.Status]++
	}
	return split
}

// DailyLoginTotal is the summed session time for one user on one
// calendar day (the day the session was opened).
type DailyLoginTotal struct {
	Username string    `json:"username"`
	Day      time.Time `json:"day"`
	Seconds  int64     `json:"seconds"`
}

// DailyLoginTotals sums elapsed session seconds per (username, login
// day) across the whole ledger. Open sessions are billed up to now;
// there is no snapshot caching.
func (s *AnalyticsService) DailyLoginTotals(ctx context.Context) ([]DailyLoginTotal, error) {
	records, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.dailyTotals(records), nil
}

func (s *AnalyticsService) dailyTotals(records []domain.SessionRecord) []DailyLoginTotal {
	type key struct {
		username string
		day      time.Time
	}

	now := s.now()
	buckets := make(map[key]int64)
	for i := range records {
		record := &records[i]
		day := time.Date(record.LoginTime.Year(), record.LoginTime.Month(), record.LoginTime.Day(), 0, 0, 0, 0, record.LoginTime.Location())
		buckets[key{record.Username, day}] += int64(record.Elapsed(now).Seconds())
	}

	result := make([]DailyLoginTotal, 0, len(buckets))
	for k, seconds := range buckets {
		result = append(result, DailyLoginTotal{Username: k.username, Day: k.day, Seconds: seconds})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		return result[i].Username < result[j].Username
	})
	return result
}

// WeeklyLoginTotal is one user's summed session time across the
// current Monday to Friday window.
type WeeklyLoginTotal struct {
	Username  string `json:"username"`
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
}

// WeeklyLoginTotals restricts the ledger to the current five-day work
// week and sums seconds per username, with an "Hh Mm" rendering.
func (s *AnalyticsService) WeeklyLoginTotals(ctx context.Context) ([]WeeklyLoginTotal, error) {
	weekStart, weekEnd := s.workWeekWindow()
	records, err := s.sessions.ListBetween(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	buckets := make(map[string]int64)
	for i := range records {
		record := &records[i]
		buckets[record.Username] += int64(record.Elapsed(now).Seconds())
	}

	result := make([]WeeklyLoginTotal, 0, len(buckets))
	for username, seconds := range buckets {
		result = append(result, WeeklyLoginTotal{
			Username:  username,
			Seconds:   seconds,
			Formatted: FormatHoursMinutes(seconds),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

// workWeekWindow returns [Monday 00:00, Saturday 00:00) of the week
// containing now, excluding weekend days from the totals.
func (s *AnalyticsService) workWeekWindow() (time.Time, time.Time) {
	now := s.now()
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -daysSinceMonday)
	return monday, monday.AddDate(0, 0, 5)
}

// FormatHoursMinutes renders a second count as "Hh Mm".
func FormatHoursMinutes(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

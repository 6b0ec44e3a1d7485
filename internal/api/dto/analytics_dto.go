package dto

// MonthlyCountResponse is one "YYYY-MM" bucket of raised tickets.
type MonthlyCountResponse struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TicketAnalyticsResponse aggregates ticket volume views.
type TicketAnalyticsResponse struct {
	Total       int                    `json:"total"`
	Monthly     []MonthlyCountResponse `json:"monthly"`
	StatusSplit map[string]int         `json:"status_split"`
}

// DailyLoginResponse is one user's summed session time on one day.
type DailyLoginResponse struct {
	Username string `json:"username"`
	Day      string `json:"day"`
	Seconds  int64  `json:"seconds"`
}

// WeeklyLoginResponse is one user's summed session time across the
// current work week.
type WeeklyLoginResponse struct {
	Username  string `json:"username"`
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
}

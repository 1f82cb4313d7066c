package cqrs

// ---------- Profile queries ----------

// GetProfileQuery fetches a whole profile, subject to ownership check.
type GetProfileQuery struct {
	UserID           string
	RequestingUserID string
}

// ListEntriesQuery pages through expenses or income, newest first.
type ListEntriesQuery struct {
	UserID           string
	RequestingUserID string
	Page             int
	Limit            int
}

// ---------- Report queries ----------

// BudgetQuery always names a month; the handler fills in the current one.
type BudgetQuery struct {
	UserID           string
	RequestingUserID string
	Month            int
	Year             int
}

// CategoryQuery filters by month and year only when both are non-zero.
type CategoryQuery struct {
	UserID           string
	RequestingUserID string
	Month            int
	Year             int
}

// TrendQuery filters by year when Year is non-zero.
type TrendQuery struct {
	UserID           string
	RequestingUserID string
	Year             int
}

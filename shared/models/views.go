package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserView is what clients see of a credential. It never carries the hash.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdTimestamp"`
}

func NewUserView(c *Credential) *UserView {
	return &UserView{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
	}
}

// Page is one slice of a date-sorted embedded list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type BudgetOverview struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	IncomeTotal     decimal.Decimal `json:"incomeTotal"`
	Remaining       decimal.Decimal `json:"remaining"`
	PercentUsed     int64           `json:"percentUsed"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type TrendPoint struct {
	Label string          `json:"label"`
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

type GoalProgress struct {
	GoalID        string          `json:"goalId"`
	GoalName      string          `json:"goalName"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	Percent       int64           `json:"percent"`
}

type SavingsProgress struct {
	Goals       []GoalProgress  `json:"goals"`
	TotalTarget decimal.Decimal `json:"totalTarget"`
	TotalSaved  decimal.Decimal `json:"totalSaved"`
}

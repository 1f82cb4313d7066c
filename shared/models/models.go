package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UseNumericAmounts makes decimal amounts marshal as JSON numbers, matching
// what the dashboard sends. It flips a process-wide shopspring/decimal switch,
// so services call it once from main before serving.
func UseNumericAmounts() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Credential struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
}

// IncomeEntry has the same shape as Expense but adds to the budget.
type IncomeEntry struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
}

type SavingsGoal struct {
	ID            string          `json:"id"`
	GoalName      string          `json:"goalName"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
}

// SavingsRecord is written by end-of-month settlement. Amount may be negative
// when the month was overspent.
type SavingsRecord struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// FinancialProfile is the per-user aggregate. It is persisted as a single
// document and Version guards concurrent writes.
type FinancialProfile struct {
	UserID          string          `json:"userId"`
	Username        string          `json:"username"`
	Salary          decimal.Decimal `json:"salary"`
	RecurringSalary decimal.Decimal `json:"recurringSalary"`
	SalaryCreditDay int             `json:"salaryCreditDay"`
	Expenses        []Expense       `json:"expenses"`
	Income          []IncomeEntry   `json:"income"`
	SavingsGoals    []SavingsGoal   `json:"savingsGoals"`
	Savings         []SavingsRecord `json:"savings"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"createdTimestamp"`
	UpdatedAt       time.Time       `json:"updatedTimestamp"`
}

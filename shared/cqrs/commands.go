package cqrs

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------- Credential commands ----------

type SignupCommand struct {
	Username string
	Email    string
	Password string
}

type LoginCommand struct {
	Identifier string
	Password   string
}

// ---------- Profile commands ----------
// RequestingUserID is the verified token subject; UserID is the profile the
// caller is addressing. They must match.

// Username is only used when the profile has to be created.
type UpsertSalaryCommand struct {
	UserID           string
	RequestingUserID string
	Username         string
	Salary           decimal.Decimal
	RecurringSalary  decimal.Decimal
	SalaryCreditDay  int
}

// AddEntryCommand adds either an expense or an income entry.
type AddEntryCommand struct {
	UserID           string
	RequestingUserID string
	Description      string
	Amount           decimal.Decimal
	Date             *time.Time
	Category         string
}

// EditExpenseCommand is a partial update: nil fields are left alone.
type EditExpenseCommand struct {
	UserID           string
	RequestingUserID string
	ExpenseID        string
	Description      *string
	Amount           *decimal.Decimal
	Date             *time.Time
	Category         *string
}

type DeleteEntryCommand struct {
	UserID           string
	RequestingUserID string
	EntryID          string
}

type AddSavingsGoalCommand struct {
	UserID           string
	RequestingUserID string
	GoalName         string
	TargetAmount     decimal.Decimal
	CurrentAmount    decimal.Decimal
	Deadline         *time.Time
}

// EditSavingsGoalCommand carries CurrentAmount as a delta added to the goal.
type EditSavingsGoalCommand struct {
	UserID           string
	RequestingUserID string
	GoalID           string
	GoalName         string
	TargetAmount     *decimal.Decimal
	CurrentAmount    *decimal.Decimal
	Deadline         *time.Time
	DeductFromSalary bool
}

type ContributeCommand struct {
	UserID           string
	RequestingUserID string
	GoalID           string
	Amount           decimal.Decimal
}

type SettleCommand struct {
	UserID           string
	RequestingUserID string
}

// Package aggregate holds the rules for mutating a FinancialProfile.
//
// Every function works on the profile it is given and either applies its
// whole effect or returns an error having changed nothing. Callers pass a
// clone of the stored profile and persist it only on success.
package aggregate

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	"github.com/vasusumeet/Personal-Finance-App/shared/utils"
)

const (
	MsgProfileNotFound = "User data not found"
	MsgExpenseNotFound = "Expense not found"
	MsgIncomeNotFound  = "Income not found"
	MsgGoalNotFound    = "Savings goal not found"

	SettlementDescription = "End of month savings transfer"
)

// ExpensePatch is a partial update; nil fields are left untouched.
type ExpensePatch struct {
	Description *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Category    *string
}

// GoalPatch edits a savings goal. GoalName, TargetAmount and Deadline apply
// only when set to a non-zero value. CurrentAmount is added to the goal.
type GoalPatch struct {
	GoalName         string
	TargetAmount     *decimal.Decimal
	CurrentAmount    *decimal.Decimal
	Deadline         *time.Time
	DeductFromSalary bool
}

// FundingSource names the balance a contribution was taken from.
type FundingSource string

const (
	FromRecurringSalary FundingSource = "recurringSalary"
	FromSalary          FundingSource = "salary"
)

func SetSalary(p *models.FinancialProfile, salary, recurring decimal.Decimal, creditDay int) error {
	if salary.IsNegative() {
		return apperr.Validation("Salary cannot be negative")
	}
	if recurring.IsNegative() {
		return apperr.Validation("Recurring salary cannot be negative")
	}
	if creditDay < 0 || creditDay > 31 {
		return apperr.Validation("Salary credit day must be between 1 and 31")
	}
	p.Salary = salary
	p.RecurringSalary = recurring
	p.SalaryCreditDay = creditDay
	return nil
}

func validateEntry(description string, amount decimal.Decimal, category string) error {
	if strings.TrimSpace(description) == "" {
		return apperr.Validation("Description is required")
	}
	if !amount.IsPositive() {
		return apperr.Validation("Amount must be greater than 0")
	}
	if strings.TrimSpace(category) == "" {
		return apperr.Validation("Category is required")
	}
	return nil
}

func dateOrNow(date *time.Time, now time.Time) time.Time {
	if date == nil || date.IsZero() {
		return now.UTC()
	}
	return date.UTC()
}

func AddExpense(p *models.FinancialProfile, description string, amount decimal.Decimal, date *time.Time, category string, now time.Time) (models.Expense, error) {
	if err := validateEntry(description, amount, category); err != nil {
		return models.Expense{}, err
	}
	e := models.Expense{
		ID:          utils.GenerateID(utils.PrefixExpense),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        dateOrNow(date, now),
		Category:    strings.TrimSpace(category),
	}
	p.Expenses = append(p.Expenses, e)
	return e, nil
}

// EditExpense returns the expense as it stands after the patch.
func EditExpense(p *models.FinancialProfile, id string, patch ExpensePatch) (models.Expense, error) {
	i := indexOf(p.Expenses, func(e models.Expense) bool { return e.ID == id })
	if i < 0 {
		return models.Expense{}, apperr.NotFound(MsgExpenseNotFound)
	}

	e := p.Expenses[i]
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return models.Expense{}, apperr.Validation("Description cannot be empty")
		}
		e.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return models.Expense{}, apperr.Validation("Amount must be greater than 0")
		}
		e.Amount = *patch.Amount
	}
	if patch.Date != nil && !patch.Date.IsZero() {
		e.Date = patch.Date.UTC()
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			return models.Expense{}, apperr.Validation("Category cannot be empty")
		}
		e.Category = strings.TrimSpace(*patch.Category)
	}

	p.Expenses[i] = e
	return e, nil
}

func DeleteExpense(p *models.FinancialProfile, id string) error {
	i := indexOf(p.Expenses, func(e models.Expense) bool { return e.ID == id })
	if i < 0 {
		return apperr.NotFound(MsgExpenseNotFound)
	}
	p.Expenses = removeAt(p.Expenses, i)
	return nil
}

func AddIncome(p *models.FinancialProfile, description string, amount decimal.Decimal, date *time.Time, category string, now time.Time) (models.IncomeEntry, error) {
	if err := validateEntry(description, amount, category); err != nil {
		return models.IncomeEntry{}, err
	}
	in := models.IncomeEntry{
		ID:          utils.GenerateID(utils.PrefixIncome),
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        dateOrNow(date, now),
		Category:    strings.TrimSpace(category),
	}
	p.Income = append(p.Income, in)
	return in, nil
}

func DeleteIncome(p *models.FinancialProfile, id string) error {
	i := indexOf(p.Income, func(in models.IncomeEntry) bool { return in.ID == id })
	if i < 0 {
		return apperr.NotFound(MsgIncomeNotFound)
	}
	p.Income = removeAt(p.Income, i)
	return nil
}

func AddSavingsGoal(p *models.FinancialProfile, name string, target, current decimal.Decimal, deadline *time.Time) (models.SavingsGoal, error) {
	if strings.TrimSpace(name) == "" {
		return models.SavingsGoal{}, apperr.Validation("Goal name is required")
	}
	if !target.IsPositive() {
		return models.SavingsGoal{}, apperr.Validation("Target amount must be greater than 0")
	}
	if current.IsNegative() {
		return models.SavingsGoal{}, apperr.Validation("Current amount cannot be negative")
	}
	g := models.SavingsGoal{
		ID:            utils.GenerateID(utils.PrefixGoal),
		GoalName:      strings.TrimSpace(name),
		TargetAmount:  target,
		CurrentAmount: current,
	}
	if deadline != nil && !deadline.IsZero() {
		d := deadline.UTC()
		g.Deadline = &d
	}
	p.SavingsGoals = append(p.SavingsGoals, g)
	return g, nil
}

// EditSavingsGoal applies patch. With DeductFromSalary the added amount is
// taken from recurringSalary when it covers it, otherwise from salary with no
// floor, so salary may go negative here.
func EditSavingsGoal(p *models.FinancialProfile, id string, patch GoalPatch) (models.SavingsGoal, error) {
	i := indexOf(p.SavingsGoals, func(g models.SavingsGoal) bool { return g.ID == id })
	if i < 0 {
		return models.SavingsGoal{}, apperr.NotFound(MsgGoalNotFound)
	}

	g := p.SavingsGoals[i]
	if name := strings.TrimSpace(patch.GoalName); name != "" {
		g.GoalName = name
	}
	if patch.TargetAmount != nil && !patch.TargetAmount.IsZero() {
		if patch.TargetAmount.IsNegative() {
			return models.SavingsGoal{}, apperr.Validation("Target amount must be greater than 0")
		}
		g.TargetAmount = *patch.TargetAmount
	}
	if patch.Deadline != nil && !patch.Deadline.IsZero() {
		d := patch.Deadline.UTC()
		g.Deadline = &d
	}

	salary, recurring := p.Salary, p.RecurringSalary
	if patch.CurrentAmount != nil {
		delta := *patch.CurrentAmount
		if patch.DeductFromSalary && delta.IsNegative() {
			return models.SavingsGoal{}, apperr.Validation("Cannot deduct a negative amount from salary")
		}
		g.CurrentAmount = g.CurrentAmount.Add(delta)
		if g.CurrentAmount.IsNegative() {
			return models.SavingsGoal{}, apperr.Validation("Current amount cannot be negative")
		}
		if patch.DeductFromSalary {
			if recurring.GreaterThanOrEqual(delta) {
				recurring = recurring.Sub(delta)
			} else {
				salary = salary.Sub(delta)
			}
		}
	}

	p.Salary, p.RecurringSalary = salary, recurring
	p.SavingsGoals[i] = g
	return g, nil
}

func DeleteSavingsGoal(p *models.FinancialProfile, id string) error {
	i := indexOf(p.SavingsGoals, func(g models.SavingsGoal) bool { return g.ID == id })
	if i < 0 {
		return apperr.NotFound(MsgGoalNotFound)
	}
	p.SavingsGoals = removeAt(p.SavingsGoals, i)
	return nil
}

// Contribute moves amount into a goal from recurringSalary if it covers the
// amount, else from salary if that does. Otherwise nothing changes.
func Contribute(p *models.FinancialProfile, id string, amount decimal.Decimal) (models.SavingsGoal, FundingSource, error) {
	if !amount.IsPositive() {
		return models.SavingsGoal{}, "", apperr.Validation("Amount must be greater than 0")
	}
	i := indexOf(p.SavingsGoals, func(g models.SavingsGoal) bool { return g.ID == id })
	if i < 0 {
		return models.SavingsGoal{}, "", apperr.NotFound(MsgGoalNotFound)
	}

	var source FundingSource
	switch {
	case p.RecurringSalary.GreaterThanOrEqual(amount):
		p.RecurringSalary = p.RecurringSalary.Sub(amount)
		source = FromRecurringSalary
	case p.Salary.GreaterThanOrEqual(amount):
		p.Salary = p.Salary.Sub(amount)
		source = FromSalary
	default:
		return models.SavingsGoal{}, "", apperr.InsufficientFunds("Insufficient funds in salary and recurring salary")
	}

	p.SavingsGoals[i].CurrentAmount = p.SavingsGoals[i].CurrentAmount.Add(amount)
	return p.SavingsGoals[i], source, nil
}

// Settle closes the month: what is left of salary after expenses, plus any
// recurring salary, becomes a savings record (negative when overspent).
// Salary balances reset and expenses are cleared. Income is kept.
func Settle(p *models.FinancialProfile, now time.Time) models.SavingsRecord {
	total := decimal.Zero
	for _, e := range p.Expenses {
		total = total.Add(e.Amount)
	}
	remaining := p.Salary.Sub(total)
	if !p.RecurringSalary.IsZero() {
		remaining = remaining.Add(p.RecurringSalary)
	}

	record := models.SavingsRecord{
		ID:          utils.GenerateID(utils.PrefixSavings),
		Amount:      remaining,
		Date:        now.UTC(),
		Description: SettlementDescription,
	}
	p.Savings = append(p.Savings, record)
	p.Salary = decimal.Zero
	p.RecurringSalary = decimal.Zero
	p.Expenses = []models.Expense{}
	return record
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

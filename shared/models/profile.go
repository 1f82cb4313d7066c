package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewFinancialProfile returns the zeroed profile created alongside a credential.
func NewFinancialProfile(userID, username string, now time.Time) *FinancialProfile {
	p := &FinancialProfile{
		UserID:          userID,
		Username:        username,
		Salary:          decimal.Zero,
		RecurringSalary: decimal.Zero,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	p.Normalize()
	return p
}

// Normalize makes every list non-nil so they serialise as [] and callers can
// append without checks. Documents written by older versions may lack a list.
func (p *FinancialProfile) Normalize() {
	if p.Expenses == nil {
		p.Expenses = []Expense{}
	}
	if p.Income == nil {
		p.Income = []IncomeEntry{}
	}
	if p.SavingsGoals == nil {
		p.SavingsGoals = []SavingsGoal{}
	}
	if p.Savings == nil {
		p.Savings = []SavingsRecord{}
	}
}

// Clone returns a deep copy so a mutation attempt never touches the loaded
// value if it has to be discarded.
func (p *FinancialProfile) Clone() *FinancialProfile {
	c := *p
	c.Expenses = append([]Expense{}, p.Expenses...)
	c.Income = append([]IncomeEntry{}, p.Income...)
	c.SavingsGoals = make([]SavingsGoal, len(p.SavingsGoals))
	for i, g := range p.SavingsGoals {
		if g.Deadline != nil {
			d := *g.Deadline
			g.Deadline = &d
		}
		c.SavingsGoals[i] = g
	}
	c.Savings = append([]SavingsRecord{}, p.Savings...)
	return &c
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFinancialProfileIsZeroed(t *testing.T) {
	p := NewFinancialProfile("usr-1", "alice", time.Now())

	assert.Equal(t, "usr-1", p.UserID)
	assert.Equal(t, "alice", p.Username)
	assert.True(t, p.Salary.IsZero())
	assert.True(t, p.RecurringSalary.IsZero())
	assert.NotNil(t, p.Expenses)
	assert.NotNil(t, p.Income)
	assert.NotNil(t, p.SavingsGoals)
	assert.NotNil(t, p.Savings)
}

func TestProfileSerialisesEmptyListsAndNumericAmounts(t *testing.T) {
	UseNumericAmounts()
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	p := NewFinancialProfile("usr-1", "alice", time.Now())
	p.Salary = decimal.RequireFromString("1000.50")

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []any{}, doc["expenses"])
	assert.Equal(t, 1000.5, doc["salary"])
}

func TestAmountsAreQuotedUntilEnabled(t *testing.T) {
	require.False(t, decimal.MarshalJSONWithoutQuotes)

	raw, err := json.Marshal(Expense{Amount: decimal.RequireFromString("12.30")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":"12.3"`)
}

func TestNormalizeFillsMissingLists(t *testing.T) {
	var p FinancialProfile
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"usr-1","salary":5}`), &p))

	p.Normalize()
	assert.Empty(t, p.Expenses)
	assert.NotNil(t, p.Expenses)
	assert.NotNil(t, p.Savings)
}

func TestCloneIsIndependent(t *testing.T) {
	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	p := NewFinancialProfile("usr-1", "alice", time.Now())
	p.Expenses = append(p.Expenses, Expense{ID: "exp-1", Amount: decimal.NewFromInt(10)})
	p.SavingsGoals = append(p.SavingsGoals, SavingsGoal{ID: "gol-1", Deadline: &deadline})

	c := p.Clone()
	c.Expenses[0].Amount = decimal.NewFromInt(99)
	*c.SavingsGoals[0].Deadline = deadline.AddDate(1, 0, 0)

	assert.True(t, p.Expenses[0].Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, deadline, *p.SavingsGoals[0].Deadline)
}

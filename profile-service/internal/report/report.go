// Package report derives dashboard views from a loaded profile. Nothing here
// writes; months are bucketed in UTC.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

var hundred = decimal.NewFromInt(100)

func inMonth(t time.Time, month, year int) bool {
	t = t.UTC()
	return int(t.Month()) == month && t.Year() == year
}

func percent(part, whole decimal.Decimal) int64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(0).IntPart()
}

// BudgetOverview totals one month. The base income is recurringSalary when
// set, otherwise salary.
func BudgetOverview(p *models.FinancialProfile, month, year int) models.BudgetOverview {
	expenses := decimal.Zero
	for _, e := range p.Expenses {
		if inMonth(e.Date, month, year) {
			expenses = expenses.Add(e.Amount)
		}
	}
	income := decimal.Zero
	for _, in := range p.Income {
		if inMonth(in.Date, month, year) {
			income = income.Add(in.Amount)
		}
	}

	base := p.Salary
	if !p.RecurringSalary.IsZero() {
		base = p.RecurringSalary
	}
	total := base.Add(income)

	return models.BudgetOverview{
		Month:           month,
		Year:            year,
		MonthlyExpenses: expenses,
		MonthlyIncome:   income,
		IncomeTotal:     total,
		Remaining:       total.Sub(expenses),
		PercentUsed:     percent(expenses, total),
	}
}

// ExpensesByCategory sums over the whole history unless both month and year
// are given. Categories come back in name order.
func ExpensesByCategory(p *models.FinancialProfile, month, year int) []models.CategoryTotal {
	filter := month != 0 && year != 0
	totals := make(map[string]decimal.Decimal)
	for _, e := range p.Expenses {
		if filter && !inMonth(e.Date, month, year) {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	out := make([]models.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, models.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// MonthlyTrend sums expenses per month, oldest first. year 0 means all years.
func MonthlyTrend(p *models.FinancialProfile, year int) []models.TrendPoint {
	type key struct{ year, month int }
	totals := make(map[key]decimal.Decimal)
	for _, e := range p.Expenses {
		t := e.Date.UTC()
		if year != 0 && t.Year() != year {
			continue
		}
		k := key{t.Year(), int(t.Month())}
		totals[k] = totals[k].Add(e.Amount)
	}

	out := make([]models.TrendPoint, 0, len(totals))
	for k, total := range totals {
		out = append(out, models.TrendPoint{
			Label: fmt.Sprintf("%d/%d", k.month, k.year),
			Month: k.month,
			Year:  k.year,
			Total: total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func SavingsProgress(p *models.FinancialProfile) models.SavingsProgress {
	progress := models.SavingsProgress{
		Goals:       make([]models.GoalProgress, 0, len(p.SavingsGoals)),
		TotalTarget: decimal.Zero,
		TotalSaved:  decimal.Zero,
	}
	for _, g := range p.SavingsGoals {
		progress.Goals = append(progress.Goals, models.GoalProgress{
			GoalID:        g.ID,
			GoalName:      g.GoalName,
			CurrentAmount: g.CurrentAmount,
			TargetAmount:  g.TargetAmount,
			Percent:       percent(g.CurrentAmount, g.TargetAmount),
		})
		progress.TotalTarget = progress.TotalTarget.Add(g.TargetAmount)
		progress.TotalSaved = progress.TotalSaved.Add(g.CurrentAmount)
	}
	return progress
}

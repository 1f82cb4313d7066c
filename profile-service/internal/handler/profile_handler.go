package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/middleware"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

// ProfileCommander defines the write-side operations used by ProfileHandler.
type ProfileCommander interface {
	UpsertSalary(ctx context.Context, cmd cqrs.UpsertSalaryCommand) (*models.FinancialProfile, error)
	AddExpense(ctx context.Context, cmd cqrs.AddEntryCommand) (*models.FinancialProfile, error)
	EditExpense(ctx context.Context, cmd cqrs.EditExpenseCommand) (*models.Expense, error)
	DeleteExpense(ctx context.Context, cmd cqrs.DeleteEntryCommand) (*models.FinancialProfile, error)
	AddIncome(ctx context.Context, cmd cqrs.AddEntryCommand) (*models.FinancialProfile, error)
	DeleteIncome(ctx context.Context, cmd cqrs.DeleteEntryCommand) (*models.FinancialProfile, error)
	AddSavingsGoal(ctx context.Context, cmd cqrs.AddSavingsGoalCommand) (*models.FinancialProfile, error)
	EditSavingsGoal(ctx context.Context, cmd cqrs.EditSavingsGoalCommand) (*models.FinancialProfile, error)
	DeleteSavingsGoal(ctx context.Context, cmd cqrs.DeleteEntryCommand) (*models.FinancialProfile, error)
	Contribute(ctx context.Context, cmd cqrs.ContributeCommand) (*models.FinancialProfile, error)
	Settle(ctx context.Context, cmd cqrs.SettleCommand) (*models.FinancialProfile, error)
}

// ProfileQuerier defines the read-side operations used by ProfileHandler.
type ProfileQuerier interface {
	GetProfile(ctx context.Context, q cqrs.GetProfileQuery) (*models.FinancialProfile, error)
	ListExpenses(ctx context.Context, q cqrs.ListEntriesQuery) (*models.Page[models.Expense], error)
	ListIncome(ctx context.Context, q cqrs.ListEntriesQuery) (*models.Page[models.IncomeEntry], error)
	BudgetOverview(ctx context.Context, q cqrs.BudgetQuery) (*models.BudgetOverview, error)
	CategoryBreakdown(ctx context.Context, q cqrs.CategoryQuery) ([]models.CategoryTotal, error)
	MonthlyTrend(ctx context.Context, q cqrs.TrendQuery) ([]models.TrendPoint, error)
	SavingsProgress(ctx context.Context, q cqrs.GetProfileQuery) (*models.SavingsProgress, error)
}

// ProfileHandler handles /api/userdata requests.
type ProfileHandler struct {
	commands ProfileCommander
	queries  ProfileQuerier
	now      func() time.Time
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

type UpsertSalaryRequest struct {
	UserID          string          `json:"userId" validate:"required"`
	Salary          decimal.Decimal `json:"salary" validate:"gte=0"`
	RecurringSalary decimal.Decimal `json:"recurringSalary" validate:"gte=0"`
	SalaryCreditDay int             `json:"salaryCreditDay" validate:"omitempty,min=1,max=31"`
}

// EntryRequest is the body for both expenses and income.
type EntryRequest struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Date        string          `json:"date"`
	Category    string          `json:"category" validate:"required"`
}

type EditExpenseRequest struct {
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	Date        *string          `json:"date"`
	Category    *string          `json:"category" validate:"omitempty,min=1"`
}

type AddSavingsGoalRequest struct {
	GoalName      string          `json:"goalName" validate:"required"`
	TargetAmount  decimal.Decimal `json:"targetAmount" validate:"gt=0"`
	CurrentAmount decimal.Decimal `json:"currentAmount" validate:"gte=0"`
	Deadline      string          `json:"deadline"`
}

// EditSavingsGoalRequest adds CurrentAmount to the goal rather than
// replacing it.
type EditSavingsGoalRequest struct {
	GoalName         string           `json:"goalName"`
	TargetAmount     *decimal.Decimal `json:"targetAmount" validate:"omitempty,gte=0"`
	CurrentAmount    *decimal.Decimal `json:"currentAmount"`
	Deadline         string           `json:"deadline"`
	DeductFromSalary bool             `json:"deductFromSalary"`
}

type ContributeRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func NewProfileHandler(commands ProfileCommander, queries ProfileQuerier) *ProfileHandler {
	return &ProfileHandler{commands: commands, queries: queries, now: time.Now}
}

// RegisterRoutes mounts every /api/userdata route on rg. rg must already run
// the auth middleware.
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.UpsertSalary)
	rg.GET("/:userId", h.GetProfile)

	rg.POST("/:userId/expenses", h.AddExpense)
	rg.GET("/:userId/expenses", h.ListExpenses)
	rg.PUT("/:userId/expenses/:expenseId", h.EditExpense)
	rg.DELETE("/:userId/expenses/:expenseId", h.DeleteExpense)

	rg.POST("/:userId/income", h.AddIncome)
	rg.GET("/:userId/income", h.ListIncome)
	rg.DELETE("/:userId/income/:incomeId", h.DeleteIncome)

	rg.POST("/:userId/savings-goals", h.AddSavingsGoal)
	rg.PUT("/:userId/savings-goals/:goalId", h.EditSavingsGoal)
	rg.DELETE("/:userId/savings-goals/:goalId", h.DeleteSavingsGoal)
	rg.POST("/:userId/savings-goals/:goalId/contribute", h.Contribute)

	rg.POST("/:userId/end-of-month", h.Settle)

	reports := rg.Group("/:userId/reports")
	reports.GET("/budget", h.BudgetOverview)
	reports.GET("/categories", h.CategoryBreakdown)
	reports.GET("/trend", h.MonthlyTrend)
	reports.GET("/savings", h.SavingsProgress)
}

// bind decodes and validates a JSON body, writing the 400 itself on failure.
func bind[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return req, false
	}
	return req, true
}

// parseDate accepts either a calendar date or a full RFC 3339 timestamp. An
// empty string means "not given".
func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid "+key+" parameter")
		return 0, false
	}
	return v, true
}

func respond(c *gin.Context, v any, err error) {
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	p, err := h.queries.GetProfile(c.Request.Context(), cqrs.GetProfileQuery{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
	})
	respond(c, p, err)
}

func (h *ProfileHandler) UpsertSalary(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	req, ok := bind[UpsertSalaryRequest](c)
	if !ok {
		return
	}
	p, err := h.commands.UpsertSalary(c.Request.Context(), cqrs.UpsertSalaryCommand{
		UserID:           req.UserID,
		RequestingUserID: requester,
		Username:         middleware.GetUsername(c),
		Salary:           req.Salary,
		RecurringSalary:  req.RecurringSalary,
		SalaryCreditDay:  req.SalaryCreditDay,
	})
	respond(c, p, err)
}

func (h *ProfileHandler) entryCommand(c *gin.Context) (cqrs.AddEntryCommand, bool) {
	requester, _ := middleware.GetUserID(c)
	req, ok := bind[EntryRequest](c)
	if !ok {
		return cqrs.AddEntryCommand{}, false
	}
	date, ok := parseDate(req.Date)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid date format")
		return cqrs.AddEntryCommand{}, false
	}
	return cqrs.AddEntryCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		Description:      req.Description,
		Amount:           req.Amount,
		Date:             date,
		Category:         req.Category,
	}, true
}

func (h *ProfileHandler) AddExpense(c *gin.Context) {
	cmd, ok := h.entryCommand(c)
	if !ok {
		return
	}
	p, err := h.commands.AddExpense(c.Request.Context(), cmd)
	respond(c, p, err)
}

func (h *ProfileHandler) AddIncome(c *gin.Context) {
	cmd, ok := h.entryCommand(c)
	if !ok {
		return
	}
	p, err := h.commands.AddIncome(c.Request.Context(), cmd)
	respond(c, p, err)
}

func (h *ProfileHandler) EditExpense(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	req, ok := bind[EditExpenseRequest](c)
	if !ok {
		return
	}
	var date *time.Time
	if req.Date != nil {
		if date, ok = parseDate(*req.Date); !ok {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid date format")
			return
		}
	}
	e, err := h.commands.EditExpense(c.Request.Context(), cqrs.EditExpenseCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		ExpenseID:        c.Param("expenseId"),
		Description:      req.Description,
		Amount:           req.Amount,
		Date:             date,
		Category:         req.Category,
	})
	respond(c, e, err)
}

func (h *ProfileHandler) DeleteExpense(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	p, err := h.commands.DeleteExpense(c.Request.Context(), cqrs.DeleteEntryCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		EntryID:          c.Param("expenseId"),
	})
	respond(c, p, err)
}

func (h *ProfileHandler) DeleteIncome(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	p, err := h.commands.DeleteIncome(c.Request.Context(), cqrs.DeleteEntryCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		EntryID:          c.Param("incomeId"),
	})
	respond(c, p, err)
}

func (h *ProfileHandler) listQuery(c *gin.Context) (cqrs.ListEntriesQuery, bool) {
	requester, _ := middleware.GetUserID(c)
	page, ok := queryInt(c, "page", defaultPage)
	if !ok {
		return cqrs.ListEntriesQuery{}, false
	}
	limit, ok := queryInt(c, "limit", defaultLimit)
	if !ok {
		return cqrs.ListEntriesQuery{}, false
	}
	return cqrs.ListEntriesQuery{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		Page:             page,
		Limit:            limit,
	}, true
}

func (h *ProfileHandler) ListExpenses(c *gin.Context) {
	q, ok := h.listQuery(c)
	if !ok {
		return
	}
	page, err := h.queries.ListExpenses(c.Request.Context(), q)
	respond(c, page, err)
}

func (h *ProfileHandler) ListIncome(c *gin.Context) {
	q, ok := h.listQuery(c)
	if !ok {
		return
	}
	page, err := h.queries.ListIncome(c.Request.Context(), q)
	respond(c, page, err)
}

func (h *ProfileHandler) AddSavingsGoal(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	req, ok := bind[AddSavingsGoalRequest](c)
	if !ok {
		return
	}
	deadline, ok := parseDate(req.Deadline)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid deadline format")
		return
	}
	p, err := h.commands.AddSavingsGoal(c.Request.Context(), cqrs.AddSavingsGoalCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		GoalName:         req.GoalName,
		TargetAmount:     req.TargetAmount,
		CurrentAmount:    req.CurrentAmount,
		Deadline:         deadline,
	})
	respond(c, p, err)
}

func (h *ProfileHandler) EditSavingsGoal(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	req, ok := bind[EditSavingsGoalRequest](c)
	if !ok {
		return
	}
	deadline, ok := parseDate(req.Deadline)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid deadline format")
		return
	}
	p, err := h.commands.EditSavingsGoal(c.Request.Context(), cqrs.EditSavingsGoalCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		GoalID:           c.Param("goalId"),
		GoalName:         req.GoalName,
		TargetAmount:     req.TargetAmount,
		CurrentAmount:    req.CurrentAmount,
		Deadline:         deadline,
		DeductFromSalary: req.DeductFromSalary,
	})
	respond(c, p, err)
}

func (h *ProfileHandler) DeleteSavingsGoal(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	p, err := h.commands.DeleteSavingsGoal(c.Request.Context(), cqrs.DeleteEntryCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		EntryID:          c.Param("goalId"),
	})
	respond(c, p, err)
}

func (h *ProfileHandler) Contribute(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	req, ok := bind[ContributeRequest](c)
	if !ok {
		return
	}
	p, err := h.commands.Contribute(c.Request.Context(), cqrs.ContributeCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		GoalID:           c.Param("goalId"),
		Amount:           req.Amount,
	})
	respond(c, p, err)
}

func (h *ProfileHandler) Settle(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	p, err := h.commands.Settle(c.Request.Context(), cqrs.SettleCommand{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
	})
	respond(c, p, err)
}

// BudgetOverview defaults to the current month.
func (h *ProfileHandler) BudgetOverview(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	now := h.now().UTC()
	month, ok := queryInt(c, "month", int(now.Month()))
	if !ok {
		return
	}
	year, ok := queryInt(c, "year", now.Year())
	if !ok {
		return
	}
	overview, err := h.queries.BudgetOverview(c.Request.Context(), cqrs.BudgetQuery{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		Month:            month,
		Year:             year,
	})
	respond(c, overview, err)
}

func (h *ProfileHandler) CategoryBreakdown(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	month, ok := queryInt(c, "month", 0)
	if !ok {
		return
	}
	year, ok := queryInt(c, "year", 0)
	if !ok {
		return
	}
	totals, err := h.queries.CategoryBreakdown(c.Request.Context(), cqrs.CategoryQuery{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		Month:            month,
		Year:             year,
	})
	respond(c, totals, err)
}

func (h *ProfileHandler) MonthlyTrend(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	year, ok := queryInt(c, "year", 0)
	if !ok {
		return
	}
	trend, err := h.queries.MonthlyTrend(c.Request.Context(), cqrs.TrendQuery{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
		Year:             year,
	})
	respond(c, trend, err)
}

func (h *ProfileHandler) SavingsProgress(c *gin.Context) {
	requester, _ := middleware.GetUserID(c)
	progress, err := h.queries.SavingsProgress(c.Request.Context(), cqrs.GetProfileQuery{
		UserID:           c.Param("userId"),
		RequestingUserID: requester,
	})
	respond(c, progress, err)
}

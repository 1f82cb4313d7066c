package query

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/vasusumeet/Personal-Finance-App/profile-service/internal/report"
	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

const MaxPageLimit = 100

// ProfileReader serves the read model, normally Redis with a PostgreSQL
// fallback.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*models.FinancialProfile, error)
}

type ProfileQueryService struct {
	reader ProfileReader
	logger *slog.Logger
}

func NewProfileQueryService(reader ProfileReader, logger *slog.Logger) *ProfileQueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileQueryService{reader: reader, logger: logger}
}

// load fetches a profile after the ownership check.
func (s *ProfileQueryService) load(ctx context.Context, userID, requestingUserID string) (*models.FinancialProfile, error) {
	if userID == "" || userID != requestingUserID {
		return nil, apperr.Forbidden("You can only access your own data")
	}
	p, err := s.reader.GetProfile(ctx, userID)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "profile read failed", "user_id", userID, "error", err)
		return nil, apperr.Persistence("Error fetching user data", err)
	}
	return p, nil
}

func (s *ProfileQueryService) GetProfile(ctx context.Context, q cqrs.GetProfileQuery) (*models.FinancialProfile, error) {
	return s.load(ctx, q.UserID, q.RequestingUserID)
}

func (s *ProfileQueryService) ListExpenses(ctx context.Context, q cqrs.ListEntriesQuery) (*models.Page[models.Expense], error) {
	if err := validatePage(q.Page, q.Limit); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, q.UserID, q.RequestingUserID)
	if err != nil {
		return nil, err
	}
	return paginate(p.Expenses, func(e models.Expense) time.Time { return e.Date }, q.Page, q.Limit), nil
}

// ListIncome is the income history, paged the same way as expenses.
func (s *ProfileQueryService) ListIncome(ctx context.Context, q cqrs.ListEntriesQuery) (*models.Page[models.IncomeEntry], error) {
	if err := validatePage(q.Page, q.Limit); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, q.UserID, q.RequestingUserID)
	if err != nil {
		return nil, err
	}
	return paginate(p.Income, func(in models.IncomeEntry) time.Time { return in.Date }, q.Page, q.Limit), nil
}

func (s *ProfileQueryService) BudgetOverview(ctx context.Context, q cqrs.BudgetQuery) (*models.BudgetOverview, error) {
	if q.Month < 1 || q.Month > 12 {
		return nil, apperr.Validation("Month must be between 1 and 12")
	}
	if q.Year < 1 {
		return nil, apperr.Validation("Year must be a positive number")
	}
	p, err := s.load(ctx, q.UserID, q.RequestingUserID)
	if err != nil {
		return nil, err
	}
	overview := report.BudgetOverview(p, q.Month, q.Year)
	return &overview, nil
}

func (s *ProfileQueryService) CategoryBreakdown(ctx context.Context, q cqrs.CategoryQuery) ([]models.CategoryTotal, error) {
	if q.Month < 0 || q.Month > 12 {
		return nil, apperr.Validation("Month must be between 1 and 12")
	}
	p, err := s.load(ctx, q.UserID, q.RequestingUserID)
	if err != nil {
		return nil, err
	}
	return report.ExpensesByCategory(p, q.Month, q.Year), nil
}

func (s *ProfileQueryService) MonthlyTrend(ctx context.Context, q cqrs.TrendQuery) ([]models.TrendPoint, error) {
	p, err := s.load(ctx, q.UserID, q.RequestingUserID)
	if err != nil {
		return nil, err
	}
	return report.MonthlyTrend(p, q.Year), nil
}

func (s *ProfileQueryService) SavingsProgress(ctx context.Context, q cqrs.GetProfileQuery) (*models.SavingsProgress, error) {
	p, err := s.load(ctx, q.UserID, q.RequestingUserID)
	if err != nil {
		return nil, err
	}
	progress := report.SavingsProgress(p)
	return &progress, nil
}

func validatePage(page, limit int) error {
	if page < 1 {
		return apperr.Validation("Page must be at least 1")
	}
	if limit < 1 || limit > MaxPageLimit {
		return apperr.Validation("Limit must be between 1 and 100")
	}
	return nil
}

// paginate sorts a copy of items newest first and returns the requested
// page. The whole list is held in memory, which is fine for one user's
// history.
func paginate[T any](items []T, date func(T) time.Time, page, limit int) *models.Page[T] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return date(b).Compare(date(a))
	})

	total := len(sorted)
	out := &models.Page[T]{
		Items:      []T{},
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
	skip := (page - 1) * limit
	if skip >= total {
		return out
	}
	end := min(skip+limit, total)
	out.Items = append(out.Items, sorted[skip:end]...)
	return out
}

package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vasusumeet/Personal-Finance-App/profile-service/internal/aggregate"
	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/events"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	"github.com/vasusumeet/Personal-Finance-App/shared/retry"
)

// ProfileStore is the write store. Save and Create report a lost race as an
// apperr conflict.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.FinancialProfile, error)
	Create(ctx context.Context, p *models.FinancialProfile) error
	Save(ctx context.Context, p *models.FinancialProfile) error
}

type ProfileCache interface {
	CacheProfile(ctx context.Context, p *models.FinancialProfile)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type Options struct {
	// ConflictRetryAttempts bounds how often a mutation is replayed after a
	// version conflict.
	ConflictRetryAttempts int
	InitialBackoff        time.Duration
	MaxBackoff            time.Duration
}

// ProfileCommandService applies every profile mutation as load, apply on a
// copy, conditional save. Version conflicts replay the whole cycle.
type ProfileCommandService struct {
	store     ProfileStore
	cache     ProfileCache
	publisher EventPublisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

func NewProfileCommandService(store ProfileStore, cache ProfileCache, publisher EventPublisher, logger *slog.Logger, opts Options) *ProfileCommandService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConflictRetryAttempts <= 0 {
		opts.ConflictRetryAttempts = 5
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 20 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 250 * time.Millisecond
	}
	return &ProfileCommandService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// change describes what a mutation did, for the event published afterwards.
type change struct {
	eventType string
	entityID  string
	amount    *decimal.Decimal
}

type mutation func(p *models.FinancialProfile, now time.Time) (change, error)

func checkOwner(userID, requestingUserID string) error {
	if userID == "" || userID != requestingUserID {
		return apperr.Forbidden("You can only access your own data")
	}
	return nil
}

func (s *ProfileCommandService) mutate(ctx context.Context, userID, requestingUserID string, createIfMissing bool, username string, apply mutation) (*models.FinancialProfile, error) {
	if err := checkOwner(userID, requestingUserID); err != nil {
		return nil, err
	}

	var (
		saved *models.FinancialProfile
		ch    change
	)
	err := retry.Do(ctx, retry.Options{
		MaxAttempts:  s.opts.ConflictRetryAttempts,
		InitialDelay: s.opts.InitialBackoff,
		MaxDelay:     s.opts.MaxBackoff,
		Multiplier:   2,
		ShouldRetry:  func(err error) bool { return errors.Is(err, apperr.ErrConflict) },
		Logger:       s.logger.With("user_id", userID),
	}, func(ctx context.Context) error {
		now := s.now().UTC()

		creating := false
		current, err := s.store.Get(ctx, userID)
		if err != nil {
			if !createIfMissing || !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			current = models.NewFinancialProfile(userID, username, now)
			creating = true
		}

		next := current.Clone()
		c, err := apply(next, now)
		if err != nil {
			return err
		}
		next.UpdatedAt = now

		if creating {
			err = s.store.Create(ctx, next)
		} else {
			err = s.store.Save(ctx, next)
		}
		if err != nil {
			return err
		}
		saved, ch = next, c
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, userID, err)
	}

	s.cache.CacheProfile(ctx, saved)
	s.publish(ctx, saved, ch)
	return saved, nil
}

// classify passes domain errors through and turns anything else into a
// persistence error with a user-safe message.
func (s *ProfileCommandService) classify(ctx context.Context, userID string, err error) error {
	if errors.Is(err, apperr.ErrConflict) {
		s.logger.WarnContext(ctx, "profile update gave up after conflicts", "user_id", userID, "error", err)
		return err
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.ErrorContext(ctx, "profile store failure", "user_id", userID, "error", err)
	return apperr.Persistence("Error updating user data", err)
}

func (s *ProfileCommandService) publish(ctx context.Context, p *models.FinancialProfile, ch change) {
	if s.publisher == nil || ch.eventType == "" {
		return
	}
	if err := s.publisher.Publish(ctx, events.ProfileEventsStream, ch.eventType, events.ProfileChangedEvent{
		UserID:   p.UserID,
		EntityID: ch.entityID,
		Amount:   ch.amount,
		Version:  p.Version,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish profile event", "event", ch.eventType, "user_id", p.UserID, "error", err)
	}
}

// UpsertSalary overwrites salary and recurring salary, creating the profile
// if signup somehow did not.
func (s *ProfileCommandService) UpsertSalary(ctx context.Context, cmd cqrs.UpsertSalaryCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, true, cmd.Username, func(p *models.FinancialProfile, _ time.Time) (change, error) {
		if err := aggregate.SetSalary(p, cmd.Salary, cmd.RecurringSalary, cmd.SalaryCreditDay); err != nil {
			return change{}, err
		}
		return change{eventType: events.SalaryUpdated, amount: &cmd.Salary}, nil
	})
}

func (s *ProfileCommandService) AddExpense(ctx context.Context, cmd cqrs.AddEntryCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, now time.Time) (change, error) {
		e, err := aggregate.AddExpense(p, cmd.Description, cmd.Amount, cmd.Date, cmd.Category, now)
		if err != nil {
			return change{}, err
		}
		return change{eventType: events.ExpenseAdded, entityID: e.ID, amount: &e.Amount}, nil
	})
}

// EditExpense returns the expense after the update rather than the profile.
func (s *ProfileCommandService) EditExpense(ctx context.Context, cmd cqrs.EditExpenseCommand) (*models.Expense, error) {
	var updated models.Expense
	_, err := s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		e, err := aggregate.EditExpense(p, cmd.ExpenseID, aggregate.ExpensePatch{
			Description: cmd.Description,
			Amount:      cmd.Amount,
			Date:        cmd.Date,
			Category:    cmd.Category,
		})
		if err != nil {
			return change{}, err
		}
		updated = e
		return change{eventType: events.ExpenseUpdated, entityID: e.ID, amount: &e.Amount}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProfileCommandService) DeleteExpense(ctx context.Context, cmd cqrs.DeleteEntryCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		if err := aggregate.DeleteExpense(p, cmd.EntryID); err != nil {
			return change{}, err
		}
		return change{eventType: events.ExpenseDeleted, entityID: cmd.EntryID}, nil
	})
}

func (s *ProfileCommandService) AddIncome(ctx context.Context, cmd cqrs.AddEntryCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, now time.Time) (change, error) {
		in, err := aggregate.AddIncome(p, cmd.Description, cmd.Amount, cmd.Date, cmd.Category, now)
		if err != nil {
			return change{}, err
		}
		return change{eventType: events.IncomeAdded, entityID: in.ID, amount: &in.Amount}, nil
	})
}

func (s *ProfileCommandService) DeleteIncome(ctx context.Context, cmd cqrs.DeleteEntryCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		if err := aggregate.DeleteIncome(p, cmd.EntryID); err != nil {
			return change{}, err
		}
		return change{eventType: events.IncomeDeleted, entityID: cmd.EntryID}, nil
	})
}

func (s *ProfileCommandService) AddSavingsGoal(ctx context.Context, cmd cqrs.AddSavingsGoalCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		g, err := aggregate.AddSavingsGoal(p, cmd.GoalName, cmd.TargetAmount, cmd.CurrentAmount, cmd.Deadline)
		if err != nil {
			return change{}, err
		}
		return change{eventType: events.GoalAdded, entityID: g.ID, amount: &g.TargetAmount}, nil
	})
}

func (s *ProfileCommandService) EditSavingsGoal(ctx context.Context, cmd cqrs.EditSavingsGoalCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		g, err := aggregate.EditSavingsGoal(p, cmd.GoalID, aggregate.GoalPatch{
			GoalName:         cmd.GoalName,
			TargetAmount:     cmd.TargetAmount,
			CurrentAmount:    cmd.CurrentAmount,
			Deadline:         cmd.Deadline,
			DeductFromSalary: cmd.DeductFromSalary,
		})
		if err != nil {
			return change{}, err
		}
		return change{eventType: events.GoalUpdated, entityID: g.ID, amount: cmd.CurrentAmount}, nil
	})
}

func (s *ProfileCommandService) DeleteSavingsGoal(ctx context.Context, cmd cqrs.DeleteEntryCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		if err := aggregate.DeleteSavingsGoal(p, cmd.EntryID); err != nil {
			return change{}, err
		}
		return change{eventType: events.GoalDeleted, entityID: cmd.EntryID}, nil
	})
}

func (s *ProfileCommandService) Contribute(ctx context.Context, cmd cqrs.ContributeCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, _ time.Time) (change, error) {
		g, source, err := aggregate.Contribute(p, cmd.GoalID, cmd.Amount)
		if err != nil {
			return change{}, err
		}
		s.logger.DebugContext(ctx, "goal contribution", "user_id", p.UserID, "goal_id", g.ID, "source", source)
		return change{eventType: events.GoalContributed, entityID: g.ID, amount: &cmd.Amount}, nil
	})
}

// Settle runs end-of-month settlement. It is not safe to run twice for the
// same month; scheduling it is the caller's job.
func (s *ProfileCommandService) Settle(ctx context.Context, cmd cqrs.SettleCommand) (*models.FinancialProfile, error) {
	return s.mutate(ctx, cmd.UserID, cmd.RequestingUserID, false, "", func(p *models.FinancialProfile, now time.Time) (change, error) {
		record := aggregate.Settle(p, now)
		return change{eventType: events.SettlementCompleted, entityID: record.ID, amount: &record.Amount}, nil
	})
}

// HandleUserEvent is the Redis stream subscriber handler. A new signup warms
// the profile view so the first dashboard load is served from cache.
func (s *ProfileCommandService) HandleUserEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.UserCreated {
		return nil
	}
	var data events.UserCreatedEvent
	if err := event.Decode(&data); err != nil {
		// a payload that cannot be decoded will never succeed; ack it
		s.logger.ErrorContext(ctx, "discarding malformed user.created event", "error", err)
		return nil
	}

	p, err := s.store.Get(ctx, data.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.WarnContext(ctx, "no profile for new user", "user_id", data.UserID)
			return nil
		}
		return err
	}
	s.cache.CacheProfile(ctx, p)
	s.logger.DebugContext(ctx, "profile view warmed", "user_id", data.UserID)
	return nil
}

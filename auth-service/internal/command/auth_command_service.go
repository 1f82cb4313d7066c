package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/events"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	"github.com/vasusumeet/Personal-Finance-App/shared/utils"
)

type CredentialWriter interface {
	CreateWithProfile(ctx context.Context, cred *models.Credential, profile *models.FinancialProfile) error
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AuthCommandService creates credentials. Login lives on the query side.
type AuthCommandService struct {
	writer    CredentialWriter
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthCommandService(writer CredentialWriter, publisher EventPublisher, logger *slog.Logger) *AuthCommandService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthCommandService{
		writer:    writer,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthCommandService) Signup(ctx context.Context, cmd cqrs.SignupCommand) (*models.UserView, error) {
	username := strings.TrimSpace(cmd.Username)
	email := strings.TrimSpace(cmd.Email)
	if username == "" || email == "" || cmd.Password == "" {
		return nil, apperr.Validation("Enter all fields: Username, Email, and Password")
	}

	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, apperr.Persistence("Failed to create user", err)
	}

	now := s.now().UTC()
	cred := &models.Credential{
		ID:           utils.GenerateID(utils.PrefixUser),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	profile := models.NewFinancialProfile(cred.ID, cred.Username, now)
	profile.Version = 1

	if err := s.writer.CreateWithProfile(ctx, cred, profile); err != nil {
		s.logger.ErrorContext(ctx, "signup failed", "username", username, "error", err)
		return nil, apperr.Persistence("Failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", cred.ID)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, events.UserCreatedEvent{
			UserID:   cred.ID,
			Username: cred.Username,
			Email:    cred.Email,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to publish user.created", "user_id", cred.ID, "error", err)
		}
	}

	return models.NewUserView(cred), nil
}

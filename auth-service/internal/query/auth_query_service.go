package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	"github.com/vasusumeet/Personal-Finance-App/shared/utils"
)

type CredentialReader interface {
	GetByIdentifier(ctx context.Context, identifier string) (*models.Credential, error)
}

type TokenIssuer interface {
	Issue(userID, username, email string) (string, error)
}

type LoginResult struct {
	Token string
	User  *models.UserView
}

const invalidCredentials = "Invalid credentials"

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// A lookup miss still pays for one bcrypt comparison so response time does
// not reveal whether the identifier exists.
func compareAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	utils.CheckPassword(password, dummyHash)
}

// AuthQueryService verifies credentials and issues tokens. It never writes.
type AuthQueryService struct {
	reader CredentialReader
	issuer TokenIssuer
	logger *slog.Logger
}

func NewAuthQueryService(reader CredentialReader, issuer TokenIssuer, logger *slog.Logger) *AuthQueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthQueryService{reader: reader, issuer: issuer, logger: logger}
}

// Login accepts a username or an email as the identifier. Unknown identifiers
// and wrong passwords fail identically.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*LoginResult, error) {
	identifier := strings.TrimSpace(cmd.Identifier)
	if identifier == "" || cmd.Password == "" {
		return nil, apperr.Validation("Enter both identifier (username/email) and password")
	}

	cred, err := s.reader.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			compareAgainstDummy(cmd.Password)
			s.logger.InfoContext(ctx, "login rejected", "reason", "unknown identifier")
			return nil, apperr.Authentication(invalidCredentials)
		}
		return nil, apperr.Persistence("Failed to log in", err)
	}

	if !utils.CheckPassword(cmd.Password, cred.PasswordHash) {
		s.logger.InfoContext(ctx, "login rejected", "reason", "password mismatch", "user_id", cred.ID)
		return nil, apperr.Authentication(invalidCredentials)
	}

	signed, err := s.issuer.Issue(cred.ID, cred.Username, cred.Email)
	if err != nil {
		return nil, apperr.Persistence("Failed to log in", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", cred.ID)
	return &LoginResult{Token: signed, User: models.NewUserView(cred)}, nil
}

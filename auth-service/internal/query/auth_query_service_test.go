package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	"github.com/vasusumeet/Personal-Finance-App/shared/token"
	"github.com/vasusumeet/Personal-Finance-App/shared/utils"
)

type fakeReader struct {
	creds []*models.Credential
	err   error
}

func (f *fakeReader) GetByIdentifier(_ context.Context, identifier string) (*models.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.creds {
		if c.Username == identifier || c.Email == identifier {
			return c, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func newService(t *testing.T) (*AuthQueryService, *token.Manager) {
	t.Helper()
	hash, err := utils.HashPassword("securepass123")
	require.NoError(t, err)

	reader := &fakeReader{creds: []*models.Credential{{
		ID: "usr-abc", Username: "alice", Email: "alice@example.com", PasswordHash: hash,
	}}}
	manager := token.NewManager("0123456789abcdef0123456789abcdef", time.Hour)
	return NewAuthQueryService(reader, manager, slog.New(slog.NewTextHandler(io.Discard, nil))), manager
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	svc, manager := newService(t)

	for _, identifier := range []string{"alice", "alice@example.com"} {
		result, err := svc.Login(context.Background(), cqrs.LoginCommand{Identifier: identifier, Password: "securepass123"})
		require.NoError(t, err, identifier)
		assert.Equal(t, "usr-abc", result.User.ID)

		claims, err := manager.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "usr-abc", claims.UserID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newService(t)

	_, unknown := svc.Login(context.Background(), cqrs.LoginCommand{Identifier: "bob", Password: "securepass123"})
	_, wrong := svc.Login(context.Background(), cqrs.LoginCommand{Identifier: "alice", Password: "nope"})

	assert.ErrorIs(t, unknown, apperr.ErrAuthentication)
	assert.ErrorIs(t, wrong, apperr.ErrAuthentication)
	assert.Equal(t, apperr.Message(unknown, ""), apperr.Message(wrong, ""))
}

func TestLoginValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Login(context.Background(), cqrs.LoginCommand{Identifier: "", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Login(context.Background(), cqrs.LoginCommand{Identifier: "alice"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginStoreFailure(t *testing.T) {
	svc := NewAuthQueryService(&fakeReader{err: errors.New("connection refused")}, token.NewManager("0123456789abcdef0123456789abcdef", time.Hour), nil)

	_, err := svc.Login(context.Background(), cqrs.LoginCommand{Identifier: "alice", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}

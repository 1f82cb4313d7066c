package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/events"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	"github.com/vasusumeet/Personal-Finance-App/shared/utils"
)

type fakeWriter struct {
	creds    []*models.Credential
	profiles []*models.FinancialProfile
	err      error
}

func (f *fakeWriter) CreateWithProfile(_ context.Context, cred *models.Credential, profile *models.FinancialProfile) error {
	if f.err != nil {
		return f.err
	}
	f.creds = append(f.creds, cred)
	f.profiles = append(f.profiles, profile)
	return nil
}

type published struct {
	stream, eventType string
	data              any
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	f.events = append(f.events, published{stream, eventType, data})
	return f.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSignupCreatesCredentialAndZeroedProfile(t *testing.T) {
	writer := &fakeWriter{}
	pub := &fakePublisher{}
	svc := NewAuthCommandService(writer, pub, discard())

	user, err := svc.Signup(context.Background(), cqrs.SignupCommand{
		Username: "alice", Email: "alice@example.com", Password: "pw",
	})
	require.NoError(t, err)

	require.Len(t, writer.creds, 1)
	require.Len(t, writer.profiles, 1)
	cred, profile := writer.creds[0], writer.profiles[0]

	assert.Equal(t, user.ID, cred.ID)
	assert.Equal(t, cred.ID, profile.UserID)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, profile.Salary.IsZero())
	assert.True(t, profile.RecurringSalary.IsZero())
	assert.Empty(t, profile.Expenses)
	assert.Empty(t, profile.Income)
	assert.Empty(t, profile.SavingsGoals)
	assert.NotEqual(t, "pw", cred.PasswordHash)
	assert.True(t, utils.CheckPassword("pw", cred.PasswordHash))

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.UserEventsStream, pub.events[0].stream)
	assert.Equal(t, events.UserCreated, pub.events[0].eventType)
}

func TestSignupValidation(t *testing.T) {
	svc := NewAuthCommandService(&fakeWriter{}, &fakePublisher{}, discard())

	for _, cmd := range []cqrs.SignupCommand{
		{Email: "a@b.c", Password: "pw"},
		{Username: "alice", Password: "pw"},
		{Username: "alice", Email: "a@b.c"},
		{Username: "   ", Email: "a@b.c", Password: "pw"},
	} {
		_, err := svc.Signup(context.Background(), cmd)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestSignupStorageFailureIsPersistenceError(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewAuthCommandService(&fakeWriter{err: errors.New("duplicate key value")}, pub, discard())

	_, err := svc.Signup(context.Background(), cqrs.SignupCommand{Username: "alice", Email: "a@b.c", Password: "pw"})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Equal(t, "Failed to create user", apperr.Message(err, ""))
	assert.Empty(t, pub.events)
}

func TestSignupSurvivesPublishFailure(t *testing.T) {
	svc := NewAuthCommandService(&fakeWriter{}, &fakePublisher{err: errors.New("redis down")}, discard())

	_, err := svc.Signup(context.Background(), cqrs.SignupCommand{Username: "alice", Email: "a@b.c", Password: "pw"})
	assert.NoError(t, err)
}

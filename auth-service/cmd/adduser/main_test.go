package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasusumeet/Personal-Finance-App/auth-service/internal/repository"
	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

type recorder struct {
	got    []cqrs.SignupCommand
	err    error
	closed bool
}

func (r *recorder) open(context.Context) (signupFunc, func(), error) {
	signup := func(_ context.Context, cmd cqrs.SignupCommand) (*models.UserView, error) {
		r.got = append(r.got, cmd)
		if r.err != nil {
			return nil, r.err
		}
		return &models.UserView{ID: "usr-abc", Username: cmd.Username, Email: cmd.Email}, nil
	}
	return signup, func() { r.closed = true }, nil
}

func TestRun_Success(t *testing.T) {
	rec := &recorder{}
	stdout := new(bytes.Buffer)

	err := run(context.Background(), []string{"-user", "alice", "-email", "alice@example.com", "-password", "secret"},
		new(bytes.Buffer), stdout, new(bytes.Buffer), rec.open)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "User alice created successfully with ID usr-abc")
	require.Len(t, rec.got, 1)
	assert.Equal(t, "secret", rec.got[0].Password)
	assert.True(t, rec.closed)
}

func TestRun_InteractivePassword(t *testing.T) {
	rec := &recorder{}
	stdout := new(bytes.Buffer)

	err := run(context.Background(), []string{"-user", "alice", "-email", "alice@example.com"},
		bytes.NewBufferString("typed_secret\n"), stdout, new(bytes.Buffer), rec.open)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Equal(t, "typed_secret", rec.got[0].Password)
}

func TestRun_InteractivePassword_Empty(t *testing.T) {
	rec := &recorder{}

	err := run(context.Background(), []string{"-user", "alice", "-email", "alice@example.com"},
		bytes.NewBufferString("\n"), new(bytes.Buffer), new(bytes.Buffer), rec.open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
	assert.Empty(t, rec.got)
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)

	err := run(context.Background(), []string{"-password", "secret"},
		new(bytes.Buffer), stdout, new(bytes.Buffer), (&recorder{}).open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: user, email")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_DuplicateUser(t *testing.T) {
	dup := apperr.Persistence("Failed to create user", fmt.Errorf("%w: pq", repository.ErrDuplicateCredential))
	rec := &recorder{err: dup}

	err := run(context.Background(), []string{"-user", "alice", "-email", "a@b.c", "-password", "pw"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), rec.open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_OpenFailure(t *testing.T) {
	open := func(context.Context) (signupFunc, func(), error) {
		return nil, nil, errors.New("failed to open database: refused")
	}

	err := run(context.Background(), []string{"-user", "alice", "-email", "a@b.c", "-password", "pw"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run(context.Background(), []string{"-invalid"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer), (&recorder{}).open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined")
}

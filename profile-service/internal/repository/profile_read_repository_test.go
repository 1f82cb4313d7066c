package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
)

func newReadRepo(t *testing.T, client goredis.Cmdable) (*ProfileReadRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewProfileReadRepository(db, client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func newMiniClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// noScripting stands in for a Redis deployment with scripting disabled.
type noScripting struct {
	goredis.Cmdable
}

func (noScripting) EvalSha(context.Context, string, []string, ...any) *goredis.Cmd {
	return goredis.NewCmdResult(nil, errors.New("ERR unknown command 'evalsha'"))
}

func (noScripting) Eval(context.Context, string, []string, ...any) *goredis.Cmd {
	return goredis.NewCmdResult(nil, errors.New("ERR unknown command 'eval'"))
}

func TestColdReadLoadsFromStoreThenServesCache(t *testing.T) {
	client, mr := newMiniClient(t)
	repo, mock := newReadRepo(t, client)

	rows := sqlmock.NewRows([]string{"document", "version"}).
		AddRow([]byte(`{"userId":"usr-1","username":"alice","salary":40}`), int64(3))
	mock.ExpectQuery(selectProfile).WithArgs("usr-1").WillReturnRows(rows)

	p, err := repo.GetProfile(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Version)
	assert.True(t, mr.Exists(profileViewKeyPrefix+"usr-1"))

	// no second query is expected; sqlmock fails the read if one is issued
	again, err := repo.GetProfile(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), again.Version)
	assert.Equal(t, "40", again.Salary.String())
	assert.NotNil(t, again.Expenses)
}

func TestColdReadMissingProfile(t *testing.T) {
	client, mr := newMiniClient(t)
	repo, mock := newReadRepo(t, client)

	mock.ExpectQuery(selectProfile).WithArgs("usr-1").WillReturnRows(sqlmock.NewRows([]string{"document", "version"}))

	_, err := repo.GetProfile(context.Background(), "usr-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, mr.Exists(profileViewKeyPrefix+"usr-1"))
}

// A reader that loaded v2 from the store must not replace v3, which a writer
// cached in the meantime.
func TestCacheProfileIgnoresOlderVersion(t *testing.T) {
	client, _ := newMiniClient(t)
	repo, _ := newReadRepo(t, client)
	ctx := context.Background()

	newer := storedProfile(3)
	newer.Username = "after"
	older := storedProfile(2)
	older.Username = "before"

	repo.CacheProfile(ctx, newer)
	repo.CacheProfile(ctx, older)

	got, err := repo.GetProfile(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, "after", got.Username)
}

func TestCacheProfileDropsEntryWhenGuardedWriteFails(t *testing.T) {
	client, mr := newMiniClient(t)
	repo, mock := newReadRepo(t, noScripting{Cmdable: client})
	ctx := context.Background()

	require.NoError(t, mr.Set(profileViewKeyPrefix+"usr-1", `{"userId":"usr-1","version":1}`))

	repo.CacheProfile(ctx, storedProfile(2))
	assert.False(t, mr.Exists(profileViewKeyPrefix+"usr-1"))

	rows := sqlmock.NewRows([]string{"document", "version"}).
		AddRow([]byte(`{"userId":"usr-1"}`), int64(2))
	mock.ExpectQuery(selectProfile).WithArgs("usr-1").WillReturnRows(rows)

	got, err := repo.GetProfile(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestInvalidateProfile(t *testing.T) {
	client, mr := newMiniClient(t)
	repo, _ := newReadRepo(t, client)

	repo.CacheProfile(context.Background(), storedProfile(1))
	require.True(t, mr.Exists(profileViewKeyPrefix+"usr-1"))

	repo.InvalidateProfile(context.Background(), "usr-1")
	assert.False(t, mr.Exists(profileViewKeyPrefix+"usr-1"))
}

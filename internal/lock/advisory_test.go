package lock

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockRows(v interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"result"}).AddRow(v)
}

func TestAcquireLock(t *testing.T) {
	tests := []struct {
		name     string
		result   interface{}
		queryErr error
		want     bool
		wantErr  bool
		wantHeld bool
	}{
		{name: "acquired", result: int64(1), want: true, wantHeld: true},
		{name: "timeout", result: int64(0), want: false},
		{name: "null result", result: nil, wantErr: true},
		{name: "unexpected value", result: int64(7), wantErr: true},
		{name: "query error", queryErr: errors.New("connection lost"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			exp := mock.ExpectQuery(`SELECT GET_LOCK\(\?, \?\)`).
				WithArgs("pagetable:seed:people", TimeoutShort)
			if tt.queryErr != nil {
				exp.WillReturnError(tt.queryErr)
			} else {
				exp.WillReturnRows(lockRows(tt.result))
			}

			l := NewSeedLock(db, "people")
			got, err := l.AcquireLock(context.Background(), TimeoutShort)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantHeld, l.IsHeld())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAcquireLock_AlreadyHeld(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(lockRows(int64(1)))

	l := NewAdvisoryLock(db, "held")
	ok, err := l.AcquireLock(context.Background(), TimeoutImmediate)
	require.NoError(t, err)
	require.True(t, ok)

	// Second acquire does not hit the database.
	ok, err = l.AcquireLock(context.Background(), TimeoutImmediate)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	l := NewAdvisoryLock(db, "release-me")

	// Not held: no query.
	released, err := l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.False(t, released)

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(lockRows(int64(1)))
	mock.ExpectQuery(`SELECT RELEASE_LOCK\(\?\)`).WithArgs("release-me").WillReturnRows(lockRows(int64(1)))

	_, err = l.AcquireLock(context.Background(), TimeoutImmediate)
	require.NoError(t, err)

	released, err = l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseLock_NullResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(lockRows(int64(1)))
	mock.ExpectQuery(`SELECT RELEASE_LOCK`).WillReturnRows(lockRows(nil))

	l := NewAdvisoryLock(db, "gone")
	_, err = l.AcquireLock(context.Background(), TimeoutImmediate)
	require.NoError(t, err)

	_, err = l.ReleaseLock(context.Background())
	assert.Error(t, err)
	assert.False(t, l.IsHeld())
}

func TestWithLock(t *testing.T) {
	t.Run("runs fn and releases", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(lockRows(int64(1)))
		mock.ExpectQuery(`SELECT RELEASE_LOCK`).WillReturnRows(lockRows(int64(1)))

		called := false
		l := NewSeedLock(db, "people")
		err = l.WithLock(context.Background(), TimeoutMedium, func() error {
			called = true
			assert.True(t, l.IsHeld())
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.False(t, l.IsHeld())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns fn error after release", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(lockRows(int64(1)))
		mock.ExpectQuery(`SELECT RELEASE_LOCK`).WillReturnRows(lockRows(int64(1)))

		boom := errors.New("seed failed")
		err = NewSeedLock(db, "people").WithLock(context.Background(), TimeoutMedium, func() error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("timeout skips fn", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnRows(lockRows(int64(0)))

		called := false
		err = NewSeedLock(db, "people").WithLock(context.Background(), TimeoutImmediate, func() error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrLockTimeout)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGenerateSeedLockName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"listing_relations", "pagetable:seed:listing_relations"},
		{"people-2", "pagetable:seed:people-2"},
		{"bad;name", "pagetable:seed:bad_name"},
		{"schema.table", "pagetable:seed:schema_table"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateSeedLockName(tt.table))
	}
}

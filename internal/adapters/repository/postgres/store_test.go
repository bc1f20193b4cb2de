package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/curriculum/internal/adapters/repository"
	"github.com/okian/curriculum/internal/domain/progress"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, New(mock)
}

func TestStore_Migrate(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectExec(migrationUp).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save(t *testing.T) {
	mock, store := newMock(t)
	p := progress.Map{}.
		SetStatus("340102", progress.Regular).
		SetStatus("340101", progress.Approved).
		SetGrade("340101", progress.Grade(9))

	mock.ExpectBegin()
	mock.ExpectExec(sqlUpsertSession).WithArgs("s1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(sqlClearEntries).WithArgs("s1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(sqlInsertEntry).
		WithArgs("s1", "340101", "APROBADA", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(sqlInsertEntry).
		WithArgs("s1", "340102", "REGULAR", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), "s1", p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveEmpty(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(sqlUpsertSession).WithArgs("s1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(sqlClearEntries).WithArgs("s1").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), "s1", progress.Map{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRollsBack(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(sqlUpsertSession).WithArgs("s1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(sqlClearEntries).WithArgs("s1").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), "s1", progress.Map{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveInvalidSession(t *testing.T) {
	mock, store := newMock(t)

	err := store.Save(context.Background(), "", progress.Map{})
	assert.ErrorIs(t, err, repository.ErrInvalidSession)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(sqlSessionExists).WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(sqlLoadEntries).WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"course_code", "status", "grade"}).
			AddRow("340101", "APROBADA", progress.Grade(9)).
			AddRow("340102", "REGULAR", (*float64)(nil)))

	got, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, progress.Approved, got.StatusOf("340101"))
	assert.Equal(t, progress.Regular, got.StatusOf("340102"))

	g, ok := got.GradeOf("340101")
	assert.True(t, ok)
	assert.Equal(t, 9.0, g)
	_, ok = got.GradeOf("340102")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadEmptySession(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(sqlSessionExists).WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(sqlLoadEntries).WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"course_code", "status", "grade"}))

	got, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadNotFound(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectQuery(sqlSessionExists).WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := store.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteAndCount(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectExec(sqlDelete).WithArgs("s1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(sqlCount).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(sqlCount).WillReturnError(errors.New("down"))

	require.NoError(t, store.Delete(context.Background(), "s1"))
	assert.Equal(t, 4, store.Count(context.Background()))
	assert.Equal(t, 0, store.Count(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

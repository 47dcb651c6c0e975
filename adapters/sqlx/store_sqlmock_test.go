package sqlx_test

import (
	"context"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "rewardkit/adapters/sqlx"
	"rewardkit/core"
	"rewardkit/user"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	store := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return store, mock, cleanup
}

func TestSQLMock_Load_MissingUserIsEmpty(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT doc FROM reward_users`).
		WithArgs(core.UserID("ghost")).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	doc, err := store.Load(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, doc)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Load_DecodesDocument(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	raw, err := json.Marshal(user.Document{
		user.KeyName:        "steve",
		user.KeyDailyDayNum: 4,
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT doc FROM reward_users`).
		WithArgs(core.UserID("steve")).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(string(raw)))

	doc, err := store.Load(context.Background(), "steve")
	require.NoError(t, err)
	require.Equal(t, "steve", doc[user.KeyName])
	require.EqualValues(t, 4, doc[user.KeyDailyDayNum])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Save_Upsert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO reward_users`).
		WithArgs(core.UserID("steve"), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	doc := user.Document{user.KeyName: "steve", user.KeyMinutesPlayed: 90}
	require.NoError(t, store.Save(context.Background(), "steve", doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Delete(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM reward_users`).
		WithArgs(core.UserID("steve")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "steve"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Load_CorruptDocument(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT doc FROM reward_users`).
		WithArgs(core.UserID("steve")).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow("{not json"))

	_, err := store.Load(context.Background(), "steve")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

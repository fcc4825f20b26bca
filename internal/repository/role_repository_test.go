package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
)

func newRoleRepo(t *testing.T) (*RoleRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRoleRepo(db), mock
}

func roleRow(id uint64, name string, level int, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "level", "is_active", "created_at"}).
		AddRow(id, name, nil, level, active, time.Now())
}

func TestResolveNoAssignmentsIsBaseline(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectQuery("SELECT r.name, r.level").
		WithArgs(7).
		WillReturnError(sql.ErrNoRows)

	name, level, err := repo.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRoleName, name)
	assert.Equal(t, model.RoleLevelUser, level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveReturnsExactAssignedRole(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectQuery("SELECT r.name, r.level").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"name", "level"}).
			AddRow("super_admin", model.RoleLevelSuperAdmin))

	name, level, err := repo.Resolve(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "super_admin", name)
	assert.Equal(t, model.RoleLevelSuperAdmin, level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolvePicksHighestLevelDeterministically(t *testing.T) {
	repo, mock := newRoleRepo(t)
	// When stray duplicate assignments exist the projection itself picks
	// the winner; the repository must issue the ordered single-row query.
	mock.ExpectQuery(`ORDER BY r\.level DESC\s+LIMIT 1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"name", "level"}).
			AddRow("admin", model.RoleLevelAdmin))

	name, level, err := repo.Resolve(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "admin", name)
	assert.Equal(t, model.RoleLevelAdmin, level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignReplacesExistingAssignments(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectQuery("FROM roles WHERE id=").
		WithArgs(3).
		WillReturnRows(roleRow(3, "admin", model.RoleLevelAdmin, true))

	// Delete-then-insert inside one transaction: the user ends up with
	// exactly one assignment row no matter how many existed before.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_roles WHERE user_id=").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(9, 3, 1).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Assign(context.Background(), 9, 3, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignInactiveRoleConflicts(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectQuery("FROM roles WHERE id=").
		WithArgs(3).
		WillReturnRows(roleRow(3, "admin", model.RoleLevelAdmin, false))

	err := repo.Assign(context.Background(), 9, 3, 1)
	assert.ErrorIs(t, err, ErrConflict)
	// No transaction is opened for a refused assignment.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignUnknownRole(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectQuery("FROM roles WHERE id=").
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	err := repo.Assign(context.Background(), 9, 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignDropsToBaseline(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectExec("DELETE FROM user_roles WHERE user_id=").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Unassign(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupAssignmentsReportsRemovedRows(t *testing.T) {
	repo, mock := newRoleRepo(t)
	mock.ExpectExec("DELETE ur FROM user_roles ur").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DedupAssignments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

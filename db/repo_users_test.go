package db

import (
	"context"
	"testing"
	"time"

	"school_library_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "ana@school.test", models.RoleStudent)

	dup := &models.User{
		ID:    "11111111-1111-1111-1111-111111111111",
		Email: "Ana@School.test", FirstName: "Ana", LastName: "Again",
	}
	require.NoError(t, dup.SetPassword("Passw0rd"))
	assert.ErrorIs(t, r.CreateUser(ctx, dup), ErrEmailTaken)
}

func TestRoleReplacementLeavesSingleRole(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "ana@school.test", models.RoleStudent)

	u.Role = models.RoleTeacher
	require.NoError(t, r.UpdateUser(ctx, u))

	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, got.Role)
	assert.Equal(t, "Teacher", got.RoleName())
}

func TestListUsersFiltersAcrossFieldsAndRole(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	ana := &models.User{
		ID: "22222222-2222-2222-2222-222222222222", Email: "ana.petrova@school.test",
		FirstName: "Ana", LastName: "Petrova", Phone: "0888123456",
		Role:      models.RoleTeacher,
		BirthDate: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, ana.SetPassword("Passw0rd"))
	require.NoError(t, r.CreateUser(ctx, ana))
	seedUser(t, r, "boris@school.test", models.RoleStudent)

	for _, q := range []string{"ana", "PETROVA", "0888", "teacher", "15.06.1990"} {
		users, err := r.ListUsers(ctx, q)
		require.NoError(t, err)
		require.Len(t, users, 1, "query %q", q)
		assert.Equal(t, ana.ID, users[0].ID)
	}

	// Users without a role match the sentinel name.
	norole := &models.User{
		ID: "33333333-3333-3333-3333-333333333333", Email: "norole@school.test",
		FirstName: "No", LastName: "Role",
	}
	require.NoError(t, norole.SetPassword("Passw0rd"))
	require.NoError(t, r.CreateUser(ctx, norole))

	users, err := r.ListUsers(ctx, "no role")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, norole.ID, users[0].ID)
}

func TestUpdateUserVanishedRowReportsNotFound(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "ana@school.test", models.RoleStudent)

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	// The write against the stale struct must report the missing row, not
	// re-insert the deleted account.
	u.FirstName = "Edited"
	assert.ErrorIs(t, r.UpdateUser(ctx, u), ErrNotFound)

	_, err := r.FindUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserNotFound(t *testing.T) {
	r := newTestRepo(t)
	assert.ErrorIs(t, r.DeleteUser(context.Background(), "missing"), ErrNotFound)
}

func TestDeleteUserKeepsHistoryRows(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "INV1", "Dune", "Herbert")
	u := seedUser(t, r, "ana@school.test", models.RoleStudent)

	l, err := r.CreateBorrowing(ctx, borrowInput(b.ID, u.ID))
	require.NoError(t, err)
	_, err = r.ReturnBorrowing(ctx, l.ID)
	require.NoError(t, err)
	_, err = r.RecordLogin(ctx, u.ID, "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	// Orphaned borrowing and audit rows survive; listings simply leave
	// the borrower fields blank.
	rows, err := r.ListBorrowings(ctx, BorrowingsQuery{CallerIsAdmin: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, u.ID, rows[0].UserID)
	assert.Empty(t, rows[0].BorrowerEmail)

	history, err := r.ListLoginHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, u.ID, history[0].UserID)
	assert.Empty(t, history[0].UserEmail)
}

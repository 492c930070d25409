package db

import (
	"context"
	"testing"
	"time"

	"school_library_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrowInput(bookID uint, userID string) CreateBorrowingInput {
	now := time.Now().UTC()
	return CreateBorrowingInput{
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, 14),
	}
}

func TestCheckoutAndReturnLifecycle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "INV1", "Dune", "Herbert")
	u := seedUser(t, r, "reader@school.test", models.RoleStudent)
	other := seedUser(t, r, "other@school.test", models.RoleTeacher)

	l, err := r.CreateBorrowing(ctx, borrowInput(b.ID, u.ID))
	require.NoError(t, err)
	assert.Nil(t, l.ReturnDate)
	assert.False(t, l.IsReturned())

	got, err := r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	// A second checkout of the same book is rejected and changes nothing.
	_, err = r.CreateBorrowing(ctx, borrowInput(b.ID, other.ID))
	assert.ErrorIs(t, err, ErrBookUnavailable)
	rows, err := r.ListBorrowings(ctx, BorrowingsQuery{CallerIsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	returned, err := r.ReturnBorrowing(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, returned.IsReturned())

	got, err = r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
}

func TestCheckoutUnknownReferences(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "INV1", "Dune", "Herbert")
	u := seedUser(t, r, "reader@school.test", models.RoleStudent)

	_, err := r.CreateBorrowing(ctx, borrowInput(9999, u.ID))
	assert.ErrorIs(t, err, ErrUnknownBook)

	_, err = r.CreateBorrowing(ctx, borrowInput(b.ID, "no-such-user"))
	assert.ErrorIs(t, err, ErrUnknownUser)

	// Neither failure leaves a borrowing or flips the book.
	got, err := r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
}

func TestReturnIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "INV1", "Dune", "Herbert")
	u := seedUser(t, r, "reader@school.test", models.RoleStudent)

	l, err := r.CreateBorrowing(ctx, borrowInput(b.ID, u.ID))
	require.NoError(t, err)

	first, err := r.ReturnBorrowing(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReturnDate)

	second, err := r.ReturnBorrowing(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, second.ReturnDate)
	assert.WithinDuration(t, *first.ReturnDate, *second.ReturnDate, time.Second)

	got, err := r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
}

func TestReturnNotFound(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.ReturnBorrowing(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBorrowingRecomputesAvailability(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b1 := seedBook(t, r, "INV1", "Dune", "Herbert")
	b2 := seedBook(t, r, "INV2", "Hyperion", "Simmons")
	u := seedUser(t, r, "reader@school.test", models.RoleStudent)

	l, err := r.CreateBorrowing(ctx, borrowInput(b1.ID, u.ID))
	require.NoError(t, err)

	// Move the open loan to another book: the old one frees up, the new
	// one becomes unavailable.
	_, err = r.UpdateBorrowing(ctx, l.ID, UpdateBorrowingInput{
		BookID: b2.ID, UserID: u.ID,
		BorrowDate: l.BorrowDate, DueDate: l.DueDate,
	})
	require.NoError(t, err)

	got1, err := r.FindBookByID(ctx, b1.ID)
	require.NoError(t, err)
	assert.True(t, got1.IsAvailable)
	got2, err := r.FindBookByID(ctx, b2.ID)
	require.NoError(t, err)
	assert.False(t, got2.IsAvailable)

	// Closing the loan through an edit releases the book as well.
	now := time.Now().UTC()
	_, err = r.UpdateBorrowing(ctx, l.ID, UpdateBorrowingInput{
		BookID: b2.ID, UserID: u.ID,
		BorrowDate: l.BorrowDate, DueDate: l.DueDate, ReturnDate: &now,
	})
	require.NoError(t, err)
	got2, err = r.FindBookByID(ctx, b2.ID)
	require.NoError(t, err)
	assert.True(t, got2.IsAvailable)
}

func TestDeleteBorrowingRecomputesAvailability(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "INV1", "Dune", "Herbert")
	u := seedUser(t, r, "reader@school.test", models.RoleStudent)

	l, err := r.CreateBorrowing(ctx, borrowInput(b.ID, u.ID))
	require.NoError(t, err)

	require.NoError(t, r.DeleteBorrowing(ctx, l.ID))

	got, err := r.FindBookByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	assert.ErrorIs(t, r.DeleteBorrowing(ctx, l.ID), ErrNotFound)
}

func TestListBorrowingsScopesNonAdminToCaller(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b1 := seedBook(t, r, "INV1", "Dune", "Herbert")
	b2 := seedBook(t, r, "INV2", "Hyperion", "Simmons")
	alice := seedUser(t, r, "alice@school.test", models.RoleStudent)
	bob := seedUser(t, r, "bob@school.test", models.RoleStudent)

	_, err := r.CreateBorrowing(ctx, borrowInput(b1.ID, alice.ID))
	require.NoError(t, err)
	_, err = r.CreateBorrowing(ctx, borrowInput(b2.ID, bob.ID))
	require.NoError(t, err)

	own, err := r.ListBorrowings(ctx, BorrowingsQuery{CallerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	for _, row := range own {
		assert.Equal(t, alice.ID, row.UserID)
	}

	all, err := r.ListBorrowings(ctx, BorrowingsQuery{CallerID: alice.ID, CallerIsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListBorrowingsStatusFilter(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b1 := seedBook(t, r, "INV1", "Dune", "Herbert")
	b2 := seedBook(t, r, "INV2", "Hyperion", "Simmons")
	u := seedUser(t, r, "reader@school.test", models.RoleStudent)

	open, err := r.CreateBorrowing(ctx, borrowInput(b1.ID, u.ID))
	require.NoError(t, err)
	closed, err := r.CreateBorrowing(ctx, borrowInput(b2.ID, u.ID))
	require.NoError(t, err)
	_, err = r.ReturnBorrowing(ctx, closed.ID)
	require.NoError(t, err)

	notReturned, err := r.ListBorrowings(ctx, BorrowingsQuery{
		CallerIsAdmin: true, Status: BorrowingFilterNotReturned,
	})
	require.NoError(t, err)
	require.Len(t, notReturned, 1)
	assert.Equal(t, open.ID, notReturned[0].ID)

	returned, err := r.ListBorrowings(ctx, BorrowingsQuery{
		CallerIsAdmin: true, Status: BorrowingFilterReturned,
	})
	require.NoError(t, err)
	require.Len(t, returned, 1)
	assert.Equal(t, closed.ID, returned[0].ID)
}

func TestListBorrowingsSearchAcrossJoinedFields(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	b := seedBook(t, r, "INV-9", "Dune", "Herbert")
	u := &models.User{
		ID: "1d1c3f3a-0000-0000-0000-000000000001", Email: "ana.petrova@school.test",
		FirstName: "Ana", LastName: "Petrova", Role: models.RoleStudent,
		RegistrationDate: time.Now().UTC(),
	}
	require.NoError(t, u.SetPassword("Passw0rd"))
	require.NoError(t, r.CreateUser(ctx, u))

	in := borrowInput(b.ID, u.ID)
	in.BorrowDate = time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	in.DueDate = time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	_, err := r.CreateBorrowing(ctx, in)
	require.NoError(t, err)

	for _, q := range []string{"dune", "herbert", "inv-9", "ana", "petrova", "ana.petrova", "03.05.2024", "17.05.2024"} {
		rows, err := r.ListBorrowings(ctx, BorrowingsQuery{CallerIsAdmin: true, Q: q})
		require.NoError(t, err)
		assert.Len(t, rows, 1, "query %q", q)
	}

	rows, err := r.ListBorrowings(ctx, BorrowingsQuery{CallerIsAdmin: true, Q: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

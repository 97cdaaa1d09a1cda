package app_test

import (
	"context"
	"testing"

	"academy-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	core := newTestCore(nil)

	created, err := core.studentSvc.Register(ctx, "Aisha Karim", "2024-0117", "+77010000000", "grade-10")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.EqualValues(t, 0, created.Balance)
	assert.EqualValues(t, 0, created.Points)
	assert.False(t, created.Banned)

	got, err := core.studentSvc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aisha Karim", got.FullName)

	_, err = core.studentSvc.Register(ctx, "Someone Else", "2024-0117", "", "grade-11")
	assert.ErrorIs(t, err, domain.ErrStudentExists)

	_, err = core.studentSvc.Register(ctx, "", "2024-0118", "", "grade-11")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = core.studentSvc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestBanToggle(t *testing.T) {
	ctx := context.Background()
	core := newTestCore(lessonCatalog())
	core.addStudent(t, "s1", 200, 0)

	require.NoError(t, core.studentSvc.SetBanned(ctx, "s1", true, "shared account"))
	got, err := core.studentSvc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Banned)
	assert.Equal(t, "shared account", got.BanReason)

	_, err = core.commerce.Purchase(ctx, "s1", "lesson-1")
	assert.ErrorIs(t, err, domain.ErrStudentBanned)

	require.NoError(t, core.studentSvc.SetBanned(ctx, "s1", false, ""))
	_, err = core.commerce.Purchase(ctx, "s1", "lesson-1")
	require.NoError(t, err)

	assert.ErrorIs(t, core.studentSvc.SetBanned(ctx, "ghost", true, "x"), domain.ErrStudentNotFound)
}

func TestWalletHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	core := newTestCore(lessonCatalog())
	core.addStudent(t, "s1", 0, 0)

	_, err := core.ledger.Credit(ctx, "s1", 150, "topup:claim-a")
	require.NoError(t, err)
	_, err = core.commerce.Purchase(ctx, "s1", "lesson-1")
	require.NoError(t, err)

	history, err := core.studentSvc.WalletHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.WalletCredit, history[0].Kind)
	assert.Equal(t, "topup:claim-a", history[0].Reference)
	assert.Equal(t, domain.WalletDebit, history[1].Kind)
	assert.EqualValues(t, 50, history[1].BalanceAfter)

	_, err = core.studentSvc.WalletHistory(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestEntitlementsListing(t *testing.T) {
	ctx := context.Background()
	core := newTestCore(lessonCatalog())
	core.addStudent(t, "s1", 100, 0)

	_, err := core.commerce.Purchase(ctx, "s1", "lesson-1")
	require.NoError(t, err)

	list, err := core.studentSvc.Entitlements(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lesson-1", list[0].ItemID)
	assert.Equal(t, domain.EntitlementPurchased, list[0].Source)
}

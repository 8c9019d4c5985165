package service_test

import (
	"context"
	"testing"

	"github.com/evan/item-vault/internal/service"
	"github.com/evan/item-vault/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemService_CreateSetsOwner(t *testing.T) {
	services, testDB := newUserService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	desc := "a thing"
	item, err := services.Item.Create(ctx, owner, service.CreateItemInput{
		Title:       "first item",
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, item.OwnerID)
	assert.Equal(t, "first item", item.Title)
}

func TestItemService_OwnershipGate(t *testing.T) {
	services, testDB := newUserService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().WithEmail("owner@example.com").Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().WithEmail("other@example.com").Build(t, testDB.DB)
	super, _ := testutil.NewUserBuilder().WithEmail("admin@example.com").Superuser().Build(t, testDB.DB)
	item := testutil.NewItemBuilder(owner).Build(t, testDB.DB)

	t.Run("owner reads own item", func(t *testing.T) {
		got, err := services.Item.Get(ctx, owner, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := services.Item.Get(ctx, other, item.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)

		title := "hijacked"
		_, err = services.Item.Update(ctx, other, item.ID, service.UpdateItemInput{Title: &title})
		assert.ErrorIs(t, err, service.ErrForbidden)

		assert.ErrorIs(t, services.Item.Delete(ctx, other, item.ID), service.ErrForbidden)
	})

	t.Run("superuser may act on any item", func(t *testing.T) {
		got, err := services.Item.Get(ctx, super, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
	})

	t.Run("missing item is not found, not forbidden", func(t *testing.T) {
		_, err := services.Item.Get(ctx, other, uuid.New())
		assert.ErrorIs(t, err, service.ErrItemNotFound)
	})
}

func TestItemService_ListScoping(t *testing.T) {
	services, testDB := newUserService(t)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().WithEmail("alice@example.com").Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().WithEmail("bob@example.com").Build(t, testDB.DB)
	super, _ := testutil.NewUserBuilder().WithEmail("admin@example.com").Superuser().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		testutil.NewItemBuilder(alice).Build(t, testDB.DB)
	}
	testutil.NewItemBuilder(bob).Build(t, testDB.DB)

	aliceItems, aliceCount, err := services.Item.List(ctx, alice, 0, 100)
	require.NoError(t, err)
	assert.Len(t, aliceItems, 3)
	assert.EqualValues(t, 3, aliceCount)
	for _, item := range aliceItems {
		assert.Equal(t, alice.ID, item.OwnerID)
	}

	_, superCount, err := services.Item.List(ctx, super, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 4, superCount)

	// Pagination: count reflects the full set, not the page.
	page, total, err := services.Item.List(ctx, alice, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.EqualValues(t, 3, total)
}

func TestItemService_Update(t *testing.T) {
	services, testDB := newUserService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	item := testutil.NewItemBuilder(owner).WithTitle("before").Build(t, testDB.DB)

	title := "after"
	desc := "now with a description"
	updated, err := services.Item.Update(ctx, owner, item.ID, service.UpdateItemInput{
		Title:       &title,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)

	// Partial update leaves missing fields untouched.
	onlyDesc := "tweaked"
	updated, err = services.Item.Update(ctx, owner, item.ID, service.UpdateItemInput{Description: &onlyDesc})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewardkit/user"
)

func TestStore_SaveAndLoad(t *testing.T) {
	store := New()
	ctx := context.Background()

	doc := user.Document{user.KeyName: "Steve", user.KeyDailyDayNum: 3}
	require.NoError(t, store.Save(ctx, "steve", doc))

	got, err := store.Load(ctx, "steve")
	require.NoError(t, err)
	assert.Equal(t, "Steve", got[user.KeyName])
	assert.EqualValues(t, 3, got[user.KeyDailyDayNum])
}

func TestStore_Load_MissingUserIsEmpty(t *testing.T) {
	store := New()

	doc, err := store.Load(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestStore_DocumentsAreDetached(t *testing.T) {
	store := New()
	ctx := context.Background()

	doc := user.Document{
		user.KeyDailyCollectedDates: []string{"01-08-2026"},
	}
	require.NoError(t, store.Save(ctx, "steve", doc))

	// Mutating the caller's copy must not leak into the store.
	doc[user.KeyDailyCollectedDates].([]string)[0] = "nope"
	doc[user.KeyName] = "intruder"

	got, err := store.Load(ctx, "steve")
	require.NoError(t, err)
	assert.Equal(t, []string{"01-08-2026"}, got[user.KeyDailyCollectedDates])
	assert.NotContains(t, got, user.KeyName)

	// Same the other way: mutating a loaded copy must not touch the store.
	got[user.KeyDailyDayNum] = 99
	again, err := store.Load(ctx, "steve")
	require.NoError(t, err)
	assert.NotContains(t, again, user.KeyDailyDayNum)
}

func TestStore_Delete(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "steve", user.Document{user.KeyName: "Steve"}))
	require.NoError(t, store.Delete(ctx, "steve"))

	doc, err := store.Load(ctx, "steve")
	require.NoError(t, err)
	assert.Empty(t, doc)
}

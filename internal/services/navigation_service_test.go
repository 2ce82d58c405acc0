package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
)

func TestBackNeverEmptiesHistory(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Navigation.Push(navigation.ViewProfile, navigation.Props{"userId": store.SeedBrandOwnerID})
	require.NoError(t, err)
	_, err = f.svc.Navigation.Push(navigation.ViewDeck, navigation.Props{"deckId": "deck-summer"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		nav, err := f.svc.Navigation.Back()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(nav.Frames), 1)
	}
	assert.Equal(t, navigation.ViewFeed, f.svc.Navigation.State().Current.View)
}

func TestBackFromBasketAbandonsPreOrderEdit(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	sent := sendPreOrder(t, f, "")
	_, err := f.svc.Chat.BeginPreOrderEdit(sent.ChatID, sent.Message.ID)
	require.NoError(t, err)
	require.NotNil(t, f.svc.Navigation.State().Editing)

	nav, err := f.svc.Navigation.Back()
	require.NoError(t, err)
	assert.Nil(t, nav.Editing)
}

func TestDeepLinkAppliedOnce(t *testing.T) {
	f := newFixture(t)

	nav, applied, err := f.svc.Navigation.ApplyDeepLink(navigation.DeepLink{UserID: store.SeedBrandOwnerID, DeckID: "deck-summer"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, nav.PublicMode)
	require.Len(t, nav.Frames, 2)
	assert.Equal(t, navigation.ViewProfile, nav.Frames[0].View)
	assert.Equal(t, navigation.ViewDeck, nav.Current.View)

	_, applied, err = f.svc.Navigation.ApplyDeepLink(navigation.DeepLink{ProductID: "p-knit-top"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, navigation.ViewDeck, f.svc.Navigation.State().Current.View)
}

func TestDeepLinkIgnoredWithActiveSession(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	nav, applied, err := f.svc.Navigation.ApplyDeepLink(navigation.DeepLink{ProductID: "p-knit-top"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, nav.PublicMode)
}

func TestResetIsNoopInPublicMode(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Navigation.ApplyDeepLink(navigation.DeepLink{UserID: store.SeedBrandOwnerID})
	require.NoError(t, err)

	nav, err := f.svc.Navigation.Reset(navigation.ViewFeed)
	require.NoError(t, err)
	assert.Equal(t, navigation.ViewProfile, nav.Current.View)

	nav, err = f.svc.Navigation.ExitPublicMode()
	require.NoError(t, err)
	assert.False(t, nav.PublicMode)
	assert.Equal(t, navigation.ViewFeed, nav.Current.View)

	_, err = f.svc.Navigation.Push(navigation.ViewSettings, nil)
	require.NoError(t, err)
	nav, err = f.svc.Navigation.Reset(navigation.ViewFeed)
	require.NoError(t, err)
	assert.Len(t, nav.Frames, 1)
}

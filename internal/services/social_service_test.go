package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
)

func assertGraphSymmetric(t *testing.T, st *store.AppState) {
	t.Helper()
	for _, a := range st.Users {
		for _, b := range st.Users {
			following := a.IsFollowing(b.ID)
			followed := false
			for _, id := range b.FollowerIDs {
				if id == a.ID {
					followed = true
				}
			}
			assert.Equal(t, following, followed, "%s -> %s", a.ID, b.ID)
		}
	}
}

func TestFollowToggleKeepsGraphSymmetric(t *testing.T) {
	f := newFixture(t)
	ids := []string{store.SeedBrandOwnerID, store.SeedSalesRepID, store.SeedCustomerID}
	logins := map[string]string{
		store.SeedBrandOwnerID: "owner@atelier.example",
		store.SeedSalesRepID:   "mert@atelier.example",
		store.SeedCustomerID:   "elif@example.com",
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 30; i++ {
		actor := ids[rng.Intn(len(ids))]
		target := ids[rng.Intn(len(ids))]
		f.login(t, logins[actor])

		_, err := f.svc.Social.FollowToggle(target)
		if actor == target {
			assert.ErrorIs(t, err, ErrSelfFollow)
			continue
		}
		require.NoError(t, err)
		assertGraphSymmetric(t, f.state(t))
	}
}

func TestFollowToggleFlips(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	following, err := f.svc.Social.FollowToggle(store.SeedBrandOwnerID)
	require.NoError(t, err)
	assert.False(t, following)

	following, err = f.svc.Social.FollowToggle(store.SeedBrandOwnerID)
	require.NoError(t, err)
	assert.True(t, following)

	profile, err := f.svc.Social.Profile(store.SeedBrandOwnerID)
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.Equal(t, 1, profile.FollowerCount)
	assert.Len(t, profile.Products, 3)

	_, err = f.svc.Social.FollowToggle("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func publishKnitDress(t *testing.T, f *fixture) *models.Product {
	t.Helper()
	product, err := f.svc.Catalog.CreateProduct(&CreateProductRequest{
		Name:     "Knit Dress",
		Price:    79,
		Variants: []models.Variant{{Name: "Camel", MediaURL: "https://images.reelshop.dev/p/knit-camel.jpg", MediaType: models.MediaTypeImage}},
		Sizes:    []string{"S", "M"},
		Category: "dresses",
	})
	require.NoError(t, err)
	return product
}

func TestPublishFansOutToFollowers(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)
	product := publishKnitDress(t, f)

	f.loginCustomer(t)
	notes, unread, err := f.svc.Social.Notifications()
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, store.SeedCustomerID, notes[0].RecipientID)
	assert.Equal(t, store.SeedBrandOwnerID, notes[0].FromUser.ID)
	assert.Equal(t, models.LinkKindProduct, notes[0].Link.Kind)
	assert.Equal(t, product.ID, notes[0].Link.ID)
	assert.False(t, notes[0].Read)

	nav, err := f.svc.Social.OpenNotification(notes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, navigation.ViewFeed, nav.Current.View)
	assert.Equal(t, product.ID, nav.Current.Props["productId"])
	assert.Equal(t, "Camel", nav.Current.Props["variantName"])

	_, unread, err = f.svc.Social.Notifications()
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotificationsAreScopedToRecipient(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)
	publishKnitDress(t, f)

	notes, _, err := f.svc.Social.Notifications()
	require.NoError(t, err)
	assert.Empty(t, notes)

	st := f.state(t)
	require.Len(t, st.Notifications, 1)
	_, err = f.svc.Social.OpenNotification(st.Notifications[0].ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestDeckNotificationNavigation(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)
	deck, err := f.svc.Catalog.CreateDeck(&DeckRequest{Name: "Evening", ProductIDs: []string{"p-wrap-dress"}})
	require.NoError(t, err)
	gone, err := f.svc.Catalog.CreateDeck(&DeckRequest{Name: "Temporary"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Catalog.DeleteDeck(gone.ID))

	f.loginCustomer(t)
	notes, unread, err := f.svc.Social.Notifications()
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 2, unread)

	for _, n := range notes {
		nav, err := f.svc.Social.OpenNotification(n.ID)
		require.NoError(t, err)
		if n.Link.ID == deck.ID {
			assert.Equal(t, navigation.ViewDeck, nav.Current.View)
			assert.Equal(t, deck.ID, nav.Current.Props["deckId"])
		} else {
			assert.Equal(t, navigation.ViewProfile, nav.Current.View)
		}
	}
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)
	publishKnitDress(t, f)
	publishKnitDress(t, f)

	f.loginCustomer(t)
	require.NoError(t, f.svc.Social.MarkAllRead())
	notes, unread, err := f.svc.Social.Notifications()
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Zero(t, unread)
}

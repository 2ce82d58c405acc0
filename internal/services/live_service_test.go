package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/scheduler"
	"github.com/javajoker/reelshop/internal/store"
)

const seedStream = "ls-summer"

func startSeedStream(t *testing.T, f *fixture) {
	t.Helper()
	f.loginOwner(t)
	require.NoError(t, f.svc.Live.StartStream(seedStream))
}

func activeDiscount(t *testing.T, f *fixture) *models.ActiveDiscount {
	t.Helper()
	return f.state(t).Stream(seedStream).ActiveDiscount
}

// minutes converts a duration into the request's unit.
func minutes(d time.Duration) float64 {
	return d.Minutes()
}

func TestStreamStatusOnlyMovesForward(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)
	assert.ErrorIs(t, f.svc.Live.StartStream(seedStream), ErrNotHost)

	startSeedStream(t, f)
	assert.ErrorIs(t, f.svc.Live.StartStream(seedStream), ErrInvalidTransition)

	require.NoError(t, f.svc.Live.EndStream(seedStream))
	assert.ErrorIs(t, f.svc.Live.StartStream(seedStream), ErrInvalidTransition)
	assert.ErrorIs(t, f.svc.Live.EndStream(seedStream), ErrInvalidTransition)

	st := f.state(t).Stream(seedStream)
	assert.Equal(t, models.StreamStatusEnded, st.Status)
	assert.NotNil(t, st.StartedAt)
	assert.NotNil(t, st.EndedAt)
}

func TestSetDiscountValidation(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)

	valid := &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 20, DurationMinutes: 5}
	_, err := f.svc.Live.SetDiscount(seedStream, valid)
	assert.ErrorIs(t, err, ErrStreamNotLive)

	require.NoError(t, f.svc.Live.StartStream(seedStream))

	_, err = f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 0, DurationMinutes: 5})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 120, DurationMinutes: 5})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 20, DurationMinutes: 0})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-unknown", DiscountPercentage: 20, DurationMinutes: 5})
	assert.ErrorIs(t, err, ErrNotInShowcase)

	f.loginCustomer(t)
	_, err = f.svc.Live.SetDiscount(seedStream, valid)
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Nil(t, activeDiscount(t, f))
}

func TestDiscountExpires(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	discount, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{
		ProductID:          "p-knit-top",
		DiscountPercentage: 10,
		DurationMinutes:    minutes(30 * time.Millisecond),
	})
	require.NoError(t, err)
	assert.True(t, discount.ExpiresAt.After(f.clock()))
	require.NotNil(t, activeDiscount(t, f))

	assert.Eventually(t, func() bool {
		return activeDiscount(t, f) == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))
}

func TestNewerDiscountSupersedesStaleTimer(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{
		ProductID:          "p-knit-top",
		DiscountPercentage: 10,
		DurationMinutes:    minutes(30 * time.Millisecond),
	})
	require.NoError(t, err)
	_, err = f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{
		ProductID:          "p-linen-dress",
		DiscountPercentage: 20,
		DurationMinutes:    1,
	})
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)

	discount := activeDiscount(t, f)
	require.NotNil(t, discount)
	assert.Equal(t, "p-linen-dress", discount.ProductID)
	assert.Equal(t, 20.0, discount.DiscountPercentage)
	assert.True(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))
}

func TestExpiryGuardIgnoresOtherProduct(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-linen-dress", DiscountPercentage: 20, DurationMinutes: 1})
	require.NoError(t, err)

	f.svc.Live.expireDiscount(seedStream, "p-knit-top")
	discount := activeDiscount(t, f)
	require.NotNil(t, discount)
	assert.Equal(t, "p-linen-dress", discount.ProductID)

	f.svc.Live.expireDiscount(seedStream, "p-linen-dress")
	assert.Nil(t, activeDiscount(t, f))
}

func TestEndStreamCancelsDiscount(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 15, DurationMinutes: 10})
	require.NoError(t, err)
	require.True(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))

	require.NoError(t, f.svc.Live.EndStream(seedStream))
	assert.Nil(t, activeDiscount(t, f))
	assert.False(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))
}

func TestDiscountedPriceAndBuyFromStream(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-linen-dress", DiscountPercentage: 25, DurationMinutes: 10})
	require.NoError(t, err)

	price, discounted, err := f.svc.Live.DiscountedPrice(seedStream, "p-linen-dress", "")
	require.NoError(t, err)
	assert.True(t, discounted)
	assert.Equal(t, 89.25, price)

	price, discounted, err = f.svc.Live.DiscountedPrice(seedStream, "p-knit-top", "")
	require.NoError(t, err)
	assert.False(t, discounted)
	assert.Equal(t, 39.0, price)

	f.loginCustomer(t)
	item, err := f.svc.Live.BuyFromStream(seedStream, &AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Olive", Size: "S", SpecialPrice: float(1)})
	require.NoError(t, err)
	require.NotNil(t, item.SpecialPrice)
	assert.Equal(t, 89.25, *item.SpecialPrice)

	f.advance(11 * time.Minute)
	item, err = f.svc.Live.BuyFromStream(seedStream, &AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Olive", Size: "S"})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 89.25, *item.SpecialPrice, "a discounted line keeps its price when re-added without one")
}

func TestBuyPackFromStreamDiscountsPackPrice(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-wrap-dress", DiscountPercentage: 10, DurationMinutes: 10})
	require.NoError(t, err)

	price, discounted, err := f.svc.Live.DiscountedPrice(seedStream, "p-wrap-dress", "pack-run")
	require.NoError(t, err)
	assert.True(t, discounted)
	assert.Equal(t, 378.0, price)

	_, _, err = f.svc.Live.DiscountedPrice(seedStream, "p-wrap-dress", "pack-missing")
	assert.ErrorIs(t, err, ErrInvalidOption)

	f.loginCustomer(t)
	item, err := f.svc.Live.BuyFromStream(seedStream, &AddToCartRequest{ProductID: "p-wrap-dress", VariantName: "Ruby", PackID: "pack-run"})
	require.NoError(t, err)
	require.NotNil(t, item.SpecialPrice)
	assert.Equal(t, 378.0, *item.SpecialPrice)
	assert.Equal(t, 378.0, f.svc.Cart.Subtotal([]models.CartItem{*item}))
}

func TestLoadedDiscountsResumeExpiry(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{
		ProductID:          "p-knit-top",
		DiscountPercentage: 10,
		DurationMinutes:    minutes(200 * time.Millisecond),
	})
	require.NoError(t, err)
	f.svc.Close()
	require.False(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))

	reopened := store.Open(store.SnapshotKey(testDevice), f.persister, store.Seed, nil)
	live := NewLiveService(testDevice, reopened, f.scheduler, nil, f.clock)
	assert.True(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))

	assert.Eventually(t, func() bool {
		var cleared bool
		reopened.View(func(st *store.AppState) { cleared = st.Stream(seedStream).ActiveDiscount == nil })
		return cleared
	}, 2*time.Second, 10*time.Millisecond)
	live.Close()
}

func TestLapsedDiscountClearedOnLoad(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 10, DurationMinutes: 5})
	require.NoError(t, err)
	f.svc.Close()
	f.advance(time.Hour)

	reopened := store.Open(store.SnapshotKey(testDevice), f.persister, store.Seed, nil)
	live := NewLiveService(testDevice, reopened, f.scheduler, nil, f.clock)
	defer live.Close()

	view, err := live.Stream(seedStream)
	require.NoError(t, err)
	assert.Nil(t, view.ActiveDiscount)
	assert.False(t, f.scheduler.Pending(scheduler.Key(testDevice, seedStream)))
}

func TestHostControlledPinning(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	controlled, err := f.svc.Live.ToggleHostControl(seedStream)
	require.NoError(t, err)
	assert.True(t, controlled)
	view, err := f.svc.Live.Stream(seedStream)
	require.NoError(t, err)
	assert.Equal(t, 0, view.PinnedIndex)

	idx, err := f.svc.Live.PinProduct(seedStream, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	f.loginCustomer(t)
	_, err = f.svc.Live.PinProduct(seedStream, 1)
	assert.ErrorIs(t, err, ErrPinLocked)
	view, err = f.svc.Live.Stream(seedStream)
	require.NoError(t, err)
	assert.Equal(t, 2, view.PinnedIndex)

	_, err = f.svc.Live.ToggleHostControl(seedStream)
	assert.ErrorIs(t, err, ErrNotHost)

	f.loginOwner(t)
	controlled, err = f.svc.Live.ToggleHostControl(seedStream)
	require.NoError(t, err)
	assert.False(t, controlled)

	f.loginCustomer(t)
	idx, err = f.svc.Live.PinProduct(seedStream, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	_, err = f.svc.Live.PinProduct(seedStream, 3)
	assert.ErrorIs(t, err, ErrNotInShowcase)
}

func TestJoinCommentLikeLeave(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)
	f.loginCustomer(t)

	view, err := f.svc.Live.Join(seedStream)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ViewerCount)
	_, err = f.svc.Live.Join(seedStream)
	require.NoError(t, err)
	assert.Equal(t, navigation.ViewLive, f.svc.Navigation.State().Current.View)

	comment, err := f.svc.Live.AddComment(seedStream, &CommentRequest{Text: "Love the olive!"})
	require.NoError(t, err)
	assert.Equal(t, store.SeedCustomerID, comment.User.ID)
	likes, err := f.svc.Live.Like(seedStream)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	require.NoError(t, f.svc.Live.Leave(seedStream))
	st := f.state(t)
	assert.Zero(t, st.Stream(seedStream).ViewerCount)
	assert.Len(t, st.Stream(seedStream).Comments, 1)
	assert.Empty(t, st.LiveStreamContextID)
	require.NoError(t, f.svc.Live.Leave(seedStream))
}

func TestScheduleStream(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	req := &ScheduleStreamRequest{Title: "Knitwear drop", ProductIDs: []string{"p-knit-top", "p-knit-top"}}
	_, err := f.svc.Live.ScheduleStream(req)
	assert.ErrorIs(t, err, ErrForbidden)

	f.loginRep(t)
	stream, err := f.svc.Live.ScheduleStream(req)
	require.NoError(t, err)
	assert.Equal(t, models.StreamStatusUpcoming, stream.Status)
	assert.Equal(t, []string{"p-knit-top"}, stream.ProductShowcaseIDs)
	assert.Len(t, f.svc.Live.Streams(), 2)
}

func TestCloseCancelsDeviceTimers(t *testing.T) {
	f := newFixture(t)
	startSeedStream(t, f)

	_, err := f.svc.Live.SetDiscount(seedStream, &SetDiscountRequest{ProductID: "p-knit-top", DiscountPercentage: 5, DurationMinutes: 10})
	require.NoError(t, err)

	f.svc.Live.Close()
	assert.Zero(t, f.scheduler.Len())
}

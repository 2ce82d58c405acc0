package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
)

func TestAddToCartMergesSameLine(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	req := &AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Sand", Size: "M"}
	_, err := f.svc.Cart.AddToCart(req)
	require.NoError(t, err)
	item, err := f.svc.Cart.AddToCart(req)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	lines := f.svc.Cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	_, err = f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Sand", Size: "L"})
	require.NoError(t, err)
	assert.Len(t, f.svc.Cart.Lines(), 2)
}

func TestAddToCartKeepsSpecialPriceUnlessOverwritten(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	_, err := f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-knit-top", VariantName: "Black", Size: "S", SpecialPrice: float(30)})
	require.NoError(t, err)

	item, err := f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-knit-top", VariantName: "Black", Size: "S"})
	require.NoError(t, err)
	require.NotNil(t, item.SpecialPrice)
	assert.Equal(t, 30.0, *item.SpecialPrice)

	item, err = f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-knit-top", VariantName: "Black", Size: "S", SpecialPrice: float(25)})
	require.NoError(t, err)
	assert.Equal(t, 25.0, *item.SpecialPrice)
	assert.Equal(t, 3, item.Quantity)
}

func TestAddToCartRejectsInvalidOptions(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  AddToCartRequest
		want error
	}{
		{"unknown product", AddToCartRequest{ProductID: "nope", VariantName: "Sand", Size: "M"}, ErrProductNotFound},
		{"unknown variant", AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Pink", Size: "M"}, ErrVariantNotFound},
		{"unknown size", AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Sand", Size: "XXL"}, ErrInvalidOption},
		{"pack on retail product", AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Sand", PackID: "pack-run"}, ErrInvalidOption},
		{"size on wholesale product", AddToCartRequest{ProductID: "p-wrap-dress", VariantName: "Ruby", Size: "M"}, ErrInvalidOption},
		{"unknown pack", AddToCartRequest{ProductID: "p-wrap-dress", VariantName: "Ruby", PackID: "pack-x"}, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Cart.AddToCart(&req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.svc.Cart.Lines())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	_, err := f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-knit-top", VariantName: "Ivory", Size: "XS"})
	require.NoError(t, err)
	_, err = f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Olive", Size: "S"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cart.UpdateQuantity(&UpdateQuantityRequest{ProductID: "p-knit-top", VariantName: "Ivory", Size: "XS", Quantity: 4}))
	assert.Equal(t, 4*39.0+119, f.svc.Cart.Subtotal(f.state(t).Cart))

	require.NoError(t, f.svc.Cart.UpdateQuantity(&UpdateQuantityRequest{ProductID: "p-knit-top", VariantName: "Ivory", Size: "XS", Quantity: 0}))
	st := f.state(t)
	require.Len(t, st.Cart, 1)
	assert.Equal(t, 119.0, f.svc.Cart.Subtotal(st.Cart))

	err = f.svc.Cart.UpdateQuantity(&UpdateQuantityRequest{ProductID: "p-knit-top", VariantName: "Ivory", Size: "XS", Quantity: 1})
	assert.ErrorIs(t, err, ErrCartLineNotFound)
}

func TestSubtotalPriceResolution(t *testing.T) {
	f := newFixture(t)

	items := []models.CartItem{
		{ProductID: "p-wrap-dress", VariantName: "Ruby", PackID: "pack-run", Quantity: 2, SpecialPrice: float(400)},
		{ProductID: "p-wrap-dress", VariantName: "Ruby", PackID: "pack-m", Quantity: 1},
		{ProductID: "p-wrap-dress", VariantName: "Ruby", PackID: "pack-gone", Quantity: 1},
		{ProductID: "p-deleted", VariantName: "Any", Size: "M", Quantity: 3, SpecialPrice: float(10)},
	}

	// 2x400 special, 360 pack, 89 base for an unknown pack, 0 for a missing product.
	assert.Equal(t, 800.0+360+89, f.svc.Cart.Subtotal(items))
}

func TestPublicModeUsesSeparateCart(t *testing.T) {
	f := newFixture(t)

	_, applied, err := f.svc.Navigation.ApplyDeepLink(navigation.DeepLink{ProductID: "p-knit-top"})
	require.NoError(t, err)
	require.True(t, applied)

	_, err = f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-knit-top", VariantName: "Ivory", Size: "M"})
	require.NoError(t, err)

	st := f.state(t)
	assert.Empty(t, st.Cart)
	assert.Equal(t, navigation.ViewBasket, f.svc.Navigation.State().Current.View)
	assert.Len(t, f.svc.Cart.Lines(), 1)
}

func TestBasketGroupsByCreator(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	_, err := f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-knit-top", VariantName: "Ivory", Size: "M"})
	require.NoError(t, err)
	_, err = f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-wrap-dress", VariantName: "Ruby", PackID: "pack-m"})
	require.NoError(t, err)

	groups := f.svc.Cart.Basket()
	require.Len(t, groups, 1)
	assert.Equal(t, store.SeedBrandOwnerID, groups[0].Creator.ID)
	assert.Len(t, groups[0].Lines, 2)
	assert.Equal(t, 399.0, groups[0].Subtotal)
	assert.Equal(t, "Medium only", groups[0].Lines[1].PackName)
}

func TestCheckoutCommissionGating(t *testing.T) {
	t.Run("customer earns nothing", func(t *testing.T) {
		f := newFixture(t)
		f.loginCustomer(t)

		_, err := f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Sand", Size: "M", SpecialPrice: float(100)})
		require.NoError(t, err)

		sale, err := f.svc.Cart.Checkout(store.SeedBrandOwnerID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, sale.TotalAmount)
		assert.Zero(t, sale.CommissionAmount)
	})

	t.Run("rep of the creator earns their rate", func(t *testing.T) {
		f := newFixture(t)
		f.loginRep(t)
		before := f.state(t).Product("p-linen-dress").SalesCount

		_, err := f.svc.Cart.AddToCart(&AddToCartRequest{ProductID: "p-linen-dress", VariantName: "Sand", Size: "M", SpecialPrice: float(100)})
		require.NoError(t, err)

		sale, err := f.svc.Cart.Checkout(store.SeedBrandOwnerID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, sale.TotalAmount)
		assert.Equal(t, 10.0, sale.CommissionAmount)
		assert.Equal(t, store.SeedSalesRepID, sale.SalespersonID)
		assert.Equal(t, store.SeedBrandOwnerID, sale.BrandOwnerID)
		require.Len(t, sale.Items, 1)
		assert.Equal(t, "Linen Midi Dress", sale.Items[0].ProductName)

		st := f.state(t)
		assert.Empty(t, st.Cart)
		assert.Len(t, st.Sales, 1)
		assert.Equal(t, before+1, st.Product("p-linen-dress").SalesCount)
	})
}

func TestCheckoutWithoutLinesForCreator(t *testing.T) {
	f := newFixture(t)
	f.loginCustomer(t)

	_, err := f.svc.Cart.Checkout(store.SeedBrandOwnerID)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, f.state(t).Sales)
}

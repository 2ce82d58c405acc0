package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStringSetKeepsInsertionOrder(t *testing.T) {
	s := NewStringSet("b", "a", "b", "c")
	assert.Equal(t, []string{"b", "a", "c"}, s.Items())

	assert.False(t, s.Toggle("a"))
	assert.True(t, s.Toggle("d"))
	assert.Equal(t, []string{"b", "c", "d"}, s.Items())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["b","c","d"]`, string(data))

	var decoded StringSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Has("c"))
	assert.Equal(t, s.Items(), decoded.Items())

	var empty StringSet
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestProductValidate(t *testing.T) {
	base := func() Product {
		return Product{
			ID:       "p1",
			Name:     "Linen Shirt",
			Price:    40,
			Variants: []Variant{{Name: "White", MediaType: MediaTypeImage}},
		}
	}

	p := base()
	assert.NoError(t, p.Validate())

	p = base()
	p.Variants = nil
	assert.ErrorIs(t, p.Validate(), ErrNoVariants)

	p = base()
	p.IsWholesale = true
	assert.ErrorIs(t, p.Validate(), ErrNoPacks)

	p.Packs = []Pack{{ID: "k1", Name: "Mixed", Contents: map[string]int{"S": 2, "M": 3}, TotalQuantity: 6, Price: 100}}
	assert.ErrorIs(t, p.Validate(), ErrPackQuantity)

	p.Packs[0].TotalQuantity = 5
	assert.NoError(t, p.Validate())
	assert.NotNil(t, p.Pack("k1"))
	assert.Nil(t, p.Pack("missing"))

	p = base()
	p.Price = -1
	assert.ErrorIs(t, p.Validate(), ErrNegativePrice)
}

func TestChatMessageJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := ChatMessage{
		ID:        "m1",
		SenderID:  "u1",
		Timestamp: ts,
		Body: PreOrderBody{PreOrder: PreOrder{
			CreatorID:   "brand",
			Items:       []PreOrderItem{{ProductID: "p1", VariantName: "Red", Quantity: 2, PricePerUnit: 10}},
			TotalAmount: 20,
		}},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "pre-order", raw["type"])
	assert.Equal(t, "m1", raw["id"])
	assert.Contains(t, raw, "preOrder")

	var decoded ChatMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	body, ok := decoded.Body.(PreOrderBody)
	require.True(t, ok)
	assert.Equal(t, 20.0, body.PreOrder.TotalAmount)
	assert.True(t, decoded.Timestamp.Equal(ts))

	text := ChatMessage{ID: "m2", SenderID: "u2", Timestamp: ts, Body: TextBody{Text: "hello"}}
	data, err = json.Marshal(text)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TextBody{Text: "hello"}, decoded.Body)
	assert.Equal(t, "hello", decoded.Preview())
}

func TestChatMessageRejectsUnknownType(t *testing.T) {
	var msg ChatMessage
	err := json.Unmarshal([]byte(`{"id":"m1","senderId":"u1","type":"sticker"}`), &msg)
	assert.Error(t, err)
}

func TestLiveStreamTransition(t *testing.T) {
	now := time.Now()
	s := LiveStream{ID: "ls1", Status: StreamStatusUpcoming}

	require.NoError(t, s.Transition(StreamStatusLive, now))
	require.NotNil(t, s.StartedAt)

	assert.Error(t, s.Transition(StreamStatusUpcoming, now))
	assert.Error(t, s.Transition(StreamStatusLive, now))

	require.NoError(t, s.Transition(StreamStatusEnded, now))
	require.NotNil(t, s.EndedAt)
	assert.Error(t, s.Transition(StreamStatusLive, now))
}

func TestLiveStreamDiscountFor(t *testing.T) {
	now := time.Now()
	s := LiveStream{ActiveDiscount: &ActiveDiscount{ProductID: "p1", DiscountPercentage: 15, ExpiresAt: now.Add(time.Minute)}}

	pct, ok := s.DiscountFor("p1", now)
	assert.True(t, ok)
	assert.Equal(t, 15.0, pct)

	_, ok = s.DiscountFor("p2", now)
	assert.False(t, ok)

	_, ok = s.DiscountFor("p1", now.Add(time.Minute))
	assert.False(t, ok)
}

func TestUserPasswordIsHashed(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	defer func() { PasswordCost = bcrypt.DefaultCost }()

	u := User{ID: "u1"}
	require.NoError(t, u.SetPassword("secret-1"))
	assert.NotEqual(t, "secret-1", u.PasswordHash)
	assert.NoError(t, u.CheckPassword("secret-1"))
	assert.Error(t, u.CheckPassword("secret-2"))
	assert.Empty(t, u.Public().PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestUserCapabilities(t *testing.T) {
	owner := User{Role: RoleBrandOwner}
	rep := User{Role: RoleSalesRep}
	customer := User{Role: RoleCustomer}

	assert.True(t, owner.Capabilities().CanPublish)
	assert.False(t, rep.Capabilities().CanPublish)
	assert.True(t, rep.Capabilities().EarnsCommission)
	assert.Equal(t, Capabilities{}, customer.Capabilities())
}

func TestIDHelpers(t *testing.T) {
	ids := AppendUnique([]string{"a"}, "b")
	ids = AppendUnique(ids, "a")
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, []string{"b"}, RemoveID(ids, "a"))
	assert.Equal(t, []string{"a", "b"}, ids)
}

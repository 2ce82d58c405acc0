package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateDeviceToken("dev-1", 1)
	require.NoError(t, err)

	claims, err := ValidateDeviceToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", claims.DeviceID)

	SetJWTSecret("other-secret")
	_, err = ValidateDeviceToken(token)
	assert.Error(t, err)

	SetJWTSecret("test-secret")
	expired, err := GenerateDeviceToken("dev-1", -1)
	require.NoError(t, err)
	_, err = ValidateDeviceToken(expired)
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, total := Paginate(items, NormalizePagination(PaginationParams{Page: 2, Limit: 2}))
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, int64(5), total)

	page, _ = Paginate(items, NormalizePagination(PaginationParams{Page: 3, Limit: 2}))
	assert.Equal(t, []int{5}, page)

	page, _ = Paginate(items, NormalizePagination(PaginationParams{Page: 9, Limit: 2}))
	assert.Empty(t, page)

	params := NormalizePagination(PaginationParams{Page: 0, Limit: 500, Order: "sideways"})
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)

	result := CreatePaginationResult([]int{1, 2}, 5, NormalizePagination(PaginationParams{Page: 1, Limit: 2}))
	assert.Equal(t, 3, result.TotalPages)
}

type signup struct {
	Username string `validate:"required,username"`
	Phone    string `validate:"omitempty,phone"`
	Role     string `validate:"required,role"`
	Language string `validate:"omitempty,language"`
	View     string `validate:"omitempty,view"`
}

func TestCustomValidators(t *testing.T) {
	assert.NoError(t, ValidateStruct(signup{Username: "elif.k", Phone: "+905551234567", Role: "customer", Language: "tr", View: "basket"}))

	err := ValidateStruct(signup{Username: "a!", Phone: "12", Role: "admin", Language: "fr", View: "admin"})
	require.Error(t, err)

	fields := map[string]string{}
	for _, e := range GetValidationErrors(err) {
		fields[e.Field] = e.Tag
	}
	assert.Equal(t, map[string]string{"username": "username", "phone": "phone", "role": "role", "language": "language", "view": "view"}, fields)
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
	assert.Equal(t, HashBytes([]byte("abc")), HashString("abc"))
}

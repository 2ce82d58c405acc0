// internal/store/seed.go
package store

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/models"
)

// Demo accounts created by Seed. All share SeedPassword.
const (
	SeedBrandOwnerID = "u-atelier"
	SeedSalesRepID   = "u-mert"
	SeedCustomerID   = "u-elif"
	SeedPassword     = "password123"
)

// Seed builds the cold-start state: a brand with one sales rep, a customer
// following the brand, a small catalog and an upcoming live stream.
func Seed() *AppState {
	now := time.Now().UTC()
	state := NewState()

	owner := models.User{
		ID:            SeedBrandOwnerID,
		Username:      "atelier_nova",
		AvatarURL:     "https://images.reelshop.dev/avatars/atelier.jpg",
		Bio:           "Womenswear atelier. Wholesale and retail.",
		Contact:       models.Contact{Email: "owner@atelier.example", Phone: "5550001"},
		Address:       models.Address{Street: "Bagdat Cad. 12", City: "Istanbul", PostalCode: "34728", Country: "TR"},
		FollowingIDs:  []string{},
		FollowerIDs:   []string{SeedCustomerID},
		Role:          models.RoleBrandOwner,
		TeamMemberIDs: []string{SeedSalesRepID},
		SizeGuideTemplates: []models.SizeGuideTemplate{{
			ID:   "sgt-dress",
			Name: "Dresses",
			Guide: models.SizeGuide{
				Headers: []string{"Bust", "Waist", "Length"},
				Rows:    map[string][]string{"S": {"84", "66", "110"}, "M": {"88", "70", "112"}, "L": {"94", "76", "114"}},
			},
		}},
		PackTemplates: []models.PackTemplate{{ID: "pt-run", Name: "Size run", Contents: map[string]int{"S": 2, "M": 2, "L": 2}}},
		Decks: []models.Deck{{
			ID:           "deck-summer",
			Name:         "Summer Edit",
			MediaURLs:    []string{"https://images.reelshop.dev/decks/summer.jpg"},
			ProductIDs:   []string{"p-linen-dress", "p-wrap-dress"},
			ProductCount: 2,
		}},
		Language:             models.LanguageTurkish,
		VoiceMessagesEnabled: true,
	}

	rep := models.User{
		ID:                   SeedSalesRepID,
		Username:             "mert_sales",
		AvatarURL:            "https://images.reelshop.dev/avatars/mert.jpg",
		Contact:              models.Contact{Email: "mert@atelier.example", Phone: "5550002"},
		Address:              models.DefaultAddress(),
		FollowingIDs:         []string{},
		FollowerIDs:          []string{},
		Role:                 models.RoleSalesRep,
		CompanyID:            SeedBrandOwnerID,
		CommissionRate:       10,
		Decks:                []models.Deck{},
		Language:             models.LanguageTurkish,
		VoiceMessagesEnabled: true,
	}

	customer := models.User{
		ID:           SeedCustomerID,
		Username:     "elif",
		AvatarURL:    "https://images.reelshop.dev/avatars/elif.jpg",
		Contact:      models.Contact{Email: "elif@example.com", Phone: "5550003"},
		Address:      models.DefaultAddress(),
		FollowingIDs: []string{SeedBrandOwnerID},
		FollowerIDs:  []string{},
		Role:         models.RoleCustomer,
		Decks:        []models.Deck{},
		Language:     models.LanguageEnglish,
	}

	for _, u := range []*models.User{&owner, &rep, &customer} {
		if err := u.SetPassword(SeedPassword); err != nil {
			logrus.WithError(err).WithField("user_id", u.ID).Error("Failed to hash seed password")
		}
	}
	state.Users = []models.User{owner, rep, customer}

	creator := owner.Summary()
	original := 149.0
	dressGuide := owner.SizeGuideTemplates[0].Guide
	state.Products = []models.Product{
		{
			ID:            "p-linen-dress",
			Name:          "Linen Midi Dress",
			Price:         119,
			OriginalPrice: &original,
			Description:   "Relaxed midi dress in washed linen.",
			Fabric:        &models.Fabric{Composition: "100% linen", Weight: "180 gsm", Care: "Machine wash 30C"},
			Variants: []models.Variant{
				{Name: "Sand", Color: "#d8c3a5", MediaURL: "https://images.reelshop.dev/p/linen-sand.jpg", MediaType: models.MediaTypeImage},
				{Name: "Olive", Color: "#6b705c", MediaURL: "https://images.reelshop.dev/p/linen-olive.mp4", MediaType: models.MediaTypeVideo},
			},
			Sizes:                 []string{"S", "M", "L"},
			SizeGuide:             &dressGuide,
			Creator:               creator,
			ShopTheLookProductIDs: []string{"p-wrap-dress"},
			Category:              "dresses",
			Tags:                  []string{"linen", "summer"},
			IsFeatured:            true,
			ViewCount:             1840,
			SalesCount:            96,
			CreatedAt:             now.Add(-72 * time.Hour),
		},
		{
			ID:          "p-wrap-dress",
			Name:        "Satin Wrap Dress",
			Price:       89,
			Description: "Bias-cut wrap dress, wholesale packs available.",
			Variants: []models.Variant{
				{Name: "Ruby", Color: "#9b111e", MediaURL: "https://images.reelshop.dev/p/wrap-ruby.jpg", MediaType: models.MediaTypeImage},
			},
			Sizes:       []string{"S", "M", "L"},
			IsWholesale: true,
			Packs: []models.Pack{
				{ID: "pack-run", Name: "Size run", Contents: map[string]int{"S": 2, "M": 2, "L": 2}, TotalQuantity: 6, Price: 420},
				{ID: "pack-m", Name: "Medium only", Contents: map[string]int{"M": 5}, TotalQuantity: 5, Price: 360},
			},
			Creator:    creator,
			Category:   "dresses",
			Tags:       []string{"satin", "evening"},
			ViewCount:  760,
			SalesCount: 31,
			CreatedAt:  now.Add(-48 * time.Hour),
		},
		{
			ID:          "p-knit-top",
			Name:        "Ribbed Knit Top",
			Price:       39,
			Description: "Fitted rib knit with a square neckline.",
			Variants: []models.Variant{
				{Name: "Ivory", Color: "#fffff0", MediaURL: "https://images.reelshop.dev/p/knit-ivory.jpg", MediaType: models.MediaTypeImage},
				{Name: "Black", Color: "#000000", MediaURL: "https://images.reelshop.dev/p/knit-black.jpg", MediaType: models.MediaTypeImage},
			},
			Sizes:     []string{"XS", "S", "M"},
			Creator:   creator,
			Category:  "tops",
			Tags:      []string{"knit"},
			ViewCount: 410,
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}

	scheduled := now.Add(2 * time.Hour)
	state.LiveStreams = []models.LiveStream{{
		ID:                 "ls-summer",
		HostID:             SeedBrandOwnerID,
		Title:              "Summer Edit Live",
		Status:             models.StreamStatusUpcoming,
		ScheduledAt:        &scheduled,
		ProductShowcaseIDs: []string{"p-linen-dress", "p-wrap-dress", "p-knit-top"},
		Comments:           []models.LiveComment{},
	}}

	return state
}

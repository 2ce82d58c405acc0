// internal/models/product.go
package models

import (
	"errors"
	"fmt"
	"time"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type Variant struct {
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	MediaURL  string    `json:"mediaUrl"`
	MediaType MediaType `json:"mediaType"`
}

// SizeGuide is a table of measurements: one row per size, one column per header.
type SizeGuide struct {
	Headers []string            `json:"headers"`
	Rows    map[string][]string `json:"rows"`
}

// Pack is a wholesale bundle sold at one price.
type Pack struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Contents      map[string]int `json:"contents"`
	TotalQuantity int            `json:"totalQuantity"`
	Price         float64        `json:"price"`
}

func (p Pack) ContentQuantity() int {
	total := 0
	for _, qty := range p.Contents {
		total += qty
	}
	return total
}

type Fabric struct {
	Composition string `json:"composition,omitempty"`
	Weight      string `json:"weight,omitempty"`
	Care        string `json:"care,omitempty"`
}

type Product struct {
	ID                    string      `json:"id"`
	Name                  string      `json:"name"`
	Price                 float64     `json:"price"`
	OriginalPrice         *float64    `json:"originalPrice,omitempty"`
	Description           string      `json:"description"`
	Fabric                *Fabric     `json:"fabric,omitempty"`
	Variants              []Variant   `json:"variants"`
	Sizes                 []string    `json:"sizes,omitempty"`
	SizeGuide             *SizeGuide  `json:"sizeGuide,omitempty"`
	IsWholesale           bool        `json:"isWholesale"`
	Packs                 []Pack      `json:"packs,omitempty"`
	Creator               UserSummary `json:"creator"`
	ShopTheLookProductIDs []string    `json:"shopTheLookProductIds,omitempty"`
	Category              string      `json:"category"`
	Tags                  []string    `json:"tags"`
	IsFeatured            bool        `json:"isFeatured"`
	ViewCount             int64       `json:"viewCount"`
	SalesCount            int64       `json:"salesCount"`
	CreatedAt             time.Time   `json:"createdAt"`
}

var (
	ErrNoVariants    = errors.New("product must have at least one variant")
	ErrNoPacks       = errors.New("wholesale product must have at least one pack")
	ErrPackQuantity  = errors.New("pack total quantity does not match its contents")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Validate checks the structural invariants of a product.
func (p *Product) Validate() error {
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if len(p.Variants) == 0 {
		return ErrNoVariants
	}
	if p.IsWholesale {
		if len(p.Packs) == 0 {
			return ErrNoPacks
		}
		for _, pack := range p.Packs {
			if pack.Price < 0 {
				return ErrNegativePrice
			}
			if pack.TotalQuantity != pack.ContentQuantity() {
				return fmt.Errorf("pack %q: %w", pack.Name, ErrPackQuantity)
			}
		}
	}
	return nil
}

func (p *Product) Pack(packID string) *Pack {
	for i := range p.Packs {
		if p.Packs[i].ID == packID {
			return &p.Packs[i]
		}
	}
	return nil
}

func (p *Product) Variant(name string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return &p.Variants[i]
		}
	}
	return nil
}

// Package shop holds the struct types scaffolding is tested against.
package shop

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

type Label = string

type Category struct {
	ID     string
	Label  Label     `json:"label"`
	Parent *Category `json:"parent"`
}

type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	Dimensions [3]float64
	Tags       []string
	Options    map[string]string
	Note       *string
	Status     Status
	Internal   string `json:"-"`
	Categories []*Category
	Maker      *Maker
	Size       Size
	CreatedAt  time.Time `json:"created"`

	secret string
}

type Size struct {
	Width, Height float64
}

type Maker struct {
	ID      uuid.UUID
	Company string
	Logo    []byte
}

// Settings has no identity and is no resource.
type Settings struct {
	Theme string
}

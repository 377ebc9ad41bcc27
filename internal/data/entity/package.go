package entity

import "github.com/shopspring/decimal"

// Package is a travel package. MaxTravelers is the capacity per travel date.
type Package struct {
	Base
	Destination      string          `db:"destination"`
	Description      *string         `db:"description"`
	Price            decimal.Decimal `db:"price"`
	Duration         int             `db:"duration"`
	IncludedServices *string         `db:"included_services"`
	Images           []string        `db:"images"`
	Availability     bool            `db:"availability"`
	MaxTravelers     int             `db:"max_travelers"`
	DifficultyLevel  *string         `db:"difficulty_level"`
	Season           *string         `db:"season"`
}

// PackageFilter narrows catalog listings. Zero values mean "no filter".
type PackageFilter struct {
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinDuration   int
	MaxDuration   int
	AvailableOnly bool
}

type PackageRating struct {
	Average decimal.Decimal
	Count   int64
}

// RankedPackage is a catalog entry together with the figures it was ranked by.
type RankedPackage struct {
	Package  *Package
	Rating   PackageRating
	Bookings int64
}

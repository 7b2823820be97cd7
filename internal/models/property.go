package models

import "time"

// ListingType is whether a property is offered for rent or for sale.
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingTypeRent || t == ListingTypeSale
}

// PropertyStatus is the sale status of a listing. Transitions are unconstrained.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusPending   PropertyStatus = "pending"
	StatusSold      PropertyStatus = "sold"
)

// Valid reports whether s is a known status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	}
	return false
}

// PropertyType is a named category such as "House" or "Apartment".
// Names are unique.
type PropertyType struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Property is a listing. OwnerID is bound at creation and never changes.
// PropertyType, Owner and Images are populated by reads that join them.
type Property struct {
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	PropertyTypeID *int64          `json:"-"`
	PropertyType   *PropertyType   `json:"property_type"`
	Owner          *User           `json:"owner,omitempty"`
	Latitude       *float64        `json:"latitude"`
	Longitude      *float64        `json:"longitude"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ListingType    ListingType     `json:"listing_type"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	State          string          `json:"state"`
	ZipCode        string          `json:"zip_code"`
	Status         PropertyStatus  `json:"status"`
	Images         []PropertyImage `json:"images"`
	Price          float64         `json:"price"`
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"-"`
	Bedrooms       int             `json:"bedrooms"`
	Bathrooms      int             `json:"bathrooms"`
	SquareFeet     int             `json:"square_feet"`
	IsVerified     bool            `json:"is_verified"`
}

// PropertyImage is an uploaded picture of a property. Image holds the public
// URL; ObjectKey is the storage key used for deletion. More than one image
// per property may be primary.
type PropertyImage struct {
	CreatedAt  time.Time `json:"created_at"`
	Image      string    `json:"image"`
	ObjectKey  string    `json:"-"`
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property"`
	IsPrimary  bool      `json:"is_primary"`
}

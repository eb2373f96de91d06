package order

import (
	"time"

	"greencycle-be/internal/points"
	"greencycle-be/internal/user"
)

// Order is a pickup request for a single material/quantity pair.
// CollectorID stays nil exactly as long as the order is PENDING.
type Order struct {
	ID          int64
	Status      Status
	OrderDate   time.Time
	Material    points.MaterialType
	Quantity    float64 // kilograms
	UserID      int64
	CollectorID *int64
	FactoryID   int64
	City        string
	Street      string
	Building    string
	Apartment   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	Email    string
	Material points.MaterialType
	Quantity float64
	Address  user.Address
}

// MinQuantityKg is the smallest pickup worth dispatching a collector for.
const MinQuantityKg = 2.0

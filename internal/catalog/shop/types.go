// Package shop holds the entity types of a small store
package shop

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

type Customer struct {
	Id        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

type Product struct {
	source.Abstract
	Id    int64
	Sku   string
	Name  string
	Price float64
}

type PhysicalProduct struct {
	Product
	WeightGrams int32
}

type DigitalProduct struct {
	Product
	DownloadURL string
}

type Order struct {
	Id         int64
	CustomerId uuid.UUID
	PlacedAt   time.Time
	ShippedAt  sql.NullTime
	Total      float64
}

type OrderLine struct {
	Id        int64
	OrderId   int64
	ProductId int64
	Quantity  int32
	UnitPrice float64
	Note      string `model:"-"`
}

package models

import "time"

// PropertyType classifies a property.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypePlot       PropertyType = "plot"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeFarmhouse  PropertyType = "farmhouse"
)

// PropertyTypes lists every accepted property type.
var PropertyTypes = []string{
	string(PropertyTypeApartment),
	string(PropertyTypeVilla),
	string(PropertyTypeHouse),
	string(PropertyTypePlot),
	string(PropertyTypeCommercial),
	string(PropertyTypeFarmhouse),
}

// PropertyStatus is the market state of a property. Any status may follow any other.
type PropertyStatus string

const (
	PropertyStatusActive  PropertyStatus = "active"
	PropertyStatusPending PropertyStatus = "pending"
	PropertyStatusSold    PropertyStatus = "sold"
	PropertyStatusRented  PropertyStatus = "rented"
)

// PropertyStatuses lists every accepted property status.
var PropertyStatuses = []string{
	string(PropertyStatusActive),
	string(PropertyStatusPending),
	string(PropertyStatusSold),
	string(PropertyStatusRented),
}

// Property represents a listed property.
type Property struct {
	ID          int64          `bson:"_id" json:"id" db:"id"`
	Title       string         `bson:"title" json:"title" db:"title" validate:"required,max=200"`
	Slug        string         `bson:"slug" json:"slug" db:"slug"`
	Description string         `bson:"description" json:"description" db:"description" validate:"max=20000"`
	Type        PropertyType   `bson:"type" json:"type" db:"type" validate:"required,oneof=apartment villa house plot commercial farmhouse"`
	Status      PropertyStatus `bson:"status" json:"status" db:"status" validate:"required,oneof=active pending sold rented"`
	Location    string         `bson:"location" json:"location" db:"location" validate:"required,max=200"`
	Price       float64        `bson:"price" json:"price" db:"price" validate:"gte=0"`
	Size        float64        `bson:"size" json:"size" db:"size" validate:"gte=0"`
	Bedrooms    *int           `bson:"bedrooms,omitempty" json:"bedrooms,omitempty" db:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *int           `bson:"bathrooms,omitempty" json:"bathrooms,omitempty" db:"bathrooms" validate:"omitempty,gte=0"`
	Featured    bool           `bson:"featured" json:"featured" db:"featured"`
	Images      StringList     `bson:"images" json:"images" db:"images"`
	Views       int64          `bson:"views" json:"views" db:"views"`
	OwnerID     int64          `bson:"owner_id" json:"ownerId" db:"owner_id"`
	CreatedAt   time.Time      `bson:"created_at" json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updatedAt" db:"updated_at"`
}

// IsPublic reports whether anonymous visitors may see the property.
func (p *Property) IsPublic() bool {
	return p.Status == PropertyStatusActive
}

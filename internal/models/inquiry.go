package models

import "time"

// InquiryStatus tracks how far an inquiry has been handled.
type InquiryStatus string

const (
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusContacted  InquiryStatus = "contacted"
	InquiryStatusInProgress InquiryStatus = "in-progress"
	InquiryStatusResolved   InquiryStatus = "resolved"
	InquiryStatusClosed     InquiryStatus = "closed"
)

// InquiryStatuses lists every accepted inquiry status.
var InquiryStatuses = []string{
	string(InquiryStatusNew),
	string(InquiryStatusContacted),
	string(InquiryStatusInProgress),
	string(InquiryStatusResolved),
	string(InquiryStatusClosed),
}

// Inquiry is a lead submitted by a visitor, optionally about a property.
type Inquiry struct {
	ID         int64         `bson:"_id" json:"id" db:"id"`
	Name       string        `bson:"name" json:"name" db:"name" validate:"required,max=120"`
	Email      string        `bson:"email" json:"email" db:"email" validate:"required,email"`
	Phone      string        `bson:"phone" json:"phone" db:"phone" validate:"max=30"`
	Message    string        `bson:"message" json:"message" db:"message" validate:"required,max=5000"`
	PropertyID *int64        `bson:"property_id,omitempty" json:"propertyId,omitempty" db:"property_id"`
	UserID     *int64        `bson:"user_id,omitempty" json:"userId,omitempty" db:"user_id"`
	Status     InquiryStatus `bson:"status" json:"status" db:"status" validate:"required,oneof=new contacted in-progress resolved closed"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updatedAt" db:"updated_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a registered club member. Records are immutable after
// registration except for the administrative department correction.
type Member struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RegisterNumber   int64              `bson:"registerNumber" json:"registerNumber" validate:"required,min=810000000000,max=810025999999"`
	Name             string             `bson:"name" json:"name" validate:"required"`
	Email            string             `bson:"email" json:"email" validate:"required,email"`
	Gender           string             `bson:"gender" json:"gender" validate:"required"`
	Department       string             `bson:"department" json:"department"`
	PhoneNumber      int64              `bson:"phoneNumber" json:"phoneNumber" validate:"required,min=4444444444,max=9999999999"`
	Year             int                `bson:"year" json:"year" validate:"required"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	MembershipNumber int64              `bson:"membershipNumber" json:"membershipNumber"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DepartmentUpdate is the payload for the department correction endpoint.
type DepartmentUpdate struct {
	Department string `json:"department" validate:"required"`
}

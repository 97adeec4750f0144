package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote is the per-member voting record: the current OTP, the cast flag, and
// the final ballot once cast. One record per member, keyed by memberId
// (unique index). Once Done is true the record never changes again.
type Vote struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MemberID            primitive.ObjectID `bson:"memberId" json:"memberId"`
	RegisterNumber      int64              `bson:"registerNumber" json:"registerNumber"`
	OTP                 *int32             `bson:"otp,omitempty" json:"-"`
	President           string             `bson:"president,omitempty" json:"president,omitempty"`
	VicePresident       string             `bson:"vicePresident,omitempty" json:"vicePresident,omitempty"`
	Secretary           string             `bson:"secretary,omitempty" json:"secretary,omitempty"`
	YouthRepresentative string             `bson:"youthRepresentative,omitempty" json:"youthRepresentative,omitempty"`
	Done                bool               `bson:"done" json:"done"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Ballot is the set of choices submitted at vote-casting time.
type Ballot struct {
	President           string `json:"president"`
	VicePresident       string `json:"vicePresident"`
	Secretary           string `json:"secretary"`
	YouthRepresentative string `json:"youthRepresentative"`
}

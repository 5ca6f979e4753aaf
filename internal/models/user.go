package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVolunteer, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// In reports whether r is a member of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

type User struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username                string             `bson:"username" json:"username"`
	Password                string             `bson:"password,omitempty" json:"-"`
	Role                    Role               `bson:"role" json:"role"`
	VolunteerRequestPending bool               `bson:"volunteer_request_pending" json:"volunteerRequestPending"`
	CreatedAt               time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PendingVolunteer reports whether the user has an open volunteer application.
func (u *User) PendingVolunteer() bool {
	return u.Role == RoleUser && u.VolunteerRequestPending
}

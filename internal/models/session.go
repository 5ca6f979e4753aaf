package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the authenticated principal behind a request. It is rebuilt from
// the credential store on every request, so role changes apply immediately.
type Session struct {
	UserID                  primitive.ObjectID `json:"id"`
	Username                string             `json:"username"`
	Role                    Role               `json:"role"`
	VolunteerRequestPending bool               `json:"volunteerRequestPending"`
	ExpiresAt               time.Time          `json:"expiresAt"`
}

// Roles allowed to record and delete waste entries.
var (
	RecordingRoles = []Role{RoleVolunteer, RoleAdmin, RoleManager}
	DeletingRoles  = []Role{RoleAdmin, RoleManager}
)

func (s *Session) CanRecord() bool { return s.Role.In(RecordingRoles...) }

func (s *Session) CanDelete() bool { return s.Role.In(DeletingRoles...) }

package services

import (
	"context"
	"errors"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"go.uber.org/zap"
)

// VolunteerService runs the pending -> volunteer approval workflow.
type VolunteerService struct {
	users UserStore
	log   *zap.Logger
}

func NewVolunteerService(users UserStore, log *zap.Logger) *VolunteerService {
	return &VolunteerService{users: users, log: log}
}

func (s *VolunteerService) ListPending(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListPendingVolunteers(ctx)
	if err != nil {
		return nil, internalError(s.log, "list pending volunteers", err)
	}
	return users, nil
}

// Approve promotes a pending applicant. Approving twice fails the second time.
func (s *VolunteerService) Approve(ctx context.Context, id string) error {
	oid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if err := s.users.ApproveVolunteer(ctx, oid); err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrConflict) {
			return err
		}
		return internalError(s.log, "approve volunteer", err)
	}
	s.log.Info("volunteer approved", zap.String("user_id", id))
	return nil
}

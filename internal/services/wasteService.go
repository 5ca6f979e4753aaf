package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WasteStore persists waste entries. It has no notion of roles.
type WasteStore interface {
	Create(ctx context.Context, entry *models.WasteEntry) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WasteEntry, error)
	List(ctx context.Context) ([]models.WasteEntry, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.WasteUpdate) (*models.WasteEntry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summary(ctx context.Context, timezone string) (*models.Summary, error)
}

// WasteInput is a new collection record as submitted by a client.
type WasteInput struct {
	Location string
	Weight   float64
	Category string
}

type WasteService struct {
	store WasteStore
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
}

func NewWasteService(store WasteStore, loc *time.Location, log *zap.Logger) *WasteService {
	return &WasteService{store: store, loc: loc, now: time.Now, log: log}
}

// Create records an entry owned by actor, stamping the collection time and its
// display date and time in the service's location.
func (s *WasteService) Create(ctx context.Context, in WasteInput, actor primitive.ObjectID) (*models.WasteEntry, error) {
	location, err := validLocation(in.Location)
	if err != nil {
		return nil, err
	}
	if err := validWeight(in.Weight); err != nil {
		return nil, err
	}
	category, err := validCategory(in.Category)
	if err != nil {
		return nil, err
	}

	now := s.now()
	local := now.In(s.loc)
	entry := &models.WasteEntry{
		Location:    location,
		Weight:      in.Weight,
		Category:    category,
		CollectedAt: now.UTC(),
		Date:        local.Format(models.DisplayDateLayout),
		Time:        local.Format(models.DisplayTimeLayout),
		User:        actor,
	}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, internalError(s.log, "create waste entry", err)
	}
	s.log.Info("waste entry recorded", zap.String("id", entry.ID.Hex()), zap.String("user_id", actor.Hex()),
		zap.String("category", string(category)), zap.Float64("weight", entry.Weight))
	return entry, nil
}

func (s *WasteService) List(ctx context.Context) ([]models.WasteEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, internalError(s.log, "list waste entries", err)
	}
	return entries, nil
}

// Update changes only the supplied fields.
func (s *WasteService) Update(ctx context.Context, id string, upd models.WasteUpdate) (*models.WasteEntry, error) {
	oid, err := parseID(id, "waste entry")
	if err != nil {
		return nil, err
	}
	if upd.Location != nil {
		location, err := validLocation(*upd.Location)
		if err != nil {
			return nil, err
		}
		upd.Location = &location
	}
	if upd.Weight != nil {
		if err := validWeight(*upd.Weight); err != nil {
			return nil, err
		}
	}
	if upd.Category != nil {
		if _, err := validCategory(string(*upd.Category)); err != nil {
			return nil, err
		}
	}

	entry, err := s.store.Update(ctx, oid, upd)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, internalError(s.log, "update waste entry", err)
	}
	return entry, nil
}

func (s *WasteService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "waste entry")
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return internalError(s.log, "delete waste entry", err)
	}
	s.log.Info("waste entry deleted", zap.String("id", id))
	return nil
}

func validLocation(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("%w: location is required", common.ErrValidation)
	}
	return location, nil
}

func validWeight(weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return fmt.Errorf("%w: weight must be a positive number", common.ErrValidation)
	}
	return nil
}

func validCategory(category string) (models.Category, error) {
	c := models.Category(category)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", common.ErrValidation, category)
	}
	return c, nil
}

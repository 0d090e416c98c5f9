package vehicles

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"happi-app-go/internal/validation"
	"happi-app-go/pkg/logger"
)

const (
	DefaultMaxImageBytes = 5 * 1024 * 1024
	imageKeyPrefix       = "vehicle_cards/"
	imageField           = "vehicle_card_image"
)

type Service struct {
	repo          Repository
	images        ImageStore
	maxImageBytes int64
	log           logger.Logger
	now           func() time.Time
}

func NewService(repo Repository, images ImageStore, maxImageBytes int64, log logger.Logger) *Service {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:          repo,
		images:        images,
		maxImageBytes: maxImageBytes,
		log:           log,
		now:           time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]Vehicle, error) {
	vehicles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	insured, err := s.repo.InsuredVehicleIDs(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	covered := make(map[string]struct{}, len(insured))
	for _, id := range insured {
		covered[id] = struct{}{}
	}

	for i := range vehicles {
		_, vehicles[i].HasInsurance = covered[vehicles[i].ID]
		s.decorate(&vehicles[i])
	}
	return vehicles, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Detail, error) {
	vehicle, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	policies, err := s.repo.ActivePolicies(ctx, vehicle.ID, s.now())
	if err != nil {
		return nil, err
	}
	if policies == nil {
		policies = []PolicySummary{}
	}

	vehicle.HasInsurance = len(policies) > 0
	s.decorate(vehicle)
	return &Detail{Vehicle: *vehicle, ActivePolicies: policies}, nil
}

// Owned returns the vehicle when it belongs to userID.
func (s *Service) Owned(ctx context.Context, userID, id string) (*Vehicle, error) {
	vehicle, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.decorate(vehicle)
	return vehicle, nil
}

func (s *Service) Create(ctx context.Context, userID string, input Input, image *Image) (*Vehicle, error) {
	input = normalizeInput(input)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	key, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}

	vehicle := Vehicle{
		ID:           uuid.NewString(),
		UserID:       userID,
		Make:         input.Make,
		Model:        input.Model,
		Year:         input.Year,
		LicensePlate: input.LicensePlate,
		VIN:          input.VIN,
		Color:        input.Color,
	}
	if key != "" {
		vehicle.VehicleCardImagePath = &key
	}

	if err := s.repo.Create(ctx, &vehicle); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}

	s.decorate(&vehicle)
	return &vehicle, nil
}

// Update replaces the vehicle fields. A new image is stored first, the row
// updated next, and the previous image removed last.
func (s *Service) Update(ctx context.Context, userID, id string, input Input, image *Image) (*Vehicle, error) {
	input = normalizeInput(input)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	key, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}

	var (
		result  Vehicle
		oldPath string
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		vehicle, err := tx.Get(ctx, userID, id)
		if err != nil {
			return err
		}

		vehicle.Make = input.Make
		vehicle.Model = input.Model
		vehicle.Year = input.Year
		vehicle.LicensePlate = input.LicensePlate
		vehicle.VIN = input.VIN
		vehicle.Color = input.Color
		if key != "" {
			if vehicle.VehicleCardImagePath != nil {
				oldPath = *vehicle.VehicleCardImagePath
			}
			vehicle.VehicleCardImagePath = &key
		}

		if err := tx.Update(ctx, vehicle); err != nil {
			return err
		}
		result = *vehicle
		return nil
	})
	if err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}

	s.removeImage(ctx, oldPath)
	s.decorate(&result)
	return &result, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	var imagePath string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		vehicle, err := tx.Get(ctx, userID, id)
		if err != nil {
			return err
		}

		active, err := tx.ActivePolicies(ctx, vehicle.ID, s.now())
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return ErrVehicleHasActivePolicy
		}

		if vehicle.VehicleCardImagePath != nil {
			imagePath = *vehicle.VehicleCardImagePath
		}
		return tx.Delete(ctx, vehicle.ID)
	})
	if err != nil {
		return err
	}

	s.removeImage(ctx, imagePath)
	return nil
}

func (s *Service) storeImage(ctx context.Context, image *Image) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", nil
	}
	if int64(len(image.Data)) > s.maxImageBytes {
		return "", validation.Single(imageField, fmt.Sprintf("The vehicle card image field must not be greater than %d kilobytes.", s.maxImageBytes/1024))
	}

	mtype := mimetype.Detect(image.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", validation.Single(imageField, "The vehicle card image field must be an image.")
	}
	if s.images == nil {
		return "", fmt.Errorf("vehicles: image store not configured")
	}

	key := imageKeyPrefix + uuid.NewString() + mtype.Extension()
	if err := s.images.Save(ctx, key, mtype.String(), bytes.NewReader(image.Data)); err != nil {
		return "", fmt.Errorf("store vehicle image: %w", err)
	}
	return key, nil
}

func (s *Service) removeImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.InternalError("vehicles: remove image failed", err, "path", key)
	}
}

func (s *Service) decorate(vehicle *Vehicle) {
	if vehicle.VehicleCardImagePath != nil && s.images != nil {
		vehicle.VehicleCardImageURL = s.images.URL(*vehicle.VehicleCardImagePath)
	}
}

func normalizeInput(input Input) Input {
	input.Make = strings.TrimSpace(input.Make)
	input.Model = strings.TrimSpace(input.Model)
	input.Year = strings.TrimSpace(input.Year)
	input.LicensePlate = strings.TrimSpace(input.LicensePlate)
	input.VIN = trimOptional(input.VIN)
	input.Color = trimOptional(input.Color)
	return input
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

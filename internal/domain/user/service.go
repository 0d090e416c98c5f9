package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"happi-app-go/internal/validation"
	"happi-app-go/pkg/logger"
)

type Service struct {
	repo   Repository
	hasher PasswordHasher
	files  FileRemover
	log    logger.Logger
}

func NewService(repo Repository, hasher PasswordHasher, files FileRemover, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, hasher: hasher, files: files, log: log}
}

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ProfileInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.PasswordConfirmation != "" && input.PasswordConfirmation != input.Password {
		return nil, validation.Single("password", "The password field confirmation does not match.")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   hash,
		MembershipTier: TierStandard,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, validation.Single("email", "The email has already been taken.")
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if phone == "" {
			input.PhoneNumber = nil
		} else {
			input.PhoneNumber = &phone
		}
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var result *User
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.EmailTakenByOther(ctx, input.Email, userID)
		if err != nil {
			return err
		}
		if taken {
			return validation.Single("email", "The email has already been taken.")
		}

		if err := tx.UpdateProfile(ctx, userID, input.Name, input.Email, input.PhoneNumber); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				return validation.Single("email", "The email has already been taken.")
			}
			return err
		}

		result, err = tx.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAccount removes the user with everything that cascades from it. Stored
// vehicle card images are removed after the rows are gone; a failed file
// removal is logged and does not undo the deletion.
func (s *Service) DeleteAccount(ctx context.Context, userID, password string) error {
	if password == "" {
		return validation.Single("password", "The password field is required.")
	}

	var paths []string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		user, err := tx.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
			return validation.Single("password", "The password is incorrect.")
		}

		paths, err = tx.VehicleImagePaths(ctx, userID)
		if err != nil {
			return err
		}
		return tx.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	if s.files == nil {
		return nil
	}
	for _, path := range paths {
		if err := s.files.Delete(ctx, path); err != nil {
			s.log.InternalError("users.delete: remove vehicle image failed", err, "user_id", userID, "path", path)
		}
	}
	return nil
}

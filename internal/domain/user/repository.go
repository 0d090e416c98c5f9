package user

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailTakenByOther(ctx context.Context, email, userID string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, name, email string, phone *string) error
	VehicleImagePaths(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, userID string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// FileRemover deletes stored uploads that belong to a removed account.
type FileRemover interface {
	Delete(ctx context.Context, path string) error
}

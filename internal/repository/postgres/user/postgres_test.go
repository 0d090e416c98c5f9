package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "happi-app-go/internal/domain/user"
	"happi-app-go/internal/repository/repotest"
)

func TestCreateDuplicateEmail(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	repotest.CreateUser(t, db, "taken@example.com")

	err := repo.Create(context.Background(), &domain.User{
		ID:             uuid.NewString(),
		Name:           "Other",
		Email:          "taken@example.com",
		PasswordHash:   "hash",
		MembershipTier: domain.TierStandard,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLookups(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	created := repotest.CreateUser(t, db, "a@example.com")

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	first := repotest.CreateUser(t, db, "a@example.com")
	repotest.CreateUser(t, db, "b@example.com")

	taken, err := repo.EmailTakenByOther(ctx, "b@example.com", first.ID)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.EmailTakenByOther(ctx, "a@example.com", first.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	phone := "+62811"
	require.NoError(t, repo.UpdateProfile(ctx, first.ID, "Alice", "alice@example.com", &phone))

	updated, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
	require.NotNil(t, updated.PhoneNumber)
	assert.Equal(t, phone, *updated.PhoneNumber)

	err = repo.UpdateProfile(ctx, first.ID, "Alice", "b@example.com", nil)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	err = repo.UpdateProfile(ctx, uuid.NewString(), "Ghost", "ghost@example.com", nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteAndImagePaths(t *testing.T) {
	db := repotest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	owner := repotest.CreateUser(t, db, "a@example.com")

	withImage := repotest.CreateVehicle(t, db, owner.ID)
	repotest.CreateVehicle(t, db, owner.ID)
	require.NoError(t, db.Table("vehicles").Where("id = ?", withImage.ID).Update("vehicle_card_image_path", "vehicle_cards/a.png").Error)

	paths, err := repo.VehicleImagePaths(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vehicle_cards/a.png"}, paths)

	require.NoError(t, repo.Transaction(ctx, func(tx domain.Repository) error {
		return tx.Delete(ctx, owner.ID)
	}))
	_, err = repo.GetByID(ctx, owner.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, owner.ID), domain.ErrUserNotFound)
}

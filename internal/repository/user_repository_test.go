package repository

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByIDsReturnsOnlyExisting(t *testing.T) {
	db := setupRepoTestDB(t)
	users := NewUserRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	ctx := context.Background()
	found, err := users.GetByIDs(ctx, []uint{alice.ID, bob.ID, 9999})
	require.NoError(t, err)
	require.Len(t, found, 2)

	names := []string{found[0].Username, found[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	found, err = users.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := setupRepoTestDB(t)
	users := NewUserRepository(db)
	createTestUser(t, db, "carol")

	ctx := context.Background()
	user, err := users.GetByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "carol", user.Username)

	// Unknown email is nil, nil rather than an error.
	user, err = users.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_CreateDuplicateIsValidationError(t *testing.T) {
	db := setupRepoTestDB(t)
	users := NewUserRepository(db)
	createTestUser(t, db, "dave")

	ctx := context.Background()
	err := users.Create(ctx, &models.User{
		Username: "dave", Email: "dave@example.com", Password: "pw",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

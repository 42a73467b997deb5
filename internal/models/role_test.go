package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tastebud/internal/models"
)

func TestRoleOrder(t *testing.T) {
	ordered := []models.Role{
		models.RoleUser,
		models.RoleProUser,
		models.RoleModerator,
		models.RoleAdmin,
	}

	for i, lower := range ordered {
		for j, higher := range ordered {
			got := higher.AtLeast(lower)
			assert.Equal(t, j >= i, got, "%s.AtLeast(%s)", higher, lower)
		}
	}
}

func TestUnknownRoleIsAlwaysBelow(t *testing.T) {
	assert.False(t, models.Role("SUPERADMIN").Known())
	assert.False(t, models.Role("SUPERADMIN").AtLeast(models.RoleUser))
	assert.False(t, models.Role("").AtLeast(models.RoleUser))

	// A known tier measured against an unknown minimum also fails closed.
	assert.False(t, models.RoleAdmin.AtLeast(models.Role("GOD")))
}

func TestPublicProjectionStripsSensitiveFields(t *testing.T) {
	user := models.User{
		ID:       7,
		Username: "alice",
		Email:    "alice@example.com",
		Password: "$2a$10$hash",
		Token:    "secret-token",
		Role:     models.RoleProUser,
		Bio:      "eats out a lot",
		Location: "Lisbon",
	}

	pub := user.Public()
	assert.Equal(t, uint(7), pub.ID)
	assert.Equal(t, "alice", pub.Username)
	assert.Equal(t, models.RoleProUser, pub.Role)
	assert.Equal(t, "eats out a lot", pub.Bio)
	assert.Equal(t, "Lisbon", pub.Location)
}

package authz

import (
	"testing"

	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOwnerOnly(t *testing.T) {
	assert.NoError(t, OwnerOnly(1, 1))

	err := OwnerOnly(1, 2)
	assert.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	// No special cases: identical IDs always pass, differing IDs never do.
	assert.NoError(t, OwnerOnly(0, 0))
	assert.Error(t, OwnerOnly(0, 1))
	assert.Error(t, OwnerOnly(2, 1))
}

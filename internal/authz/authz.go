// Package authz decides whether a caller may mutate a resource.
//
// The guard is a pure, stateless predicate with no database access of its
// own: callers supply the resource's current owner, read from the store
// within the same transaction as the mutation they are about to perform.
package authz

import (
	"glimpse/internal/models"
)

// OwnerOnly allows the action only when the caller owns the resource.
// Returns nil when callerID == resourceOwnerID, a FORBIDDEN AppError otherwise.
func OwnerOnly(callerID, resourceOwnerID uint) error {
	if callerID == resourceOwnerID {
		return nil
	}
	return models.NewForbiddenError("You do not own this resource")
}

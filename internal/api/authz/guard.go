// Package authz decides whether a caller may mutate a resource.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

// CanMutate is true iff the caller owns the resource. Post owners are authors,
// profile owners are the profile's own user.
func CanMutate(callerID, resourceOwnerID uuid.UUID) bool {
	return callerID == resourceOwnerID
}

// RequireOwner returns types.ErrForbidden when CanMutate denies the caller.
// Callers must resolve the resource first so that a missing resource reports
// types.ErrNotFound instead.
func RequireOwner(callerID, resourceOwnerID uuid.UUID) error {
	if !CanMutate(callerID, resourceOwnerID) {
		return fmt.Errorf("%w: caller %s does not own resource of %s", types.ErrForbidden, callerID, resourceOwnerID)
	}
	return nil
}

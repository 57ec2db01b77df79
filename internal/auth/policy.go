package auth

import "bayou-blog/internal/models"

// CanPerform decides whether identity may run a gated action against an
// ownable entity. Pure function, no side effects; the same rule applies to
// posts and comments.
//
// Admins are always allowed. Everyone else must own the entity: the
// entity's author id must be non-empty and string-equal to the identity's
// user id. Anonymous identities and synthetic admins without a user id can
// never own anything, so the nil-id case falls out of the same comparison.
func CanPerform(identity models.Identity, action models.Action, entity models.Ownable) bool {
	if identity.IsAnonymous() {
		return false
	}
	if identity.Role == models.RoleAdmin {
		return true
	}

	owner := entity.Owner()
	userID := identity.UserIDString()
	return owner != "" && userID != "" && owner == userID
}

package domain

// Owned is implemented by any entity scoped to a single user.
type Owned interface {
	OwnerID() string
}

// BelongsTo reports whether the entity is owned by the given user. All
// ownership-sensitive reads go through this predicate so the check cannot
// drift between handlers.
func BelongsTo(entity Owned, userID string) bool {
	return entity != nil && userID != "" && entity.OwnerID() == userID
}

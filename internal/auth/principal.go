package auth

// Principal is the verified identity bound to a single request. It is
// constructed from a validated token, passed explicitly to handlers, and
// discarded at request end; it is never persisted.
type Principal struct {
	UserID uint64
	Email  string
}

// Authorize decides whether the principal may act on a resource owned by
// resourceOwnerID. The sole criterion is exact identity match; there are no
// roles and no elevated accounts.
func (p Principal) Authorize(resourceOwnerID uint64) bool {
	return p.UserID == resourceOwnerID
}

package booking

import "github.com/iliyamo/room-reservation/internal/model"

// BookedBy decides whether a listing may reveal who created a slot.  It
// returns the creator's display name when the viewer is STAFF or is the
// creator (matched by email, the natural key); otherwise nil.  The filter
// is applied per slot when building listings and is idempotent: the
// underlying record keeps the creator, only the representation is
// redacted.
func BookedBy(creatorEmail, creatorName string, viewer model.Identity) *string {
	if viewer.IsStaff() || viewer.Email == creatorEmail {
		name := creatorName
		return &name
	}
	return nil
}

package profile

import "moviecatalog/errs"

var (
	ErrUnavailable = errs.Errorf(errs.EUNAVAILABLE, "profile: enrichment unavailable")
	ErrNotFound    = errs.Errorf(errs.ENOTFOUND, "profile: not found")
)

// Profile is a read-only view of a user kept by a third-party service.
// It is never persisted.
type Profile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

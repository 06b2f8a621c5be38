package domain

// Session is the resolved identity for one authenticated request.
// It is passed explicitly at every call boundary instead of living in
// ambient global state, so services stay testable without a live
// identity provider. A zero ProfileID means anonymous.
type Session struct {
	ProfileID string
	Token     string
}

// Authenticated reports whether the session belongs to a signed-in profile.
func (s Session) Authenticated() bool {
	return s.ProfileID != ""
}

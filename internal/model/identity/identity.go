package identity

import "net/http"

// GuestKey is the cart partition used when no identity is present.
const GuestKey = "guest"

// Identity names the current actor. The zero value is a guest.
type Identity struct {
	ID string
}

// IsGuest reports whether the identity is anonymous.
func (id Identity) IsGuest() bool { return id.ID == "" }

// PartitionKey returns the cart storage partition for this identity.
func (id Identity) PartitionKey() string {
	if id.IsGuest() {
		return GuestKey
	}
	return id.ID
}

// Provider resolves the acting identity for a request.
type Provider interface {
	Current(r *http.Request) Identity
}

// HeaderProvider trusts an upstream-verified user id header. Session
// verification itself is an external collaborator.
type HeaderProvider struct {
	Header string
}

// NewHeaderProvider returns a provider reading X-User-ID by default.
func NewHeaderProvider() HeaderProvider {
	return HeaderProvider{Header: "X-User-ID"}
}

// Current extracts the identity from the request, or a guest when absent.
func (p HeaderProvider) Current(r *http.Request) Identity {
	return Identity{ID: r.Header.Get(p.Header)}
}

package service

import (
	"github.com/google/uuid"
)

// Viewer is the identity a request runs as. Every read that computes
// per-user flags and every write is scoped to it.
type Viewer struct {
	UserID        uuid.UUID
	Authenticated bool
}

// Anonymous is the viewer of an unauthenticated request
func Anonymous() Viewer {
	return Viewer{}
}

// AsUser returns the viewer for an authenticated user
func AsUser(id uuid.UUID) Viewer {
	return Viewer{UserID: id, Authenticated: true}
}

func (v Viewer) requireUser() error {
	if !v.Authenticated {
		return forbidden("authentication required")
	}
	return nil
}

// MembershipKind selects one of the per-user recipe sets
type MembershipKind int

const (
	Favorite MembershipKind = iota
	ShoppingCart
)

func (k MembershipKind) String() string {
	switch k {
	case Favorite:
		return "favorite"
	case ShoppingCart:
		return "shopping_cart"
	default:
		return "unknown"
	}
}

// Operation is the direction of a membership or follow toggle
type Operation int

const (
	Add Operation = iota
	Remove
)

func (o Operation) String() string {
	switch o {
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows before the page
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

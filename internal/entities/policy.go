package entities

import "time"

// DeletePolicy states how an entity leaves the store.
type DeletePolicy int

const (
	// HardDelete removes the row.
	HardDelete DeletePolicy = iota
	// SoftDelete keeps the row and marks it deleted.
	SoftDelete
)

func (p DeletePolicy) String() string {
	switch p {
	case SoftDelete:
		return "soft"
	default:
		return "hard"
	}
}

// Deletable is implemented by every entity that can be removed.
type Deletable interface {
	DeletePolicy() DeletePolicy
}

// SoftDeletable entities know how to mark themselves deleted.
type SoftDeletable interface {
	Deletable
	MarkDeleted(at time.Time)
	IsDeleted() bool
}

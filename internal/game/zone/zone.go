// Package zone provides the ordered containers that hold cards, permanents
// and stack objects during a game.
package zone

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a moved entity is not in the source zone.
var ErrNotFound = errors.New("entity not found in zone")

// Kind identifies the game zone a container represents.
type Kind int

const (
	KindLibrary Kind = iota
	KindHand
	KindBattlefield
	KindGraveyard
	KindStack
	KindExile
)

var kindNames = map[Kind]string{
	KindLibrary:     "LIBRARY",
	KindHand:        "HAND",
	KindBattlefield: "BATTLEFIELD",
	KindGraveyard:   "GRAVEYARD",
	KindStack:       "STACK",
	KindExile:       "EXILE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(k))
}

// Visibility controls who may see the contents of a zone.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityHidden
)

func (v Visibility) String() string {
	if v == VisibilityHidden {
		return "HIDDEN"
	}
	return "PUBLIC"
}

// Zone is an ordered sequence of entities. The last element is the top.
// A Zone is not safe for concurrent use.
type Zone[T comparable] struct {
	kind       Kind
	visibility Visibility
	entities   []T
}

// New creates an empty zone.
func New[T comparable](kind Kind, visibility Visibility) *Zone[T] {
	return &Zone[T]{kind: kind, visibility: visibility}
}

// Kind returns the zone kind.
func (z *Zone[T]) Kind() Kind { return z.kind }

// Visibility returns the zone visibility.
func (z *Zone[T]) Visibility() Visibility { return z.visibility }

// AddToTop places entities on top of the zone, in order, so the last one
// ends up on top.
func (z *Zone[T]) AddToTop(entities ...T) {
	z.entities = append(z.entities, entities...)
}

// FindFromTop returns the top entity without removing it.
func (z *Zone[T]) FindFromTop() (T, bool) {
	var zero T
	if len(z.entities) == 0 {
		return zero, false
	}
	return z.entities[len(z.entities)-1], true
}

// FindManyFromTop returns up to n entities, the top one first.
func (z *Zone[T]) FindManyFromTop(n int) []T {
	if n > len(z.entities) {
		n = len(z.entities)
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, 0, n)
	for i := len(z.entities) - 1; i >= len(z.entities)-n; i-- {
		out = append(out, z.entities[i])
	}
	return out
}

// RemoveFromTop removes and returns the top entity.
func (z *Zone[T]) RemoveFromTop() (T, bool) {
	top, ok := z.FindFromTop()
	if ok {
		var zero T
		z.entities[len(z.entities)-1] = zero
		z.entities = z.entities[:len(z.entities)-1]
	}
	return top, ok
}

// RemoveManyFromTop removes up to n entities and returns them, the top one first.
func (z *Zone[T]) RemoveManyFromTop(n int) []T {
	out := z.FindManyFromTop(n)
	keep := len(z.entities) - len(out)
	clear(z.entities[keep:])
	z.entities = z.entities[:keep]
	return out
}

// FindAll returns a copy of the contents, bottom first.
func (z *Zone[T]) FindAll() []T {
	out := make([]T, len(z.entities))
	copy(out, z.entities)
	return out
}

// Contains reports whether the entity is in the zone.
func (z *Zone[T]) Contains(entity T) bool {
	return z.indexOf(entity) >= 0
}

// Quantity returns the number of entities in the zone.
func (z *Zone[T]) Quantity() int {
	return len(z.entities)
}

// IsEmpty reports whether the zone holds nothing.
func (z *Zone[T]) IsEmpty() bool {
	return len(z.entities) == 0
}

// Remove takes the entity out of the zone from any position. It is meant for
// same-zone bookkeeping; use Move to change an entity's zone.
func (z *Zone[T]) Remove(entity T) bool {
	i := z.indexOf(entity)
	if i < 0 {
		return false
	}
	z.entities = append(z.entities[:i], z.entities[i+1:]...)
	return true
}

// Shuffle reorders the zone so that position i receives the entity
// previously at indexes[i]. indexes must be a permutation of 0..Quantity()-1.
func (z *Zone[T]) Shuffle(indexes []int) error {
	if len(indexes) != len(z.entities) {
		return fmt.Errorf("shuffle %s: got %d indexes for %d entities", z.kind, len(indexes), len(z.entities))
	}
	seen := make([]bool, len(indexes))
	shuffled := make([]T, len(indexes))
	for i, idx := range indexes {
		if idx < 0 || idx >= len(indexes) || seen[idx] {
			return fmt.Errorf("shuffle %s: indexes are not a permutation", z.kind)
		}
		seen[idx] = true
		shuffled[i] = z.entities[idx]
	}
	z.entities = shuffled
	return nil
}

func (z *Zone[T]) indexOf(entity T) int {
	for i := len(z.entities) - 1; i >= 0; i-- {
		if z.entities[i] == entity {
			return i
		}
	}
	return -1
}

// Move moves an entity from one zone to the top of another. Nothing
// changes when the entity is not in the source zone.
func Move[T comparable](entity T, from, to *Zone[T]) error {
	return MoveToZone(entity, from, to, func(e T) T { return e })
}

// MoveToZone removes an entity from its source zone, applies transform and
// places the result on top of the destination. Nothing changes when the
// entity is not in the source zone.
func MoveToZone[S, D comparable](entity S, from *Zone[S], to *Zone[D], transform func(S) D) error {
	if !from.Remove(entity) {
		return fmt.Errorf("move from %s to %s: %w", from.kind, to.kind, ErrNotFound)
	}
	to.AddToTop(transform(entity))
	return nil
}

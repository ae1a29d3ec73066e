package zone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type card struct{ name string }

type permanent struct{ card *card }

func TestZoneTopOperations(t *testing.T) {
	z := New[string](KindLibrary, VisibilityHidden)
	assert.True(t, z.IsEmpty())

	z.AddToTop("a", "b", "c")
	assert.Equal(t, 3, z.Quantity())

	top, ok := z.FindFromTop()
	require.True(t, ok)
	assert.Equal(t, "c", top)

	assert.Equal(t, []string{"c", "b"}, z.FindManyFromTop(2))
	assert.Equal(t, []string{"c", "b", "a"}, z.FindManyFromTop(10))
	assert.Equal(t, []string{"a", "b", "c"}, z.FindAll())

	removed, ok := z.RemoveFromTop()
	require.True(t, ok)
	assert.Equal(t, "c", removed)

	assert.Equal(t, []string{"b", "a"}, z.RemoveManyFromTop(5))
	assert.True(t, z.IsEmpty())

	_, ok = z.RemoveFromTop()
	assert.False(t, ok)
	assert.Nil(t, z.FindManyFromTop(0))
}

func TestZoneRemovalReleasesEntities(t *testing.T) {
	z := New[*int](KindStack, VisibilityPublic)
	one, two, three := 1, 2, 3
	z.AddToTop(&one, &two, &three)

	removed := z.RemoveManyFromTop(2)
	assert.Equal(t, []*int{&three, &two}, removed)
	backing := z.entities[:cap(z.entities)]
	assert.Same(t, &one, backing[0])
	for i := 1; i < len(backing); i++ {
		assert.Nil(t, backing[i], "slot %d", i)
	}

	z.RemoveFromTop()
	assert.Nil(t, z.entities[:1][0])
}

func TestZoneFindAllReturnsCopy(t *testing.T) {
	z := New[string](KindHand, VisibilityHidden)
	z.AddToTop("a")

	all := z.FindAll()
	all[0] = "mutated"

	top, _ := z.FindFromTop()
	assert.Equal(t, "a", top)
}

func TestMovePreservesIdentity(t *testing.T) {
	hand := New[*card](KindHand, VisibilityHidden)
	graveyard := New[*card](KindGraveyard, VisibilityPublic)
	c := &card{name: "Grizzly Bears"}
	hand.AddToTop(c)

	require.NoError(t, Move(c, hand, graveyard))

	assert.False(t, hand.Contains(c))
	assert.True(t, graveyard.Contains(c))
	top, _ := graveyard.FindFromTop()
	assert.Same(t, c, top)
}

func TestMoveToZoneTransforms(t *testing.T) {
	hand := New[*card](KindHand, VisibilityHidden)
	battlefield := New[*permanent](KindBattlefield, VisibilityPublic)
	bottom := &card{name: "Forest"}
	c := &card{name: "Grizzly Bears"}
	hand.AddToTop(bottom, c)

	err := MoveToZone(bottom, hand, battlefield, func(c *card) *permanent { return &permanent{card: c} })
	require.NoError(t, err)

	assert.Equal(t, 1, hand.Quantity())
	top, ok := battlefield.FindFromTop()
	require.True(t, ok)
	assert.Same(t, bottom, top.card)
}

func TestMoveMissingEntityChangesNothing(t *testing.T) {
	hand := New[*card](KindHand, VisibilityHidden)
	graveyard := New[*card](KindGraveyard, VisibilityPublic)
	hand.AddToTop(&card{name: "Forest"})

	err := Move(&card{name: "Island"}, hand, graveyard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, hand.Quantity())
	assert.True(t, graveyard.IsEmpty())
}

func TestShuffle(t *testing.T) {
	z := New[string](KindLibrary, VisibilityHidden)
	z.AddToTop("a", "b", "c")

	require.NoError(t, z.Shuffle([]int{2, 0, 1}))
	assert.Equal(t, []string{"c", "a", "b"}, z.FindAll())

	assert.Error(t, z.Shuffle([]int{0, 0, 1}))
	assert.Error(t, z.Shuffle([]int{0, 1}))
	assert.Equal(t, []string{"c", "a", "b"}, z.FindAll())
}

// Package deck builds and consumes the shared draw pile.
//
// All operations are deterministic given their inputs; randomness comes in
// only through the injected random source at build time. Ownership of cards
// is managed by the room state machine, not here.
package deck

import (
	"github.com/google/uuid"

	"github.com/carriee-liuu/anomia-go/internal/dependencies/random"
	"github.com/carriee-liuu/anomia-go/internal/model"
)

const (
	// CardsPerPlayer scales the pile with the table size
	CardsPerPlayer = 5

	// pileMultiplier pads the pile so games do not end too abruptly
	pileMultiplier = 2

	// wildInterval is how many regular cards are dealt per wild card
	wildInterval = 8
)

// PileSize returns the number of cards built for a given player count
func PileSize(playerCount int) int {
	return playerCount * CardsPerPlayer * pileMultiplier
}

// BuildPile generates and shuffles a fresh draw pile for playerCount
// players. Roughly one card in wildInterval is wild, pairing two distinct
// shapes as temporarily equivalent.
func BuildPile(playerCount int, rnd random.Random) []model.Card {
	size := PileSize(playerCount)
	shapes := model.Shapes()

	pile := make([]model.Card, 0, size)
	for i := 0; i < size; i++ {
		if (i+1)%wildInterval == 0 {
			pile = append(pile, buildWildCard(shapes, rnd))
			continue
		}
		shape := shapes[rnd.Intn(len(shapes))]
		pool := Categories(shape)
		pile = append(pile, model.Card{
			ID:       model.CardID(uuid.NewString()),
			Shape:    shape,
			Category: pool[rnd.Intn(len(pool))],
		})
	}

	rnd.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
	return pile
}

func buildWildCard(shapes []model.Shape, rnd random.Random) model.Card {
	first := rnd.Intn(len(shapes))
	// Pick a second shape distinct from the first
	offset := 1 + rnd.Intn(len(shapes)-1)
	second := (first + offset) % len(shapes)

	return model.Card{
		ID:         model.CardID(uuid.NewString()),
		IsWild:     true,
		WildShapes: [2]model.Shape{shapes[first], shapes[second]},
	}
}

// Draw removes and returns the top card of the pile along with the
// remaining pile. Returns model.ErrEmptyDeck when the pile is exhausted;
// the caller treats that as the game-end trigger, not a failure.
func Draw(pile []model.Card) (model.Card, []model.Card, error) {
	if len(pile) == 0 {
		return model.Card{}, pile, model.ErrEmptyDeck
	}
	card := pile[len(pile)-1]
	return card, pile[:len(pile)-1], nil
}

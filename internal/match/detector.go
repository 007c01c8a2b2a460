// Package match detects face-offs between players' face-up cards.
//
// Detection is a pure function over a snapshot of top cards plus the
// active wild rule, so it can be re-run after every flip and after every
// face-off resolution without touching room state.
package match

import (
	"sort"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

// TopCards is a snapshot of each player's face-up card at a point in time.
// Players with no face-up card are simply absent from the map.
type TopCards map[model.PlayerID]model.Card

// Detect groups players whose face-up shapes match under the given rule.
// Wild cards are rule carriers, not matchable symbols, so players showing
// a wild card never participate in a face-off. Groups and their members
// are returned in a deterministic order.
func Detect(tops TopCards, rule *model.WildRule) []model.MatchGroup {
	ids := make([]model.PlayerID, 0, len(tops))
	for id, card := range tops {
		if card.IsWild {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	grouped := make(map[model.PlayerID]bool, len(ids))
	var groups []model.MatchGroup
	for i, id := range ids {
		if grouped[id] {
			continue
		}
		shape := tops[id].Shape
		members := []model.PlayerID{id}
		for _, other := range ids[i+1:] {
			if grouped[other] {
				continue
			}
			if rule.Equates(shape, tops[other].Shape) {
				members = append(members, other)
				grouped[other] = true
			}
		}
		if len(members) < 2 {
			continue
		}
		grouped[id] = true
		groups = append(groups, model.MatchGroup{
			Shape:   shape,
			Players: members,
		})
	}
	return groups
}

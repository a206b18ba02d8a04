package evaluation

import (
	"errors"
	"fmt"
)

var (
	ErrComponentNotFound = errors.New("evaluation component not found")
	ErrItemNotFound      = errors.New("evaluation item not found")
)

// State is the review data for one project. Reducers below never mutate their
// input; they return a modified copy.
//
// versions holds a per-item counter bumped on every local write, good holds
// the last value the backend confirmed. Together they let a failed write undo
// itself without clobbering a newer local write.
type State struct {
	Components []Component
	Items      map[string][]Item // component id -> items

	versions map[string]uint64
	good     map[string]*float64
}

func (s State) clone() State {
	out := State{
		Components: append([]Component(nil), s.Components...),
		Items:      make(map[string][]Item, len(s.Items)),
		versions:   make(map[string]uint64, len(s.versions)),
		good:       make(map[string]*float64, len(s.good)),
	}
	for k, v := range s.Items {
		out.Items[k] = append([]Item(nil), v...)
	}
	for k, v := range s.versions {
		out.versions[k] = v
	}
	for k, v := range s.good {
		out.good[k] = v
	}
	return out
}

// Version returns the latest local write version of an item (0 if never written).
func (s State) Version(itemID string) uint64 { return s.versions[itemID] }

func (s State) Component(id string) (Component, bool) {
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// FindItem returns the item and the id of its owning component.
func (s State) FindItem(itemID string) (Item, string, bool) {
	for compID, items := range s.Items {
		for _, it := range items {
			if it.ID == itemID {
				return it, compID, true
			}
		}
	}
	return Item{}, "", false
}

func SetComponents(s State, comps []Component) State {
	ns := s.clone()
	ns.Components = append([]Component(nil), comps...)
	return ns
}

// SetItems stores freshly fetched items; their values become last-known-good.
func SetItems(s State, componentID string, items []Item) State {
	ns := s.clone()
	ns.Items[componentID] = append([]Item(nil), items...)
	for _, it := range items {
		ns.good[it.ID] = it.ActualPoint
	}
	return ns
}

// ApplyItemPoint optimistically sets an item's score and returns the write version.
func ApplyItemPoint(s State, itemID string, point float64) (State, uint64, error) {
	_, compID, ok := s.FindItem(itemID)
	if !ok {
		return s, 0, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	ns := s.clone()
	ns.versions[itemID]++
	ns.setItemPoint(compID, itemID, Point(point))
	return ns, ns.versions[itemID], nil
}

// ConfirmItemPoint records a backend acknowledgement of the given write.
func ConfirmItemPoint(s State, itemID string, version uint64, point float64) State {
	ns := s.clone()
	ns.good[itemID] = Point(point)
	if ns.versions[itemID] == version {
		if _, compID, ok := ns.FindItem(itemID); ok {
			ns.setItemPoint(compID, itemID, Point(point))
		}
	}
	return ns
}

// RevertItemPoint undoes a failed write unless a newer write superseded it.
func RevertItemPoint(s State, itemID string, version uint64) State {
	if s.versions[itemID] != version {
		return s
	}
	_, compID, ok := s.FindItem(itemID)
	if !ok {
		return s
	}
	ns := s.clone()
	ns.setItemPoint(compID, itemID, ns.good[itemID])
	return ns
}

// SetComment returns the new state and the previous comment for compensation.
func SetComment(s State, componentID, comment string) (State, string, error) {
	ns := s.clone()
	for i := range ns.Components {
		if ns.Components[i].ID == componentID {
			prev := ns.Components[i].Comment
			ns.Components[i].Comment = comment
			return ns, prev, nil
		}
	}
	return s, "", fmt.Errorf("%w: %s", ErrComponentNotFound, componentID)
}

// RevertComment restores prev only while the failed comment is still current.
func RevertComment(s State, componentID, failed, prev string) State {
	ns := s.clone()
	for i := range ns.Components {
		if ns.Components[i].ID == componentID && ns.Components[i].Comment == failed {
			ns.Components[i].Comment = prev
			return ns
		}
	}
	return s
}

func (s *State) setItemPoint(compID, itemID string, p *float64) {
	items := s.Items[compID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].ActualPoint = p
		}
	}
	s.recomputeComponent(compID)
}

// recomputeComponent mirrors the backend: a component's actual point is the
// sum of its items once all of them carry a score.
func (s *State) recomputeComponent(compID string) {
	items := s.Items[compID]
	if len(items) == 0 {
		return
	}
	var sum float64
	complete := true
	for _, it := range items {
		if it.ActualPoint == nil {
			complete = false
			break
		}
		sum += *it.ActualPoint
	}
	for i := range s.Components {
		if s.Components[i].ID != compID {
			continue
		}
		if complete {
			s.Components[i].ActualPoint = Point(sum)
		} else {
			s.Components[i].ActualPoint = nil
		}
	}
}

// AreAllEvaluationsScored is the guard for submitting a final evaluation.
func AreAllEvaluationsScored(s State) bool {
	if len(s.Components) == 0 {
		return false
	}
	for _, c := range s.Components {
		if c.ActualPoint == nil {
			return false
		}
		for _, it := range s.Items[c.ID] {
			if it.ActualPoint == nil {
				return false
			}
		}
	}
	return true
}

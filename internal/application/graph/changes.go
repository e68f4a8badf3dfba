package graph

import (
	"github.com/aescanero/lienzo/internal/domain"
)

// ChangeType labels one delta of a bulk change batch.
type ChangeType string

const (
	ChangePosition   ChangeType = "position"
	ChangeSelect     ChangeType = "select"
	ChangeAddNode    ChangeType = "add-node"
	ChangeRemoveNode ChangeType = "remove-node"
	ChangeRemoveEdge ChangeType = "remove-edge"
)

// Change is one add/remove/position/selection delta. Batches come from drag
// and multi-select gestures; applying them in one pass avoids a history
// snapshot per intermediate step.
type Change struct {
	Type     ChangeType       `json:"type"`
	ID       string           `json:"id,omitempty"`
	Kind     domain.NodeKind  `json:"nodeType,omitempty"`
	Position *domain.Position `json:"position,omitempty"`
	Selected bool             `json:"selected,omitempty"`
}

// ApplyChanges applies a batch of deltas under a single lock. Deltas that
// reference unknown ids are skipped; the rest of the batch still applies.
func (s *Store) ApplyChanges(changes []Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range changes {
		switch ch.Type {
		case ChangePosition:
			if idx := s.indexOf(ch.ID); idx >= 0 && ch.Position != nil {
				s.nodes[idx].Position = *ch.Position
			}

		case ChangeSelect:
			if idx := s.indexOf(ch.ID); idx >= 0 {
				s.nodes[idx].Selected = ch.Selected
				if ch.Selected {
					s.selected = ch.ID
				} else if s.selected == ch.ID {
					s.selected = ""
				}
			}

		case ChangeAddNode:
			if !domain.KnownKind(ch.Kind) {
				continue
			}
			pos := domain.Position{}
			if ch.Position != nil {
				pos = *ch.Position
			}
			// Ids are never reused within a session; a colliding or missing
			// id gets a fresh one.
			id := ch.ID
			if id == "" || s.indexOf(id) >= 0 {
				id = domain.NewID()
			}
			s.nodes = append(s.nodes, domain.Node{
				ID:       id,
				Kind:     ch.Kind,
				Position: pos,
				Data:     domain.DefaultData(ch.Kind),
			})

		case ChangeRemoveNode:
			if idx := s.indexOf(ch.ID); idx >= 0 {
				s.nodes = append(s.nodes[:idx], s.nodes[idx+1:]...)
				s.removeEdgesTouching(ch.ID)
				if s.selected == ch.ID {
					s.selected = ""
				}
			}

		case ChangeRemoveEdge:
			for i, e := range s.edges {
				if e.ID == ch.ID {
					s.edges = append(s.edges[:i], s.edges[i+1:]...)
					break
				}
			}
		}
	}
}

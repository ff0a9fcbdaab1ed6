// Package filter derives the scene graph implied by a sampled object set.
package filter

import "scenesampler/internal/domain"

// Apply returns a new scene graph holding only the objects in ids, the
// relationships whose subject and every recipient are kept, and the
// attributes bound to kept objects. Relative order from sg is preserved and
// sg is not modified. Ids that name no object are ignored.
func Apply(sg *domain.SceneGraph, ids []int) *domain.SceneGraph {
	keep := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	out := domain.NewSceneGraph(sg.SceneID)
	out.Fields = sg.Fields

	for _, obj := range sg.Objects {
		if _, ok := keep[obj.ID]; ok {
			out.Objects = append(out.Objects, obj)
		}
	}

	for _, rel := range sg.Relationships {
		if RelationshipSurvives(rel, keep) {
			out.Relationships = append(out.Relationships, rel)
		}
	}

	for _, attr := range sg.Attributes {
		if _, ok := keep[attr.ObjectID]; ok {
			out.Attributes = append(out.Attributes, attr)
		}
	}

	return out
}

// RelationshipSurvives reports whether the subject and all recipients are in
// keep. A relationship is never truncated to its surviving recipients.
func RelationshipSurvives(rel domain.Relationship, keep map[int]struct{}) bool {
	for _, id := range rel.Participants() {
		if _, ok := keep[id]; !ok {
			return false
		}
	}
	return true
}

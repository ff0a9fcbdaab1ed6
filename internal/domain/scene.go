package domain

import "slices"

// AgentLabel marks an agent placeholder in an object's label list
const AgentLabel = "<AGENT>"

// Field is a top-level record entry carried through unchanged
type Field struct {
	Key   string
	Value []byte
}

// Object represents an entity in a scene
type Object struct {
	ID           int
	Labels       []string
	IsTargetable bool
	IsAgent      bool

	// Raw is the source JSON of the record
	Raw []byte
}

// Agent reports whether the object is an agent placeholder
func (o Object) Agent() bool {
	return o.IsAgent || slices.Contains(o.Labels, AgentLabel)
}

// PrimaryLabel returns the first label, or "" when the object has none
func (o Object) PrimaryLabel() string {
	if len(o.Labels) == 0 {
		return ""
	}
	return o.Labels[0]
}

// Relationship is a directed predicate from a subject to its recipients
type Relationship struct {
	ID           int
	Name         string
	Type         string
	SubjectID    int
	RecipientIDs []int

	Raw []byte
}

// Participants returns the subject followed by every recipient
func (r Relationship) Participants() []int {
	ids := make([]int, 0, len(r.RecipientIDs)+1)
	ids = append(ids, r.SubjectID)
	return append(ids, r.RecipientIDs...)
}

// Attribute binds a named property to one object
type Attribute struct {
	ObjectID int
	Name     string

	Raw []byte
}

// SceneGraph is the complete record of one scene
type SceneGraph struct {
	SceneID       string
	Objects       []Object
	Relationships []Relationship
	Attributes    []Attribute

	// Fields holds the top-level entries in source order, including the
	// positions of the objects, relationships and attributes keys.
	Fields []Field
}

// NewSceneGraph creates an empty scene graph
func NewSceneGraph(sceneID string) *SceneGraph {
	return &SceneGraph{
		SceneID:       sceneID,
		Objects:       make([]Object, 0),
		Relationships: make([]Relationship, 0),
		Attributes:    make([]Attribute, 0),
	}
}

// ObjectIDs returns the ids of all objects in source order
func (sg *SceneGraph) ObjectIDs() []int {
	ids := make([]int, 0, len(sg.Objects))
	for _, obj := range sg.Objects {
		ids = append(ids, obj.ID)
	}
	return ids
}

// ObjectIndex returns the set of object ids present in the scene
func (sg *SceneGraph) ObjectIndex() map[int]struct{} {
	index := make(map[int]struct{}, len(sg.Objects))
	for _, obj := range sg.Objects {
		index[obj.ID] = struct{}{}
	}
	return index
}

// AgentCount returns the number of agent objects
func (sg *SceneGraph) AgentCount() int {
	n := 0
	for _, obj := range sg.Objects {
		if obj.Agent() {
			n++
		}
	}
	return n
}

// Package loader reads scene graph records from disk and checks their
// referential integrity before they reach sampling.
package loader

import (
	"fmt"
	"os"

	"scenesampler/internal/codec"
	"scenesampler/internal/domain"
)

var jsonCodec = codec.NewJSONCodec()

// LoadFile loads and validates the scene graph stored at path
func LoadFile(sceneID, path string) (*domain.SceneGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", sceneID, err)
	}

	return Parse(sceneID, data)
}

// Parse decodes and validates a scene graph record
func Parse(sceneID string, data []byte) (*domain.SceneGraph, error) {
	sg, err := jsonCodec.Decode(sceneID, data)
	if err != nil {
		return nil, err
	}

	if err := Validate(sg); err != nil {
		return nil, err
	}

	return sg, nil
}

// Validate checks that object ids are unique and that every relationship
// and attribute refers to an object of the same scene
func Validate(sg *domain.SceneGraph) error {
	objects := make(map[int]struct{}, len(sg.Objects))
	for _, obj := range sg.Objects {
		if _, dup := objects[obj.ID]; dup {
			return domain.NewMalformedError(sg.SceneID, "duplicate object id %d", obj.ID)
		}
		objects[obj.ID] = struct{}{}
	}

	for i, rel := range sg.Relationships {
		if len(rel.RecipientIDs) == 0 {
			return domain.NewMalformedError(sg.SceneID, "relationship %d (index %d) has no recipients", rel.ID, i)
		}
		if _, ok := objects[rel.SubjectID]; !ok {
			return domain.NewMalformedError(sg.SceneID,
				"relationship %d (index %d) subject references unknown object %d", rel.ID, i, rel.SubjectID)
		}
		for _, rid := range rel.RecipientIDs {
			if _, ok := objects[rid]; !ok {
				return domain.NewMalformedError(sg.SceneID,
					"relationship %d (index %d) recipient references unknown object %d", rel.ID, i, rid)
			}
		}
	}

	for i, attr := range sg.Attributes {
		if _, ok := objects[attr.ObjectID]; !ok {
			return domain.NewMalformedError(sg.SceneID,
				"attribute %q (index %d) references unknown object %d", attr.Name, i, attr.ObjectID)
		}
	}

	return nil
}

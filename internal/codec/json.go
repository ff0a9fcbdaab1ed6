package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"scenesampler/internal/domain"
)

const (
	keyObjects       = "objects"
	keyRelationships = "relationships"
	keyAttributes    = "attributes"
)

var collectionKeys = []string{keyObjects, keyRelationships, keyAttributes}

// JSONCodec handles scene graph JSON records.
//
// Records are decoded field by field so that every retained object,
// relationship and attribute is written back with its original field set and
// order, and unknown top-level entries pass through untouched.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

type objectRecord struct {
	ID           *int     `json:"id"`
	Labels       []string `json:"labels"`
	IsTargetable *bool    `json:"is_targetable"`
	IsAgent      *bool    `json:"is_agent"`
}

type relationshipRecord struct {
	ID           *int   `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	SubjectID    *int   `json:"subject_id"`
	RecipientIDs *[]int `json:"recipient_id"`
}

type attributeRecord struct {
	ObjectID *int   `json:"object_id"`
	Name     string `json:"name"`
}

// Parse reads a scene graph record
func (c *JSONCodec) Parse(sceneID string, r io.Reader) (*domain.SceneGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene graph: %w", err)
	}
	return c.Decode(sceneID, data)
}

// Decode parses a scene graph record from bytes. Structural problems are
// reported as *domain.MalformedSceneGraphError; referential checks are left
// to the loader.
func (c *JSONCodec) Decode(sceneID string, data []byte) (*domain.SceneGraph, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: "invalid JSON", Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, domain.NewMalformedError(sceneID, "record is not a JSON object")
	}

	sg := domain.NewSceneGraph(sceneID)
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: "invalid JSON", Err: err}
		}
		key, ok := tok.(string)
		if !ok {
			return nil, domain.NewMalformedError(sceneID, "unexpected token %v", tok)
		}
		if seen[key] {
			return nil, domain.NewMalformedError(sceneID, "duplicate top-level field %q", key)
		}
		seen[key] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: fmt.Sprintf("invalid value for %q", key), Err: err}
		}

		field := domain.Field{Key: key}
		switch key {
		case keyObjects:
			sg.Objects, err = decodeObjects(sceneID, raw)
		case keyRelationships:
			sg.Relationships, err = decodeRelationships(sceneID, raw)
		case keyAttributes:
			sg.Attributes, err = decodeAttributes(sceneID, raw)
		default:
			field.Value = raw
		}
		if err != nil {
			return nil, err
		}
		sg.Fields = append(sg.Fields, field)
	}

	if _, err := dec.Token(); err != nil {
		return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: "invalid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewMalformedError(sceneID, "trailing data after record")
	}

	if !seen[keyObjects] {
		return nil, domain.NewMalformedError(sceneID, "missing required field %q", keyObjects)
	}

	return sg, nil
}

func splitArray(sceneID, key string, raw json.RawMessage) ([]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: fmt.Sprintf("%q must be an array", key), Err: err}
	}
	return items, nil
}

func decodeObjects(sceneID string, raw json.RawMessage) ([]domain.Object, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, domain.NewMalformedError(sceneID, "missing required field %q", keyObjects)
	}
	items, err := splitArray(sceneID, keyObjects, raw)
	if err != nil {
		return nil, err
	}

	objects := make([]domain.Object, 0, len(items))
	for i, item := range items {
		var rec objectRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: fmt.Sprintf("object %d", i), Err: err}
		}
		if rec.ID == nil {
			return nil, domain.NewMalformedError(sceneID, "object %d: missing required field \"id\"", i)
		}

		obj := domain.Object{
			ID:           *rec.ID,
			Labels:       rec.Labels,
			IsTargetable: true, // absent means targetable
			Raw:          item,
		}
		if rec.IsTargetable != nil {
			obj.IsTargetable = *rec.IsTargetable
		}
		if rec.IsAgent != nil {
			obj.IsAgent = *rec.IsAgent
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func decodeRelationships(sceneID string, raw json.RawMessage) ([]domain.Relationship, error) {
	items, err := splitArray(sceneID, keyRelationships, raw)
	if err != nil {
		return nil, err
	}

	rels := make([]domain.Relationship, 0, len(items))
	for i, item := range items {
		var rec relationshipRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: fmt.Sprintf("relationship %d", i), Err: err}
		}
		if rec.SubjectID == nil {
			return nil, domain.NewMalformedError(sceneID, "relationship %d: missing required field \"subject_id\"", i)
		}
		if rec.RecipientIDs == nil {
			return nil, domain.NewMalformedError(sceneID, "relationship %d: missing required field \"recipient_id\"", i)
		}

		rel := domain.Relationship{
			ID:           i,
			Name:         rec.Name,
			Type:         rec.Type,
			SubjectID:    *rec.SubjectID,
			RecipientIDs: *rec.RecipientIDs,
			Raw:          item,
		}
		if rec.ID != nil {
			rel.ID = *rec.ID
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

func decodeAttributes(sceneID string, raw json.RawMessage) ([]domain.Attribute, error) {
	items, err := splitArray(sceneID, keyAttributes, raw)
	if err != nil {
		return nil, err
	}

	attrs := make([]domain.Attribute, 0, len(items))
	for i, item := range items {
		var rec attributeRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, &domain.MalformedSceneGraphError{SceneID: sceneID, Reason: fmt.Sprintf("attribute %d", i), Err: err}
		}
		if rec.ObjectID == nil {
			return nil, domain.NewMalformedError(sceneID, "attribute %d: missing required field \"object_id\"", i)
		}
		attrs = append(attrs, domain.Attribute{
			ObjectID: *rec.ObjectID,
			Name:     rec.Name,
			Raw:      item,
		})
	}
	return attrs, nil
}

// Encode serializes a scene graph with two-space indentation. Top-level
// entries keep their source order; collections missing from the source are
// appended as arrays.
func (c *JSONCodec) Encode(sg *domain.SceneGraph) ([]byte, error) {
	var buf bytes.Buffer
	written := make(map[string]bool, len(collectionKeys))

	buf.WriteByte('{')
	for i, f := range sg.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeEntry(&buf, sg, f); err != nil {
			return nil, err
		}
		written[f.Key] = true
	}
	for _, key := range collectionKeys {
		if written[key] {
			continue
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if err := writeEntry(&buf, sg, domain.Field{Key: key}); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent scene graph %s: %w", sg.SceneID, err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Export writes a scene graph record
func (c *JSONCodec) Export(sg *domain.SceneGraph, w io.Writer) error {
	data, err := c.Encode(sg)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write scene graph: %w", err)
	}
	return nil
}

func writeEntry(buf *bytes.Buffer, sg *domain.SceneGraph, f domain.Field) error {
	key, err := json.Marshal(f.Key)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')

	var raws [][]byte
	switch f.Key {
	case keyObjects:
		for _, obj := range sg.Objects {
			raw, err := objectRaw(obj)
			if err != nil {
				return err
			}
			raws = append(raws, raw)
		}
	case keyRelationships:
		for _, rel := range sg.Relationships {
			raw, err := relationshipRaw(rel)
			if err != nil {
				return err
			}
			raws = append(raws, raw)
		}
	case keyAttributes:
		for _, attr := range sg.Attributes {
			raw, err := attributeRaw(attr)
			if err != nil {
				return err
			}
			raws = append(raws, raw)
		}
	default:
		if err := json.Compact(buf, f.Value); err != nil {
			return fmt.Errorf("failed to encode field %q: %w", f.Key, err)
		}
		return nil
	}

	buf.WriteByte('[')
	for i, raw := range raws {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := json.Compact(buf, raw); err != nil {
			return fmt.Errorf("failed to encode %s entry %d: %w", f.Key, i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

// Records built in memory have no source bytes; they are written with the
// fields this package models.

func objectRaw(obj domain.Object) ([]byte, error) {
	if obj.Raw != nil {
		return obj.Raw, nil
	}
	labels := obj.Labels
	if labels == nil {
		labels = []string{}
	}
	return json.Marshal(struct {
		ID           int      `json:"id"`
		Labels       []string `json:"labels"`
		IsTargetable bool     `json:"is_targetable"`
		IsAgent      bool     `json:"is_agent"`
	}{obj.ID, labels, obj.IsTargetable, obj.IsAgent})
}

func relationshipRaw(rel domain.Relationship) ([]byte, error) {
	if rel.Raw != nil {
		return rel.Raw, nil
	}
	recipients := rel.RecipientIDs
	if recipients == nil {
		recipients = []int{}
	}
	return json.Marshal(struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		Type         string `json:"type"`
		SubjectID    int    `json:"subject_id"`
		RecipientIDs []int  `json:"recipient_id"`
	}{rel.ID, rel.Name, rel.Type, rel.SubjectID, recipients})
}

func attributeRaw(attr domain.Attribute) ([]byte, error) {
	if attr.Raw != nil {
		return attr.Raw, nil
	}
	return json.Marshal(struct {
		ObjectID int    `json:"object_id"`
		Name     string `json:"name"`
	}{attr.ObjectID, attr.Name})
}

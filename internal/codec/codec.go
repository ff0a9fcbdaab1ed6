package codec

import (
	"io"

	"scenesampler/internal/domain"
)

// Importer interface for reading scene graph records
type Importer interface {
	Parse(sceneID string, r io.Reader) (*domain.SceneGraph, error)
	Format() string
}

// Exporter interface for writing scene graph records
type Exporter interface {
	Export(sg *domain.SceneGraph, w io.Writer) error
	Format() string
}

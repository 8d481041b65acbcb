package ports

import "github.com/effieaponniah/Arrythmia-Detect/internal/domain"

// ArtifactStore persists run artifacts for later review.
type ArtifactStore interface {
	SaveRun(run domain.RunArtifact) (id string, err error)
}

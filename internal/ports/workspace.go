package ports

import "github.com/effieaponniah/Arrythmia-Detect/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}

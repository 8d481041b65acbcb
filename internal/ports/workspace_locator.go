package ports

// WorkspaceLocator finds an ecgwatch workspace root (the directory holding ecgwatch.yaml) starting from an arbitrary directory.
type WorkspaceLocator interface {
	FindRoot(startDir string) (string, error)
}

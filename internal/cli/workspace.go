package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/config"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/workspacefinder"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, err
	}

	return &workspaceCtx{root: root, cfg: cfg}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := workspacefinder.NewFinder().FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `ecgwatch init`): %w", wd, err)
	}
	return root, nil
}

// resolvePath makes p absolute. Relative paths that exist from the working
// directory win; everything else is taken relative to the workspace root.
func (ws *workspaceCtx) resolvePath(p string) string {
	in := strings.TrimSpace(p)
	if in == "" || filepath.IsAbs(in) {
		return in
	}
	if fileExists(in) {
		if abs, err := filepath.Abs(in); err == nil {
			return abs
		}
	}
	return filepath.Join(ws.root, in)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

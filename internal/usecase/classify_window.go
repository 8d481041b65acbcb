package usecase

import (
	"context"
	"fmt"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// ClassifyWindow classifies a previously persisted window log offline.
type ClassifyWindow struct {
	source   ports.WindowSource
	analyzer *Analyzer
}

func NewClassifyWindow(src ports.WindowSource, analyzer *Analyzer) *ClassifyWindow {
	return &ClassifyWindow{source: src, analyzer: analyzer}
}

func (uc *ClassifyWindow) Execute(ctx context.Context, path string) (domain.WindowOutcome, error) {
	w, err := uc.source.LoadWindow(path)
	if err != nil {
		return domain.WindowOutcome{}, err
	}

	out, err := uc.analyzer.Analyze(ctx, CompletedWindow{Window: w, LogPath: path})
	if err != nil {
		return out, err
	}
	if out.Error != "" {
		return out, &domain.OpError{Op: "classify.window", Kind: domain.KindClassification, Path: path, Err: fmt.Errorf("%s: %w", out.Error, domain.ErrClassification)}
	}
	return out, nil
}

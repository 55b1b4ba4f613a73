// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package dataset

import (
	"context"
	"path/filepath"

	"github.com/tomtom215/nbhdeval/internal/evaluation"
	"github.com/tomtom215/nbhdeval/internal/report"
	"github.com/tomtom215/nbhdeval/internal/similarity"
)

// FileSource reads the inputs of an analysis run from files.
type FileSource struct {
	store           *Store
	ratingsPath     string
	predictionsPath string
	loss            evaluation.LossKind
}

// NewFileSource creates a source over the given files. An empty
// ratingsPath makes Ratings fall back to the true ratings of the
// predictions file.
func NewFileSource(store *Store, ratingsPath, predictionsPath string, loss evaluation.LossKind) *FileSource {
	return &FileSource{store: store, ratingsPath: ratingsPath, predictionsPath: predictionsPath, loss: loss}
}

// Ratings returns the ratings the similarity model trains on.
func (s *FileSource) Ratings(ctx context.Context) ([]similarity.Rating, error) {
	if s.ratingsPath != "" {
		ratings, _, err := s.store.Inputs(ctx, s.ratingsPath, s.predictionsPath, s.loss)
		return ratings, err
	}
	preds, err := s.Predictions(ctx)
	if err != nil {
		return nil, err
	}
	ratings := make([]similarity.Rating, len(preds))
	for i, p := range preds {
		ratings[i] = similarity.Rating{UserID: p.UserID, ItemID: p.ItemID, Value: p.TrueRating}
	}
	return ratings, nil
}

// Predictions returns the prediction rows under evaluation. With a
// separate ratings file, ids are coded jointly with it.
func (s *FileSource) Predictions(ctx context.Context) ([]evaluation.Prediction, error) {
	if s.ratingsPath != "" {
		_, preds, err := s.store.Inputs(ctx, s.ratingsPath, s.predictionsPath, s.loss)
		return preds, err
	}
	return s.store.Predictions(ctx, s.predictionsPath, s.loss)
}

// DirSink writes every table to <dir>/<table name><ext>.
type DirSink struct {
	store  *Store
	dir    string
	format Format
}

// NewDirSink creates a sink writing format f under dir.
func NewDirSink(store *Store, dir string, f Format) *DirSink {
	return &DirSink{store: store, dir: dir, format: f}
}

// Write exports t to Path(t.Name).
func (s *DirSink) Write(ctx context.Context, t report.Table) error {
	return s.store.Export(ctx, t, s.Path(t.Name), s.format)
}

// Path returns the file a table named name is written to.
func (s *DirSink) Path(name string) string {
	return filepath.Join(s.dir, unsafeName.ReplaceAllString(name, "_")+s.format.Extension())
}

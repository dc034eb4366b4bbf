package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/hyperjump/kotae/internal/extract"
)

// Service runs the whole ingestion flow from the data folder. Only one run
// may be in flight at a time; TryRun reports a refused overlap.
type Service struct {
	loader     *extract.Loader
	pipeline   *Pipeline
	dataFolder string
	mu         sync.Mutex
}

// ErrBusy is returned by TryRun when an ingestion run is already in flight.
var ErrBusy = errors.New("ingestion already running")

func NewService(loader *extract.Loader, pipeline *Pipeline, dataFolder string) *Service {
	return &Service{loader: loader, pipeline: pipeline, dataFolder: dataFolder}
}

// Run loads the data folder and ingests it, blocking until any in-flight run
// finishes first.
func (s *Service) Run(ctx context.Context, force bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, force)
}

// TryRun is Run without waiting: if a run is already in flight it returns
// ErrBusy immediately.
func (s *Service) TryRun(ctx context.Context, force bool) (int, error) {
	if !s.mu.TryLock() {
		return 0, ErrBusy
	}
	defer s.mu.Unlock()
	return s.run(ctx, force)
}

func (s *Service) run(ctx context.Context, force bool) (int, error) {
	docs, err := s.loader.LoadFolder(s.dataFolder)
	if err != nil {
		return 0, err
	}
	return s.pipeline.Ingest(ctx, docs, force)
}

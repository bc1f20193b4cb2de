package service

import (
	"time"

	"github.com/okian/curriculum/internal/adapters/repository"
	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/eligibility"
	"github.com/okian/curriculum/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the persistence queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the curriculum. The embedded plan is used otherwise.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithStore sets the persistence backend. The caller keeps ownership and
// closes it; without this option Start creates an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRules overrides the named eligibility exceptions.
func WithRules(rules ...eligibility.Rule) Option {
	return func(s *Service) {
		s.rules = rules
		s.customRules = true
	}
}

// WithClock sets the time source used for timestamps and export names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

package progress

import (
	"context"

	"github.com/designcoil/catalog-import/internal/pipeline"
)

// Observer returns a batch interceptor that advances c once for every
// non-nil bunch the import loop fetches. Bunches and errors pass through
// untouched.
func Observer(c *Coordinator) pipeline.BatchInterceptor {
	return func(next pipeline.BatchSource) pipeline.BatchSource {
		return &observedSource{next: next, progress: c}
	}
}

type observedSource struct {
	next     pipeline.BatchSource
	progress *Coordinator
}

func (s *observedSource) NextBunch(ctx context.Context) (*pipeline.Bunch, error) {
	b, err := s.next.NextBunch(ctx)
	s.observe(b, err)
	return b, err
}

func (s *observedSource) NextUniqueBunch(ctx context.Context) (*pipeline.Bunch, error) {
	b, err := s.next.NextUniqueBunch(ctx)
	s.observe(b, err)
	return b, err
}

func (s *observedSource) observe(b *pipeline.Bunch, err error) {
	if err != nil || b == nil {
		return
	}
	if s.progress.IsActive() {
		s.progress.Advance()
	}
}

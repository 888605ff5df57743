package pipeline

import "context"

// Bunch is one batch of rows pulled by the import loop.
type Bunch struct {
	ID   int
	Rows int
}

// BatchSource yields bunches to the import loop. A nil *Bunch with a nil
// error means there are no more bunches.
type BatchSource interface {
	NextBunch(ctx context.Context) (*Bunch, error)
	NextUniqueBunch(ctx context.Context) (*Bunch, error)
}

// BatchInterceptor wraps a BatchSource. Interceptors must return the bunch
// they observe unchanged.
type BatchInterceptor func(next BatchSource) BatchSource

// Chain applies interceptors to src in registration order, so the first
// registered interceptor sees each fetch first.
func Chain(src BatchSource, interceptors ...BatchInterceptor) BatchSource {
	for i := len(interceptors) - 1; i >= 0; i-- {
		src = interceptors[i](src)
	}
	return src
}

// Drain pulls bunches from src until it is exhausted and returns how many
// were fetched. unique selects NextUniqueBunch over NextBunch.
func Drain(ctx context.Context, src BatchSource, unique bool) (int, error) {
	fetched := 0
	for {
		var (
			b   *Bunch
			err error
		)
		if unique {
			b, err = src.NextUniqueBunch(ctx)
		} else {
			b, err = src.NextBunch(ctx)
		}
		if err != nil {
			return fetched, err
		}
		if b == nil {
			return fetched, nil
		}
		fetched++
	}
}

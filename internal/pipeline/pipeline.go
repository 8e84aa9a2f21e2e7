// Package pipeline instruments the CLI's load/assemble/solve/project
// sequence the same way an HTTP middleware chain instruments a handler:
// composable wrappers around a single-step function, applied
// outermost-first.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Stage is one step of a schedule run: load, assemble, solve, project, or
// persist. Unlike middleware.go's http.Handler, a Stage reports its own
// error instead of writing a response.
type Stage func(ctx context.Context) error

// Middleware wraps a Stage with cross-cutting behavior, composing the same
// way middleware.go's func(http.Handler) http.Handler does.
type Middleware func(Stage) Stage

// Chain applies middlewares to s in the order given: the first middleware
// listed runs outermost, exactly like middleware.Chain.
func Chain(s Stage, middlewares ...Middleware) Stage {
	for i := len(middlewares) - 1; i >= 0; i-- {
		s = middlewares[i](s)
	}
	return s
}

// Timed logs the stage's name and duration at Info level on success, Error
// level (with the error) on failure.
func Timed(log *zap.SugaredLogger, name string) Middleware {
	return func(next Stage) Stage {
		return func(ctx context.Context) error {
			start := time.Now()
			err := next(ctx)
			elapsed := time.Since(start)
			if err != nil {
				log.Errorw("stage failed", "stage", name, "elapsed", elapsed, "error", err)
				return err
			}
			log.Infow("stage completed", "stage", name, "elapsed", elapsed)
			return nil
		}
	}
}

// Recover converts a panic inside the wrapped stage into an error, the way
// middleware.Recover converts one into a 500 response.
func Recover(log *zap.SugaredLogger) Middleware {
	return func(next Stage) Stage {
		return func(ctx context.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("stage panicked", "panic", r, "stack", string(debug.Stack()))
					err = &PanicError{Value: r}
				}
			}()
			return next(ctx)
		}
	}
}

// PanicError wraps a recovered panic value as a regular error.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("pipeline: stage panicked: %v", e.Value)
}

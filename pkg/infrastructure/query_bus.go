package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	"github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

type simpleQueryBus[Q domain.Query[D], D any, R any] struct {
	handlers map[string]application.QueryHandler[Q, D, R]
	mu       sync.RWMutex
	logger   application.AppLogger
}

// NewSimpleQueryBus cria um barramento de consultas em memória. Cada consulta roda
// em sua própria goroutine e respeita o cancelamento do contexto.
func NewSimpleQueryBus[Q domain.Query[D], D any, R any](logger application.AppLogger) application.QueryBus[Q, D, R] {
	return &simpleQueryBus[Q, D, R]{
		handlers: make(map[string]application.QueryHandler[Q, D, R]),
		logger:   logger,
	}
}

func (bus *simpleQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[queryName] = handler
}

type queryResult[R any] struct {
	value R
	err   error
}

func (bus *simpleQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	name := query.QueryName()

	bus.mu.RLock()
	handler, found := bus.handlers[name]
	bus.mu.RUnlock()

	var zero R
	if !found {
		application.LogError(ctx, bus.logger, "no handler registered for query", ErrNoHandler, map[string]interface{}{
			"query_name": name,
		})
		return zero, fmt.Errorf("query %s: %w", name, ErrNoHandler)
	}

	resultChan := make(chan queryResult[R], 1)
	go func() {
		value, err := handler.Handle(ctx, query)
		resultChan <- queryResult[R]{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "query cancelled", ctx.Err(), map[string]interface{}{
			"query_name": name,
		})
		return zero, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			application.LogError(ctx, bus.logger, "error handling query", result.err, map[string]interface{}{
				"query_name": name,
			})
			return zero, result.err
		}
		return result.value, nil
	}
}

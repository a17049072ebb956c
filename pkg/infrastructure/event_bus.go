package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
	"github.com/mateusmacedo/ticket-kiosk/pkg/domain"
)

// simpleEventBus entrega cada evento a todos os manipuladores registrados, cada um
// em sua própria goroutine, e aguarda todos terminarem.
type simpleEventBus[E domain.Event[T], T any] struct {
	handlers map[string][]application.EventHandler[E, T]
	mu       sync.RWMutex
	logger   application.AppLogger
}

func NewSimpleEventBus[E domain.Event[T], T any](logger application.AppLogger) application.EventBus[E, T] {
	return &simpleEventBus[E, T]{
		handlers: make(map[string][]application.EventHandler[E, T]),
		logger:   logger,
	}
}

func (bus *simpleEventBus[E, T]) RegisterHandler(eventName string, handler application.EventHandler[E, T]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
}

func (bus *simpleEventBus[E, T]) Publish(ctx context.Context, event E) error {
	name := event.EventName()

	bus.mu.RLock()
	handlers := append([]application.EventHandler[E, T](nil), bus.handlers[name]...)
	bus.mu.RUnlock()

	if len(handlers) == 0 {
		application.LogDebug(ctx, bus.logger, "no handler registered for event", map[string]interface{}{
			"event_name": name,
		})
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))
	done := make(chan struct{})

	for _, handler := range handlers {
		wg.Add(1)
		go func(h application.EventHandler[E, T]) {
			defer wg.Done()
			if err := h.Handle(ctx, event); err != nil {
				errChan <- err
			}
		}(handler)
	}

	go func() {
		wg.Wait()
		close(errChan)
		close(done)
	}()

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "error publishing event", ctx.Err(), map[string]interface{}{
			"event_name": name,
		})
		return ctx.Err()
	case <-done:
		return bus.collectErrors(ctx, name, errChan)
	}
}

func (bus *simpleEventBus[E, T]) collectErrors(ctx context.Context, name string, errChan <-chan error) error {
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		application.LogDebug(ctx, bus.logger, "event published", map[string]interface{}{
			"event_name": name,
		})
		return nil
	}

	joined := errors.Join(errs...)
	application.LogError(ctx, bus.logger, "error publishing event", joined, map[string]interface{}{
		"event_name": name,
		"failures":   len(errs),
	})
	return joined
}

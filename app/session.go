package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"katalog-produk/service"
)

// ErrSessionClosed is returned by Do after Close
var ErrSessionClosed = errors.New("catalog session closed")

// Session serializes every catalog mutation onto one goroutine.
// Handlers, the scanner callback and background reloads all go through Do, so the
// CatalogService never sees two operations at once.
type Session struct {
	catalog *service.CatalogService
	events  chan func()
	done    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession creates a Session around catalog. Call Start before Do.
func NewSession(catalog *service.CatalogService) *Session {
	return &Session{
		catalog: catalog,
		events:  make(chan func()),
		done:    make(chan struct{}),
	}
}

// Start launches the event loop
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run()
	})
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case fn := <-s.events:
			fn()
		case <-s.done:
			return
		}
	}
}

// Do runs fn on the event loop and waits for it to finish.
// A panic inside fn is returned as an error and the loop keeps running.
func (s *Session) Do(ctx context.Context, fn func(catalog *service.CatalogService)) error {
	result := make(chan error, 1)
	event := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ Catalog event panic recovered: %v", r)
				result <- fmt.Errorf("catalog event panicked: %v", r)
			}
		}()
		fn(s.catalog)
		result <- nil
	}

	select {
	case s.events <- event:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once queued the event always runs; wait for it even if ctx ends
	return <-result
}

// Reload fetches the product collection and replaces the catalog.
// The fetch runs outside the loop so filters keep working while it is in flight;
// it is not cancelled with ctx. When reloads overlap only the newest one is applied.
func (s *Session) Reload(ctx context.Context) error {
	var generation uint64
	if err := s.Do(ctx, func(c *service.CatalogService) { generation = c.BeginLoad() }); err != nil {
		return err
	}

	products, fetchErr := s.catalog.FetchProducts(context.WithoutCancel(ctx))

	if err := s.Do(context.WithoutCancel(ctx), func(c *service.CatalogService) {
		c.CompleteLoad(generation, products, fetchErr)
	}); err != nil {
		return err
	}
	return fetchErr
}

// ReloadAsync starts a Reload in the background
func (s *Session) ReloadAsync(ctx context.Context) {
	go func() {
		if err := s.Reload(ctx); err != nil && !errors.Is(err, ErrSessionClosed) {
			log.Printf("⚠️  Background reload finished with error: %v", err)
		}
	}()
}

// Close stops the event loop; pending Do calls return ErrSessionClosed
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katalog-produk/models"
	"katalog-produk/service"
)

type stubRepository struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    int
	// gate blocks ListProducts until closed when set
	gate chan struct{}
}

func (r *stubRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	gate := r.gate
	r.calls++
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]models.Product{}, r.products...), nil
}

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Kopi", Category: "Minuman", Price: 15000, Barcode: "111"},
		{ID: "2", Name: "Roti", Category: "Makanan", Price: 8000},
	}
}

func newTestSession(repo *stubRepository) *Session {
	catalog := service.NewCatalogService(repo, service.NewNotificationQueue(), nil, nil)
	s := NewSession(catalog)
	s.Start()
	return s
}

func TestSessionReload(t *testing.T) {
	s := newTestSession(&stubRepository{products: sampleProducts()})
	defer s.Close()

	require.NoError(t, s.Reload(context.Background()))

	var state models.DisplayState
	var count int
	require.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {
		state = c.DisplayState()
		count = len(c.FilteredProducts())
	}))
	assert.Equal(t, models.DisplayPopulated, state)
	assert.Equal(t, 2, count)
}

func TestSessionReloadFailure(t *testing.T) {
	s := newTestSession(&stubRepository{err: errors.New("firestore: unavailable")})
	defer s.Close()

	err := s.Reload(context.Background())
	require.Error(t, err)

	var state models.DisplayState
	require.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {
		state = c.DisplayState()
	}))
	assert.Equal(t, models.DisplayError, state)
}

func TestSessionFiltersRunDuringLoad(t *testing.T) {
	repo := &stubRepository{products: sampleProducts(), gate: make(chan struct{})}
	s := newTestSession(repo)
	defer s.Close()

	done := make(chan error, 1)
	go func() { done <- s.Reload(context.Background()) }()

	waitForLoadInFlight(t, s)

	var filtered int
	var state models.DisplayState
	require.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {
		c.Search("kopi")
		filtered = len(c.FilteredProducts())
		state = c.DisplayState()
	}))
	assert.Zero(t, filtered)
	assert.Equal(t, models.DisplayEmpty, state)

	close(repo.gate)
	require.NoError(t, <-done)

	require.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {
		filtered = len(c.FilteredProducts())
		state = c.DisplayState()
	}))
	assert.Equal(t, 2, filtered)
	assert.Equal(t, models.DisplayPopulated, state)
}

func waitForLoadInFlight(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		var inFlight bool
		_ = s.Do(context.Background(), func(c *service.CatalogService) { inFlight = c.LoadInFlight() })
		return inFlight
	}, time.Second, 5*time.Millisecond)
}

func (r *stubRepository) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestSessionOverlappingReloadsKeepNewest(t *testing.T) {
	gate := make(chan struct{})
	repo := &stubRepository{products: sampleProducts(), gate: gate}
	s := newTestSession(repo)
	defer s.Close()

	stale := make(chan error, 1)
	go func() { stale <- s.Reload(context.Background()) }()
	require.Eventually(t, func() bool { return repo.Calls() == 1 }, time.Second, 5*time.Millisecond)

	// The second reload reads the store after the data changed
	repo.mu.Lock()
	repo.gate = nil
	repo.products = []models.Product{{ID: "3", Name: "Teh"}}
	repo.mu.Unlock()
	require.NoError(t, s.Reload(context.Background()))

	// The first fetch finishes last, with an error
	repo.mu.Lock()
	repo.err = errors.New("firestore: deadline exceeded")
	repo.mu.Unlock()
	close(gate)
	assert.Error(t, <-stale)

	var ids []string
	var state models.DisplayState
	require.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {
		for _, p := range c.AllProducts() {
			ids = append(ids, p.ID)
		}
		state = c.DisplayState()
	}))
	assert.Equal(t, []string{"3"}, ids)
	assert.Equal(t, models.DisplayPopulated, state)
}

func TestSessionRecoversPanics(t *testing.T) {
	s := newTestSession(&stubRepository{})
	defer s.Close()

	err := s.Do(context.Background(), func(c *service.CatalogService) { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The loop is still alive
	assert.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {}))
}

func TestSessionClosed(t *testing.T) {
	s := newTestSession(&stubRepository{})
	s.Close()
	s.Close()

	err := s.Do(context.Background(), func(c *service.CatalogService) {})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionDoHonoursContext(t *testing.T) {
	// Not started, so nothing ever receives the event
	s := NewSession(service.NewCatalogService(&stubRepository{}, nil, nil, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Do(ctx, func(c *service.CatalogService) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionSerializesCallers(t *testing.T) {
	s := newTestSession(&stubRepository{products: sampleProducts()})
	defer s.Close()
	require.NoError(t, s.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Do(context.Background(), func(c *service.CatalogService) {
				if i%2 == 0 {
					c.Search("kopi")
				} else {
					c.SelectCategory(models.AllCategories)
				}
			})
		}(i)
	}
	wg.Wait()

	var all int
	require.NoError(t, s.Do(context.Background(), func(c *service.CatalogService) {
		all = len(c.AllProducts())
	}))
	assert.Equal(t, 2, all)
}

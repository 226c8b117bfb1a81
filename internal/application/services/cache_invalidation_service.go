package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
)

// CacheInvalidationService handles cache invalidation based on events
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	// Subscribe to global turno updates
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelTurnoUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to turno updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Println("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Println("Cache invalidation service stopped")
}

// processEvents processes turno events and invalidates cache accordingly
func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.TurnoEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent handles a single turno event
func (s *CacheInvalidationService) handleEvent(event *entities.TurnoEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("Processing cache invalidation for event: %s (turno: %s, type: %s)",
		event.ID, event.TurnoID, event.EventType)

	// Every booking or cancellation shifts availability, and a query for
	// "any" doctor cannot be matched by doctor id alone, so the whole
	// availability namespace goes. The keys are few and short-lived.
	if err := s.cache.DeletePattern(ctx, availabilityCachePrefix+"*"); err != nil {
		log.Printf("Warning: Failed to invalidate availability cache: %v", err)
	}

	// HTTP-layer cached responses for the same endpoints.
	if err := s.cache.DeletePattern(ctx, "http:cache:*disponibilidad*"); err != nil {
		log.Printf("Warning: Failed to invalidate cached availability responses: %v", err)
	}
}

// InvalidateAvailabilityCaches invalidates all availability caches.
// This should be called after agenda or configuration changes, which do
// not flow through the event bus.
func (s *CacheInvalidationService) InvalidateAvailabilityCaches(ctx context.Context) error {
	patterns := []string{
		availabilityCachePrefix + "*",
		"http:cache:*disponibilidad*",
	}

	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
		log.Printf("Invalidated cache pattern: %s", pattern)
	}

	return nil
}

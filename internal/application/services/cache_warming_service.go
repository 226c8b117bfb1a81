package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
)

// CacheWarmingService handles cache warming for frequently accessed data
type CacheWarmingService struct {
	doctorRepo repositories.DoctorRepository
	cache      providers.CacheProvider
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(
	doctorRepo repositories.DoctorRepository,
	cache providers.CacheProvider,
) *CacheWarmingService {
	return &CacheWarmingService{
		doctorRepo: doctorRepo,
		cache:      cache,
	}
}

// WarmCache warms the cache with frequently accessed data
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	log.Println("Starting cache warming...")

	if err := s.warmDoctores(ctx); err != nil {
		log.Printf("Failed to warm doctores: %v", err)
	}

	log.Println("Cache warming completed")
	return nil
}

// warmDoctores caches the active roster and each doctor individually
func (s *CacheWarmingService) warmDoctores(ctx context.Context) error {
	doctores, err := s.doctorRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch doctores: %w", err)
	}

	// Cache the roster with 3 minute TTL
	if data, err := json.Marshal(doctores); err == nil {
		if err := s.cache.Set(ctx, "doctores:list", data, 180); err != nil {
			return fmt.Errorf("failed to cache doctores list: %w", err)
		}
	}

	// Cache each doctor individually with 5 minute TTL
	for i := range doctores {
		doctor := &doctores[i]
		data, err := json.Marshal(doctor)
		if err != nil {
			log.Printf("Failed to marshal doctor %s: %v", doctor.ID, err)
			continue
		}
		key := fmt.Sprintf("doctor:%s", doctor.ID)
		if err := s.cache.Set(ctx, key, data, 300); err != nil {
			log.Printf("Failed to cache doctor %s: %v", doctor.ID, err)
		}
	}

	log.Printf("Warmed cache with %d doctores", len(doctores))
	return nil
}

// StartPeriodicWarming starts a background goroutine that periodically warms the cache
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	// Initial warming
	if err := s.WarmCache(ctx); err != nil {
		log.Printf("Initial cache warming failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(context.Background()); err != nil {
					log.Printf("Periodic cache warming failed: %v", err)
				}
			}
		}
	}()
	log.Printf("Started periodic cache warming every %v", interval)
}

// InvalidateCache invalidates all cached data (useful after bulk updates)
func (s *CacheWarmingService) InvalidateCache(ctx context.Context) error {
	patterns := []string{
		"doctor:*",
		"doctores:*",
		availabilityCachePrefix + "*",
	}

	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			log.Printf("Failed to invalidate cache pattern %s: %v", pattern, err)
		}
	}

	log.Println("Cache invalidated")
	return nil
}

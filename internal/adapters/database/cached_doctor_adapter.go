package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
)

// CachedDoctorAdapter wraps DoctorAdapter with caching
type CachedDoctorAdapter struct {
	adapter repositories.DoctorRepository
	cache   providers.CacheProvider
}

// NewCachedDoctorAdapter creates a new cached doctor adapter
func NewCachedDoctorAdapter(adapter repositories.DoctorRepository, cache providers.CacheProvider) repositories.DoctorRepository {
	return &CachedDoctorAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	doctorByIDTTL   = 300 // 5 minutes for single doctor
	doctoresListTTL = 180 // 3 minutes for the active roster
)

func doctorCacheKey(id string) string {
	return fmt.Sprintf("doctor:%s", id)
}

const doctoresListCacheKey = "doctores:list"

// GetByID retrieves a doctor by ID with caching
func (a *CachedDoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	cacheKey := doctorCacheKey(id)

	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var doctor entities.Doctor
		if err := json.Unmarshal(cached, &doctor); err == nil {
			return &doctor, nil
		}
		// If unmarshal fails, continue to fetch from DB
		log.Printf("Failed to unmarshal cached doctor %s: %v", id, err)
	}

	// Cache miss - fetch from database
	doctor, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(doctor); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, doctorByIDTTL); err != nil {
				log.Printf("Failed to cache doctor %s: %v", id, err)
			}
		}
	}()

	return doctor, nil
}

// List retrieves the active doctors with caching
func (a *CachedDoctorAdapter) List(ctx context.Context) ([]entities.Doctor, error) {
	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, doctoresListCacheKey); err == nil {
		var doctores []entities.Doctor
		if err := json.Unmarshal(cached, &doctores); err == nil {
			return doctores, nil
		}
		log.Printf("Failed to unmarshal cached doctores list: %v", err)
	}

	// Cache miss - fetch from database
	doctores, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(doctores); err == nil {
			if err := a.cache.Set(bgCtx, doctoresListCacheKey, data, doctoresListTTL); err != nil {
				log.Printf("Failed to cache doctores list: %v", err)
			}
		}
	}()

	return doctores, nil
}

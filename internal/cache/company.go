package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scoutdesk/scoutdesk/internal/model"
)

// Cache key prefixes and TTLs.
const (
	companyKeyPrefix = "company:"

	// DefaultCompanyTTL is the TTL for cached company detail.
	DefaultCompanyTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// CompanyCache stores full company detail (signals, notes, sources) as JSON.
type CompanyCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewCompanyCache creates a CompanyCache. A non-positive ttl uses DefaultCompanyTTL.
func NewCompanyCache(c *Cache, ttl time.Duration) *CompanyCache {
	if ttl <= 0 {
		ttl = DefaultCompanyTTL
	}
	return &CompanyCache{cache: c, ttl: ttl}
}

// GetCompany retrieves a company from cache.
// Returns ErrCacheMiss if not found.
func (cc *CompanyCache) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	data, err := cc.cache.client.Get(ctx, companyKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var company model.Company
	if err := json.Unmarshal(data, &company); err != nil {
		// Treat undecodable entries as a miss; the caller will overwrite them.
		return nil, ErrCacheMiss
	}

	return &company, nil
}

// SetCompany stores a company in cache.
func (cc *CompanyCache) SetCompany(ctx context.Context, company *model.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("failed to encode company: %w", err)
	}

	if err := cc.cache.client.Set(ctx, companyKey(company.ID), data, cc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache company: %w", err)
	}

	return nil
}

// DeleteCompany removes a company from cache.
func (cc *CompanyCache) DeleteCompany(ctx context.Context, id string) error {
	if err := cc.cache.client.Del(ctx, companyKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete company from cache: %w", err)
	}
	return nil
}

func companyKey(id string) string {
	return companyKeyPrefix + id
}

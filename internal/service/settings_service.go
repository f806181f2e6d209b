package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/validation"
)

const settingsCacheKey = "site"

// SettingsInput is the admin settings form
type SettingsInput struct {
	OrgName      string `json:"org_name" validate:"max=200"`
	ABN          string `json:"abn" validate:"max=50"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=50"`
	FooterNote   string `json:"footer_note" validate:"max=2000"`
	BannerText   string `json:"banner_text" validate:"max=2000"`
	BannerImage  string `json:"banner_image" validate:"max=255"`
}

// SettingsService serves the site settings row, cached because every page renders it
type SettingsService struct {
	repo  *repository.SettingsRepository
	cache *ristretto.Cache[string, models.SiteSettings]
	ttl   time.Duration
}

// NewSettingsService creates a settings service whose cached copy lives for ttl
func NewSettingsService(repo *repository.SettingsRepository, ttl time.Duration) (*SettingsService, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, models.SiteSettings]{
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create settings cache: %w", err)
	}
	return &SettingsService{repo: repo, cache: c, ttl: ttl}, nil
}

// Get returns the site settings
func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	if cached, ok := s.cache.Get(settingsCacheKey); ok {
		return &cached, nil
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(settingsCacheKey, *settings, 1, s.ttl)
	s.cache.Wait()
	return settings, nil
}

// Update saves new settings and drops the cached copy
func (s *SettingsService) Update(ctx context.Context, in SettingsInput) (*models.SiteSettings, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	orgName := strings.TrimSpace(in.OrgName)
	if orgName == "" {
		orgName = models.DefaultOrgName
	}

	settings := &models.SiteSettings{
		OrgName:      orgName,
		ABN:          strings.TrimSpace(in.ABN),
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		Phone:        strings.TrimSpace(in.Phone),
		FooterNote:   in.FooterNote,
		BannerText:   in.BannerText,
		BannerImage:  strings.TrimSpace(in.BannerImage),
	}
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}

	s.cache.Del(settingsCacheKey)
	return s.Get(ctx)
}

// Close stops the cache's background goroutines
func (s *SettingsService) Close() {
	s.cache.Close()
}

package repository

import (
	"context"
	"fmt"
	"time"

	"alloneword/internal/database"
	"alloneword/internal/models"
)

// SettingsRepository reads and writes the single site_settings row
type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the site settings
func (r *SettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	query := `
		SELECT org_name, abn, contact_email, phone, footer_note, banner_text, banner_image, updated_at
		FROM site_settings
		WHERE id = 1
	`
	s := &models.SiteSettings{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.OrgName,
		&s.ABN,
		&s.ContactEmail,
		&s.Phone,
		&s.FooterNote,
		&s.BannerText,
		&s.BannerImage,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if s.OrgName == "" {
		s.OrgName = models.DefaultOrgName
	}
	return s, nil
}

// Update overwrites the site settings
func (r *SettingsRepository) Update(ctx context.Context, s *models.SiteSettings) error {
	query := `
		UPDATE site_settings
		SET org_name = ?, abn = ?, contact_email = ?, phone = ?, footer_note = ?, banner_text = ?, banner_image = ?, updated_at = ?
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query,
		s.OrgName, s.ABN, s.ContactEmail, s.Phone, s.FooterNote, s.BannerText, s.BannerImage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

package models

import "time"

// DefaultOrgName is used until an admin sets an organisation name
const DefaultOrgName = "Alloneword"

// SiteSettings is the single row of site-wide branding and contact details
type SiteSettings struct {
	OrgName      string
	ABN          string
	ContactEmail string
	Phone        string
	FooterNote   string
	BannerText   string
	BannerImage  string
	UpdatedAt    time.Time
}

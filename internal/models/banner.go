package models

import "time"

// BannerType tells what a featured banner links to.
type BannerType string

const (
	BannerService  BannerType = "service"
	BannerProfile  BannerType = "profile"
	BannerExternal BannerType = "external"
)

// FeaturedBanner is home-screen promotional content, visible inside its
// date window while active. Higher priority sorts first.
type FeaturedBanner struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	ImageURL    string     `json:"imageUrl"`
	Type        BannerType `json:"type"`
	TargetID    string     `json:"targetId,omitempty"`
	ExternalURL string     `json:"externalUrl,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	IsActive    bool       `json:"isActive"`
	Priority    int        `json:"priority"`
}

// Visible reports whether the banner should be shown at the given time.
func (b *FeaturedBanner) Visible(now time.Time) bool {
	return b.IsActive && !now.Before(b.StartDate) && !now.After(b.EndDate)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User owns links and collects per-click earnings on its balance.
// The balance is only ever incremented, and only inside the same
// transaction that records the click.
type User struct {
	gorm.Model
	Email   string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Balance decimal.Decimal `json:"balance" gorm:"type:decimal(12,4);not null;default:0"`
}

type Link struct {
	gorm.Model
	ShortCode      string          `json:"short_code" gorm:"type:varchar(20);uniqueIndex;not null"`
	DestinationURL string          `json:"destination_url" gorm:"type:text;not null"`
	OwnerID        uint            `json:"owner_id" gorm:"index;not null"`
	IsActive       bool            `json:"is_active" gorm:"not null;default:true"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	TotalClicks    int64           `json:"total_clicks" gorm:"not null;default:0"`
	TotalEarnings  decimal.Decimal `json:"total_earnings" gorm:"type:decimal(12,4);not null;default:0"`
}

// IsExpired reports whether the link is past its expiry. A nil
// ExpiresAt means the link never expires.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// ClickEvent is written exactly once per accounted visit. IsUnique is
// computed at creation time and never revised afterwards.
type ClickEvent struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	LinkID           uint            `json:"link_id" gorm:"index;not null"`
	RequesterIP      string          `json:"requester_ip" gorm:"type:varchar(45);index"`
	DeviceType       string          `json:"device_type" gorm:"type:varchar(10)"`
	OS               string          `json:"os" gorm:"type:varchar(50)"`
	ScreenResolution string          `json:"screen_resolution" gorm:"type:varchar(20)"`
	IsMobile         bool            `json:"is_mobile"`
	IsTablet         bool            `json:"is_tablet"`
	Revenue          decimal.Decimal `json:"revenue" gorm:"type:decimal(8,4);not null"`
	IsUnique         bool            `json:"is_unique"`
	CreatedAt        time.Time       `json:"created_at"`
}

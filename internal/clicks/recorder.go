package clicks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"linkfly/internal/device"
	"linkfly/models"
)

var (
	// ErrLinkInactive rejects clicks on deactivated links before any
	// write happens.
	ErrLinkInactive = errors.New("link is inactive")
	// ErrLinkExpired rejects clicks past the link's expiry timestamp.
	ErrLinkExpired = errors.New("link has expired")
)

// Store is the persistence collaborator. RecordClick must apply its
// four writes (event insert, link click counter, link earnings, owner
// balance) as one atomic unit; the recorder never does read-modify-write
// arithmetic in memory.
type Store interface {
	ExistsPriorClickFromIP(ctx context.Context, linkID uint, ip string) (bool, error)
	RecordClick(ctx context.Context, link *models.Link, event *models.ClickEvent) error
}

// Recorder turns an accounted visit into a durable ClickEvent plus the
// matching counter and balance accruals.
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// Record validates the link, computes uniqueness, and persists the
// click. A click is unique when no prior event exists for the same
// (link, IP) pair. Uniqueness is stored but does not gate revenue:
// every accounted click accrues, repeated or not. Two racing first
// clicks from one IP may both come out unique; the counters are
// transactional either way.
func (r *Recorder) Record(ctx context.Context, link *models.Link, requesterIP string, p device.Profile, revenue decimal.Decimal) (*models.ClickEvent, error) {
	now := r.now()
	if !link.IsActive {
		return nil, ErrLinkInactive
	}
	if link.IsExpired(now) {
		return nil, ErrLinkExpired
	}

	seen, err := r.store.ExistsPriorClickFromIP(ctx, link.ID, requesterIP)
	if err != nil {
		return nil, fmt.Errorf("checking prior clicks: %w", err)
	}

	event := &models.ClickEvent{
		ID:               uuid.New(),
		LinkID:           link.ID,
		RequesterIP:      requesterIP,
		DeviceType:       string(p.DeviceType),
		OS:               p.OS,
		ScreenResolution: p.ScreenWidth + "x" + p.ScreenHeight,
		IsMobile:         p.IsMobile,
		IsTablet:         p.IsTablet,
		Revenue:          revenue,
		IsUnique:         !seen,
		CreatedAt:        now,
	}

	if err := r.store.RecordClick(ctx, link, event); err != nil {
		return nil, fmt.Errorf("recording click: %w", err)
	}
	return event, nil
}

package clicks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkfly/internal/device"
	"linkfly/models"
)

// fakeStore applies the same all-or-nothing semantics as the real
// transaction, guarded by a mutex so the concurrency test exercises
// genuinely parallel Record calls.
type fakeStore struct {
	mu          sync.Mutex
	events      []*models.ClickEvent
	totalClicks int64
	earnings    decimal.Decimal
	balance     decimal.Decimal
	seenIPs     map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{seenIPs: make(map[string]bool)}
}

func (f *fakeStore) ExistsPriorClickFromIP(_ context.Context, _ uint, ip string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenIPs[ip], nil
}

func (f *fakeStore) RecordClick(_ context.Context, _ *models.Link, event *models.ClickEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.totalClicks++
	f.earnings = f.earnings.Add(event.Revenue)
	f.balance = f.balance.Add(event.Revenue)
	f.seenIPs[event.RequesterIP] = true
	return nil
}

func activeLink() *models.Link {
	link := &models.Link{
		ShortCode:      "abc12",
		DestinationURL: "https://example.com/",
		OwnerID:        7,
		IsActive:       true,
	}
	link.ID = 1
	return link
}

func phoneProfile() device.Profile {
	return device.Profile{
		IsMobile:     true,
		IsPhone:      true,
		DeviceType:   device.TypeMobile,
		OS:           "Android",
		ScreenWidth:  "390",
		ScreenHeight: "844",
	}
}

func TestRecordPersistsClick(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store)

	rate := decimal.RequireFromString("0.0960")
	event, err := rec.Record(context.Background(), activeLink(), "203.0.113.9", phoneProfile(), rate)
	require.NoError(t, err)

	assert.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, uint(1), event.LinkID)
	assert.Equal(t, "203.0.113.9", event.RequesterIP)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.Equal(t, "Android", event.OS)
	assert.Equal(t, "390x844", event.ScreenResolution)
	assert.True(t, event.IsMobile)
	assert.False(t, event.IsTablet)
	assert.True(t, event.IsUnique, "first click from an IP is unique")
	assert.Equal(t, "0.0960", event.Revenue.StringFixed(4))

	assert.Equal(t, int64(1), store.totalClicks)
	assert.Equal(t, "0.0960", store.earnings.StringFixed(4))
	assert.Equal(t, "0.0960", store.balance.StringFixed(4))
}

func TestRecordRepeatClickStillAccrues(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store)
	link := activeLink()
	rate := decimal.RequireFromString("0.0200")

	first, err := rec.Record(context.Background(), link, "203.0.113.9", phoneProfile(), rate)
	require.NoError(t, err)
	second, err := rec.Record(context.Background(), link, "203.0.113.9", phoneProfile(), rate)
	require.NoError(t, err)

	assert.True(t, first.IsUnique)
	assert.False(t, second.IsUnique)
	// Uniqueness is informational: repeated clicks accrue all the same.
	assert.Equal(t, int64(2), store.totalClicks)
	assert.Equal(t, "0.0400", store.earnings.StringFixed(4))
}

func TestRecordRejectsInactiveLink(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store)
	link := activeLink()
	link.IsActive = false

	_, err := rec.Record(context.Background(), link, "203.0.113.9", phoneProfile(), decimal.Zero)
	assert.ErrorIs(t, err, ErrLinkInactive)
	assert.Empty(t, store.events, "no writes on a rejected click")
	assert.Equal(t, int64(0), store.totalClicks)
}

func TestRecordRejectsExpiredLink(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store)
	link := activeLink()
	past := time.Now().Add(-time.Hour)
	link.ExpiresAt = &past

	_, err := rec.Record(context.Background(), link, "203.0.113.9", phoneProfile(), decimal.Zero)
	assert.ErrorIs(t, err, ErrLinkExpired)
	assert.Empty(t, store.events)
}

// N parallel clicks on the same link must each land exactly once in
// the counters, whatever the interleaving.
func TestRecordConcurrentClicks(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store)
	link := activeLink()
	rate := decimal.RequireFromString("0.0100")

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rec.Record(context.Background(), link, "203.0.113.9", phoneProfile(), rate)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(n), store.totalClicks)
	assert.Equal(t, "0.5000", store.earnings.StringFixed(4))
	assert.Equal(t, "0.5000", store.balance.StringFixed(4))
	assert.Len(t, store.events, n)
}

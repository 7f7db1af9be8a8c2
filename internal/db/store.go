package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"linkfly/models"
)

// ErrLinkNotFound is returned when no link exists for a short code.
var ErrLinkNotFound = errors.New("link not found")

// Store implements the persistence surface the redirect pipeline
// needs: link lookup, prior-click checks, and the atomic click/accrual
// write.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindLinkByCode(ctx context.Context, shortCode string) (*models.Link, error) {
	var link models.Link
	err := s.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("looking up link %q: %w", shortCode, err)
	}
	return &link, nil
}

func (s *Store) CreateLink(ctx context.Context, link *models.Link) error {
	return s.db.WithContext(ctx).Create(link).Error
}

func (s *Store) ExistsPriorClickFromIP(ctx context.Context, linkID uint, ip string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ClickEvent{}).
		Where("link_id = ? AND requester_ip = ?", linkID, ip).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordClick applies the four click writes in one transaction. The
// counter updates go through SQL expressions so concurrent clicks on
// the same link never lose an increment to an in-memory stale read.
func (s *Store) RecordClick(ctx context.Context, link *models.Link, event *models.ClickEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("inserting click event: %w", err)
		}

		res := tx.Model(&models.Link{}).Where("id = ?", link.ID).Updates(map[string]interface{}{
			"total_clicks":   gorm.Expr("total_clicks + 1"),
			"total_earnings": gorm.Expr("total_earnings + ?", event.Revenue),
		})
		if res.Error != nil {
			return fmt.Errorf("updating link counters: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrLinkNotFound
		}

		err := tx.Model(&models.User{}).Where("id = ?", link.OwnerID).
			Update("balance", gorm.Expr("balance + ?", event.Revenue)).Error
		if err != nil {
			return fmt.Errorf("accruing owner balance: %w", err)
		}
		return nil
	})
}

package events

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PageViewsInWindow returns all page views for a website with created_at
// inside [from, to], oldest first.
func PageViewsInWindow(db *gorm.DB, websiteID uint, from, to time.Time) ([]PageView, error) {
	var pageViews []PageView
	err := db.Where("website_id = ? AND created_at >= ? AND created_at <= ?", websiteID, from, to).
		Order("created_at asc").
		Find(&pageViews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query page views: %w", err)
	}
	return pageViews, nil
}

// UniqueVisitorCount counts distinct visitor ids for a website across all
// stored page views. Rows without a visitor id share a single bucket.
func UniqueVisitorCount(db *gorm.DB, websiteID uint) (int64, error) {
	var count int64
	err := db.Model(&PageView{}).
		Where("website_id = ?", websiteID).
		Select("COUNT(DISTINCT COALESCE(visitor_id, 'unknown'))").
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}
	return count, nil
}

// DeletePageViewsBefore removes page views older than cutoff in batches,
// returning the number of rows deleted.
func DeletePageViewsBefore(db *gorm.DB, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	var total int64
	for {
		result := db.Where("created_at < ?", cutoff).
			Limit(batchSize).
			Delete(&PageView{})
		if result.Error != nil {
			return total, fmt.Errorf("failed to delete page views: %w", result.Error)
		}
		total += result.RowsAffected
		if result.RowsAffected < int64(batchSize) {
			return total, nil
		}
	}
}

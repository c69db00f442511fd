package websites

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// WebsiteNotFoundError represents an error when a website is not found
type WebsiteNotFoundError struct {
	Hostname string
}

func (e *WebsiteNotFoundError) Error() string {
	return fmt.Sprintf("website not found for hostname: %s", e.Hostname)
}

// NewWebsiteNotFoundError creates a new WebsiteNotFoundError
func NewWebsiteNotFoundError(hostname string) *WebsiteNotFoundError {
	return &WebsiteNotFoundError{Hostname: hostname}
}

// Website represents a tracked website. Websites created implicitly by the
// ingestion endpoint have no owner; explicitly registered ones carry the
// registrant's email.
type Website struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Hostname          string    `gorm:"unique;not null" json:"hostname"`
	OwnerEmail        *string   `gorm:"index" json:"owner_email"`
	IsPublic          bool      `gorm:"default:false" json:"is_public"`
	ShareToken        *string   `gorm:"uniqueIndex" json:"share_token"` // Set while the dashboard is publicly shared
	NotificationEmail *string   `json:"notification_email"`
	CreatedAt         time.Time `json:"created_at"`
}

// GetWebsiteByHostname retrieves a website by exact hostname match.
func GetWebsiteByHostname(db *gorm.DB, hostname string) (*Website, error) {
	var website Website
	if err := db.Where("hostname = ?", hostname).First(&website).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWebsiteNotFoundError(hostname)
		}
		return nil, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return &website, nil
}

// GetOrCreateByHostname resolves a website by hostname, creating an unowned
// record on first contact. Any hostname can self-register by sending a
// tracked event.
func GetOrCreateByHostname(db *gorm.DB, hostname string) (*Website, error) {
	hostname = strings.ToLower(strings.TrimSpace(hostname))

	website, err := GetWebsiteByHostname(db, hostname)
	if err == nil {
		return website, nil
	}

	var notFound *WebsiteNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	created := &Website{Hostname: hostname}
	if createErr := CreateWebsite(db, created); createErr != nil {
		// A concurrent ingest may have created it; look again before failing.
		if website, err = GetWebsiteByHostname(db, hostname); err == nil {
			return website, nil
		}
		return nil, fmt.Errorf("failed to create website: %w", createErr)
	}

	return created, nil
}

// Register creates a website owned by the given email, or returns the
// existing record when the hostname is already registered. The bool result
// reports whether a new record was created.
func Register(db *gorm.DB, hostname, ownerEmail string) (*Website, bool, error) {
	hostname = strings.ToLower(strings.TrimSpace(hostname))

	existing, err := GetWebsiteByHostname(db, hostname)
	if err == nil {
		return existing, false, nil
	}

	var notFound *WebsiteNotFoundError
	if !errors.As(err, &notFound) {
		return nil, false, err
	}

	website := &Website{Hostname: hostname, OwnerEmail: &ownerEmail}
	if err := CreateWebsite(db, website); err != nil {
		return nil, false, fmt.Errorf("failed to register website: %w", err)
	}
	return website, true, nil
}

// GetAllWebsites retrieves all websites
func GetAllWebsites(db *gorm.DB) ([]Website, error) {
	var websites []Website
	if err := db.Find(&websites).Error; err != nil {
		return nil, fmt.Errorf("failed to get websites: %w", err)
	}
	return websites, nil
}

// GetWebsiteByID retrieves a website by its ID
func GetWebsiteByID(db *gorm.DB, id uint) (Website, error) {
	var website Website
	if err := db.First(&website, id).Error; err != nil {
		return Website{}, err
	}
	return website, nil
}

// GetWebsitesWithNotificationEmail retrieves websites that have milestone
// notifications configured.
func GetWebsitesWithNotificationEmail(db *gorm.DB) ([]Website, error) {
	var websites []Website
	if err := db.Where("notification_email IS NOT NULL AND notification_email != ''").
		Find(&websites).Error; err != nil {
		return nil, fmt.Errorf("failed to get websites with notification email: %w", err)
	}
	return websites, nil
}

// CreateWebsite creates a new website
func CreateWebsite(db *gorm.DB, website *Website) error {
	website.CreatedAt = time.Now().UTC()
	return db.Create(website).Error
}

// SetNotificationEmail updates the milestone notification address; an empty
// email clears it.
func SetNotificationEmail(db *gorm.DB, websiteID uint, email string) error {
	value := any(nil)
	if email != "" {
		value = email
	}
	return db.Model(&Website{}).
		Where("id = ?", websiteID).
		Update("notification_email", value).Error
}

// DeleteWebsite deletes a website by its ID
func DeleteWebsite(db *gorm.DB, id uint) error {
	result := db.Delete(&Website{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package websites

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrShareTokenNotFound is returned when no public website matches a token.
// Callers must not reveal whether the token was unknown or merely revoked.
var ErrShareTokenNotFound = errors.New("share token not found")

// generateShareToken returns a 32-character hex token from a CSPRNG.
func generateShareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// EnableSharing marks the website public and assigns a share token. Calling
// it on an already shared website keeps the existing token.
func EnableSharing(db *gorm.DB, websiteID uint) (string, error) {
	website, err := GetWebsiteByID(db, websiteID)
	if err != nil {
		return "", fmt.Errorf("failed to load website: %w", err)
	}

	if website.IsPublic && website.ShareToken != nil {
		return *website.ShareToken, nil
	}

	token, err := generateShareToken()
	if err != nil {
		return "", err
	}

	if err := db.Model(&Website{}).Where("id = ?", websiteID).Updates(map[string]any{
		"is_public":   true,
		"share_token": token,
	}).Error; err != nil {
		return "", fmt.Errorf("failed to enable sharing: %w", err)
	}
	return token, nil
}

// DisableSharing revokes public access and clears the token. Old share links
// stop working immediately.
func DisableSharing(db *gorm.DB, websiteID uint) error {
	if err := db.Model(&Website{}).Where("id = ?", websiteID).Updates(map[string]any{
		"is_public":   false,
		"share_token": nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to disable sharing: %w", err)
	}
	return nil
}

// GetWebsiteByShareToken resolves a share token to its website. Tokens only
// resolve while the website remains public.
func GetWebsiteByShareToken(db *gorm.DB, token string) (*Website, error) {
	if token == "" {
		return nil, ErrShareTokenNotFound
	}

	var website Website
	err := db.Where("share_token = ? AND is_public = ?", token, true).First(&website).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareTokenNotFound
		}
		return nil, fmt.Errorf("unexpected error querying share token: %w", err)
	}
	return &website, nil
}

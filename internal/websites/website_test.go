package websites_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sitepulse/internal/testsupport"
	"sitepulse/internal/websites"
)

func TestGetWebsiteByHostname(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	created := testsupport.CreateTestWebsite(db, "example.com")

	t.Run("found", func(t *testing.T) {
		website, err := websites.GetWebsiteByHostname(db, "example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, website.ID)
	})

	t.Run("not found returns typed error", func(t *testing.T) {
		_, err := websites.GetWebsiteByHostname(db, "missing.example")
		require.Error(t, err)

		var notFound *websites.WebsiteNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "missing.example", notFound.Hostname)
	})
}

func TestGetOrCreateByHostname(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	t.Run("creates unowned website on first contact", func(t *testing.T) {
		website, err := websites.GetOrCreateByHostname(db, "new-site.example")
		require.NoError(t, err)
		assert.Equal(t, "new-site.example", website.Hostname)
		assert.Nil(t, website.OwnerEmail)
		assert.NotZero(t, website.ID)
	})

	t.Run("returns existing website on repeat contact", func(t *testing.T) {
		first, err := websites.GetOrCreateByHostname(db, "repeat.example")
		require.NoError(t, err)

		second, err := websites.GetOrCreateByHostname(db, "repeat.example")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		db.Model(&websites.Website{}).Where("hostname = ?", "repeat.example").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		first, err := websites.GetOrCreateByHostname(db, "Mixed-Case.Example")
		require.NoError(t, err)

		second, err := websites.GetOrCreateByHostname(db, "  mixed-case.example ")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestRegister(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	t.Run("creates owned website", func(t *testing.T) {
		website, created, err := websites.Register(db, "owned.example", "owner@example.com")
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, website.OwnerEmail)
		assert.Equal(t, "owner@example.com", *website.OwnerEmail)
	})

	t.Run("repeat registration is idempotent", func(t *testing.T) {
		first, created, err := websites.Register(db, "idem.example", "a@example.com")
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := websites.Register(db, "idem.example", "b@example.com")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		// The original owner is kept.
		require.NotNil(t, second.OwnerEmail)
		assert.Equal(t, "a@example.com", *second.OwnerEmail)
	})
}

func TestSetNotificationEmail(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "notify.example")

	require.NoError(t, websites.SetNotificationEmail(db, website.ID, "alerts@example.com"))

	reloaded, err := websites.GetWebsiteByID(db, website.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NotificationEmail)
	assert.Equal(t, "alerts@example.com", *reloaded.NotificationEmail)

	require.NoError(t, websites.SetNotificationEmail(db, website.ID, ""))
	reloaded, err = websites.GetWebsiteByID(db, website.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.NotificationEmail)
}

func TestSharing(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "share.example")

	t.Run("enable assigns a token and resolves it", func(t *testing.T) {
		token, err := websites.EnableSharing(db, website.ID)
		require.NoError(t, err)
		assert.Len(t, token, 32)

		found, err := websites.GetWebsiteByShareToken(db, token)
		require.NoError(t, err)
		assert.Equal(t, website.ID, found.ID)
		assert.True(t, found.IsPublic)
	})

	t.Run("enable is idempotent while shared", func(t *testing.T) {
		first, err := websites.EnableSharing(db, website.ID)
		require.NoError(t, err)
		second, err := websites.EnableSharing(db, website.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("disable revokes the token", func(t *testing.T) {
		token, err := websites.EnableSharing(db, website.ID)
		require.NoError(t, err)

		require.NoError(t, websites.DisableSharing(db, website.ID))

		_, err = websites.GetWebsiteByShareToken(db, token)
		assert.ErrorIs(t, err, websites.ErrShareTokenNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := websites.GetWebsiteByShareToken(db, "does-not-exist")
		assert.ErrorIs(t, err, websites.ErrShareTokenNotFound)

		_, err = websites.GetWebsiteByShareToken(db, "")
		assert.ErrorIs(t, err, websites.ErrShareTokenNotFound)
	})
}

func TestGetWebsitesWithNotificationEmail(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	with := testsupport.CreateTestWebsite(db, "with-email.example")
	testsupport.CreateTestWebsite(db, "without-email.example")
	require.NoError(t, websites.SetNotificationEmail(db, with.ID, "alerts@example.com"))

	result, err := websites.GetWebsitesWithNotificationEmail(db)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, with.ID, result[0].ID)
}

func TestDeleteWebsite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "doomed.example")

	require.NoError(t, websites.DeleteWebsite(db, website.ID))
	assert.ErrorIs(t, websites.DeleteWebsite(db, website.ID), gorm.ErrRecordNotFound)
}

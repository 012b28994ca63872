package script

import (
	"testing"

	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and script store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t, &Script{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// sampleScript builds an enabled actions script with a small DSL body.
func sampleScript(key string) *Script {
	return &Script{
		Key:  key,
		Type: TypeActions,
		DSL: Document{
			"url": "{{target.url}}",
			"actions": []interface{}{
				map[string]interface{}{"type": "click", "selector": "#go"},
			},
		},
		Defaults: Document{
			"waitUntil": "load",
			"timeout":   float64(30000),
		},
		Enabled: true,
	}
}

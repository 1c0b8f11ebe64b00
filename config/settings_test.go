package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("REPORT_CACHE_TTL", "")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "lexora", s.DBName)
	assert.Equal(t, 2525, s.SMTPPort)
	assert.False(t, s.CascadeStrict)
	assert.Empty(t, s.CORSAllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Firestore ")
	t.Setenv("PORT", "9090")
	t.Setenv("REPORT_CACHE_TTL", "90s")
	t.Setenv("CASCADE_STRICT", "true")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.lexora.in,https://admin.lexora.in")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "firestore", s.StoreBackend)
	assert.Equal(t, "9090", s.Port)
	assert.Equal(t, 90*time.Second, s.ReportCacheTTL)
	assert.True(t, s.CascadeStrict)
	assert.Equal(t, "mongodb://localhost:27017", s.MongoURI)
	assert.Equal(t, []string{"https://app.lexora.in", "https://admin.lexora.in"}, s.CORSAllowedOrigins)
}

func TestMaskMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://admin:***@db:27017/?authSource=admin", maskMongoURI("mongodb://admin:secret@db:27017/?authSource=admin"))
	assert.Equal(t, "mongodb://localhost:27017", maskMongoURI("mongodb://localhost:27017"))
}

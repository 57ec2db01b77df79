package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCredentialsBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.Header.Set("Authorization", "Bearer some-token")

	creds := ExtractCredentials(r)
	assert.Equal(t, "some-token", creds.Token)
	assert.Empty(t, creds.AdminKey)
}

func TestExtractCredentialsAdminKeySources(t *testing.T) {
	// Header beats query beats body.
	r := httptest.NewRequest(http.MethodPost, "/admin/users?adminKey=from-query", nil)
	r.Header.Set("X-Admin-Key", "from-header")
	assert.Equal(t, "from-header", ExtractCredentials(r).AdminKey)

	r = httptest.NewRequest(http.MethodPost, "/admin/users?adminKey=from-query", nil)
	assert.Equal(t, "from-query", ExtractCredentials(r).AdminKey)

	body := `{"adminKey":"from-body","other":1}`
	r = httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	assert.Equal(t, "from-body", ExtractCredentials(r).AdminKey)
}

func TestExtractCredentialsRestoresBody(t *testing.T) {
	body := `{"adminKey":"secret","title":"post"}`
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	creds := ExtractCredentials(r)
	assert.Equal(t, "secret", creds.AdminKey)

	// Handlers must still be able to decode the full body afterwards.
	restored, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(restored))
}

func TestExtractCredentialsSkipsNonJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/post", bytes.NewReader([]byte("adminKey=zzz")))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Empty(t, ExtractCredentials(r).AdminKey)

	// GET bodies are never sniffed.
	r = httptest.NewRequest(http.MethodGet, "/posts", strings.NewReader(`{"adminKey":"zzz"}`))
	r.Header.Set("Content-Type", "application/json")
	assert.Empty(t, ExtractCredentials(r).AdminKey)
}

func TestGetIdentityFromContextFallsBack(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	identity := GetIdentityFromContext(r.Context())
	assert.True(t, identity.IsAnonymous())
}

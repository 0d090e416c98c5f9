package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	store := &Store{bucket: "happi-uploads"}
	assert.Equal(t, "https://storage.googleapis.com/happi-uploads/vehicle_cards/a.png", store.URL("vehicle_cards/a.png"))

	store.cdnDomain = "cdn.happi.example"
	assert.Equal(t, "https://cdn.happi.example/vehicle_cards/a.png", store.URL("/vehicle_cards/a.png"))
}

func TestClientOptionsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	assert.Empty(t, ClientOptionsFromEnv())

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")
	assert.Len(t, ClientOptionsFromEnv(), 1)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
	assert.Len(t, ClientOptionsFromEnv(), 1)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(t.Context(), "", "")
	assert.Error(t, err)
}

package app

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"happi-app-go/internal/config"
	familydomain "happi-app-go/internal/domain/family"
	"happi-app-go/internal/metrics"
	"happi-app-go/internal/repository/inmemory"
	"happi-app-go/internal/repository/repotest"
	"happi-app-go/internal/storage/local"
	"happi-app-go/pkg/logger"
)

type routerEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	dbConn := repotest.Open(t)
	store, err := local.New(t.TempDir(), "/storage")
	require.NoError(t, err)

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "router-test-secret",
			SessionTTL: time.Hour,
			CookieName: "happi_session",
			BcryptCost: bcrypt.MinCost,
		},
		Storage: config.StorageConfig{PublicBaseURL: "/storage", MaxUploadBytes: 1 << 20},
		Cache:   config.CacheConfig{CatalogTTL: time.Minute},
	}
	router, err := Router(cfg, dbConn, Infra{
		Cache:       inmemory.NewCatalogCache(),
		Images:      store,
		StorageRoot: store.Root(),
		Metrics:     metrics.New(),
	}, logger.Nop())
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &routerEnv{server: server, db: dbConn}
}

// client keeps cookies and stops at the first redirect.
func (e *routerEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *routerEnv) do(t *testing.T, c *http.Client, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type pageResponse struct {
	Component string                     `json:"component"`
	Props     map[string]json.RawMessage `json:"props"`
	Flash     struct {
		Success string `json:"success"`
		Error   string `json:"error"`
	} `json:"flash"`
}

func decodePage(t *testing.T, body []byte) pageResponse {
	t.Helper()
	var page pageResponse
	require.NoError(t, json.Unmarshal(body, &page), string(body))
	return page
}

func (e *routerEnv) register(t *testing.T, c *http.Client, name, email string) {
	t.Helper()
	resp, body := e.do(t, c, http.MethodPost, "/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, string(body))
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestHealthAndAnonymousRedirect(t *testing.T) {
	env := newRouterEnv(t)
	c := env.client(t)

	resp, body := env.do(t, c, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, _ = env.do(t, c, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body = env.do(t, c, http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodePage(t, body)
	assert.Equal(t, "Auth/Login", page.Component)
	assert.Equal(t, "Please log in to continue.", page.Flash.Error)
}

func TestRegisterLoginAndDashboard(t *testing.T) {
	env := newRouterEnv(t)
	c := env.client(t)

	env.register(t, c, "Ana", "Ana@Example.com")

	resp, body := env.do(t, c, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	page := decodePage(t, body)
	assert.Equal(t, "Dashboard", page.Component)
	assert.Equal(t, "Welcome to HappiCover!", page.Flash.Success)
	assert.Contains(t, string(page.Props["auth"]), `"email":"ana@example.com"`)

	resp, _ = env.do(t, c, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = env.do(t, c, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = env.do(t, c, http.MethodPost, "/login", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "These credentials do not match our records.")

	resp, _ = env.do(t, c, http.MethodPost, "/login", map[string]string{
		"email":    "ana@example.com",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = env.do(t, c, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	env := newRouterEnv(t)
	c := env.client(t)

	resp, body := env.do(t, c, http.MethodPost, "/register", map[string]string{
		"name":     "",
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), `"errors"`)

	resp, _ = env.do(t, c, http.MethodPost, "/register", map[string]string{"unknown": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPurchaseShowsOnProfileAndMetrics(t *testing.T) {
	env := newRouterEnv(t)
	c := env.client(t)
	health := repotest.CreateCategory(t, env.db, "health", 1)
	product := repotest.CreateProduct(t, env.db, health, "health-basic", "120.00")

	env.register(t, c, "Budi", "budi@example.com")

	resp, body := env.do(t, c, http.MethodGet, "/insurance/checkout/"+product.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Insurance/Checkout", decodePage(t, body).Component)

	resp, body = env.do(t, c, http.MethodPost, "/insurance/purchase", map[string]any{
		"product_id":     product.ID,
		"payment_method": "bank_transfer",
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, string(body))
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	resp, body = env.do(t, c, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodePage(t, body)
	assert.Equal(t, "Insurance policy purchased successfully.", page.Flash.Success)
	var insurances []map[string]any
	require.NoError(t, json.Unmarshal(page.Props["insurances"], &insurances))
	assert.Len(t, insurances, 1)

	resp, body = env.do(t, c, http.MethodGet, "/insurance/product/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	resp, body = env.do(t, c, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `happi_policies_purchased_total{category="health"} 1`)
	assert.Contains(t, string(body), `route="/insurance/purchase"`)
}

func TestFamilyInviteAndAccept(t *testing.T) {
	env := newRouterEnv(t)
	owner := env.client(t)
	guest := env.client(t)

	env.register(t, owner, "Owner", "owner@example.com")
	env.register(t, guest, "Guest", "guest@example.com")

	resp, body := env.do(t, owner, http.MethodPost, "/family", map[string]string{"name": "Santoso"})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, string(body))

	resp, body = env.do(t, owner, http.MethodPost, "/family/invite", map[string]string{
		"email":        "Guest@example.com",
		"relationship": "spouse",
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, string(body))

	var invitation familydomain.Invitation
	require.NoError(t, env.db.Where("email = ?", "guest@example.com").Take(&invitation).Error)

	anonymous := env.client(t)
	resp, body = env.do(t, anonymous, http.MethodGet, "/family/join/"+invitation.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	join := decodePage(t, body)
	assert.Equal(t, "Family/Join", join.Component)
	assert.JSONEq(t, "false", string(join.Props["userMatches"]))

	resp, _ = env.do(t, guest, http.MethodPost, "/family/accept/"+invitation.Token, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/family", resp.Header.Get("Location"))

	var members int64
	require.NoError(t, env.db.Model(&familydomain.Member{}).Count(&members).Error)
	assert.EqualValues(t, 2, members)

	resp, _ = env.do(t, guest, http.MethodPost, "/family/accept/"+invitation.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (e *routerEnv) upload(t *testing.T, c *http.Client, fields map[string]string, image []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("vehicle_card_image", "card.png")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/vehicles", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func TestVehicleCardUploadIsServed(t *testing.T) {
	env := newRouterEnv(t)
	c := env.client(t)
	env.register(t, c, "Citra", "citra@example.com")

	fields := map[string]string{"make": "Suzuki", "model": "Ertiga", "year": "2021", "license_plate": "D 1 CTR"}
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	resp := env.upload(t, c, fields, png)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/vehicles", resp.Header.Get("Location"))

	var key string
	require.NoError(t, env.db.Table("vehicles").Select("vehicle_card_image_path").Where("license_plate = ?", "D 1 CTR").Scan(&key).Error)
	require.NotEmpty(t, key)

	resp, body := env.do(t, c, http.MethodGet, "/storage/"+key, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, png, body)

	resp = env.upload(t, c, fields, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.upload(t, c, fields, append(png, bytes.Repeat([]byte{0}, 1<<20)...))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

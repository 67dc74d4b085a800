package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"belanja/internal/config"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(driver string) config.Config {
	cfg := config.Config{
		DBDriver:     driver,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		JWTSecret:    "test_jwt_secret",
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
		SeedProducts: true,
	}
	if driver == config.DriverSQLite {
		cfg.DatabaseDSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	}
	return cfg
}

func doJSON(t *testing.T, a *application, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.fiber.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestNewApp_EndToEnd(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			a, err := newApp(testConfig(driver))
			require.NoError(t, err)
			defer a.close()

			resp := doJSON(t, a, http.MethodGet, "/health", "", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()

			creds := map[string]string{"username": "shopper", "password": "hunter22"}
			resp = doJSON(t, a, http.MethodPost, "/signup", "", creds)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()

			resp = doJSON(t, a, http.MethodPost, "/login", "", creds)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var login map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
			resp.Body.Close()
			token := login["token"]
			require.NotEmpty(t, token)

			// The seeded catalog is served.
			resp = doJSON(t, a, http.MethodGet, "/products", token, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var products []map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
			resp.Body.Close()
			assert.Len(t, products, len(sampleProducts()))

			resp = doJSON(t, a, http.MethodPost, "/cart/add", token, map[string]interface{}{
				"productID": products[0]["id"],
				"quantity":  2,
			})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()

			resp = doJSON(t, a, http.MethodGet, "/cart", token, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var cart struct {
				CartDetails []map[string]interface{} `json:"cartDetails"`
				TotalAmount float64                  `json:"total_amount"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&cart))
			resp.Body.Close()
			require.Len(t, cart.CartDetails, 1)
			// Ceramic Mug: 2 * 85.50 + 200 flat tax
			assert.InDelta(t, 371.0, cart.TotalAmount, 1e-9)
		})
	}
}

func TestNewApp_UnknownRouteNeedsAuth(t *testing.T) {
	a, err := newApp(testConfig(config.DriverMemory))
	require.NoError(t, err)
	defer a.close()

	resp := doJSON(t, a, http.MethodGet, "/does-not-exist", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNewApp_SeedsOnlyOnce(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)

	first, err := newApp(cfg)
	require.NoError(t, err)
	defer first.close()

	// Same shared in-memory database, already populated.
	second, err := newApp(cfg)
	require.NoError(t, err)
	defer second.close()

	token := signupAndLogin(t, second)
	resp := doJSON(t, second, http.MethodGet, "/products", token, nil)
	defer resp.Body.Close()
	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, len(sampleProducts()))
}

func signupAndLogin(t *testing.T, a *application) string {
	t.Helper()
	creds := map[string]string{"username": "seeder", "password": "seeded123"}
	resp := doJSON(t, a, http.MethodPost, "/signup", "", creds)
	resp.Body.Close()
	resp = doJSON(t, a, http.MethodPost, "/login", "", creds)
	defer resp.Body.Close()
	var login map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	return login["token"]
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	a, err := newApp(testConfig(config.DriverMemory))
	require.NoError(t, err)
	defer a.close()

	a.fiber.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
	// Registered after the auth group, so the token check runs first.
	token := signupAndLogin(t, a)
	resp := doJSON(t, a, http.MethodGet, "/boom", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body["error"])
}

package httpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "propsite/internal/adapters/http_server"
	"propsite/internal/app"
	"propsite/internal/auth"
	"propsite/internal/domain"
	"propsite/internal/storage/filestore"
	"propsite/internal/versions"
)

const (
	adminEmail  = "admin@example.test"
	editorEmail = "editor@example.test"
	password    = "pw"
)

type api struct {
	t      *testing.T
	url    string
	client *http.Client
}

func newAPI(t *testing.T, limiter *httpserver.GuestLimiter) *api {
	t.Helper()
	ctx := context.Background()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, fs.PutUser(ctx, domain.User{Email: adminEmail, Name: "Admin", Role: domain.RoleAdmin, PasswordHash: hash}))
	require.NoError(t, fs.PutUser(ctx, domain.User{Email: editorEmail, Name: "Editor", Role: domain.RoleEditor, PasswordHash: hash}))

	store := versions.New(fs)
	srv := httpserver.New(5*time.Second, false)
	srv.MountHandlers(&httpserver.Handlers{
		Q:     app.NewQueryService(store, fs, nil, time.Minute, "en"),
		P:     app.NewPropertyService(store, fs, nil, 2),
		Users: fs,
		Guest: limiter,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	return &api{
		t:   t,
		url: ts.URL,
		client: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (a *api) do(method, path, user, body string, hdr map[string]string) *http.Response {
	a.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.url+path, rd)
	require.NoError(a.t, err)
	if user != "" {
		req.SetBasicAuth(user, password)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := a.client.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeBody(t *testing.T, res *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Body).Decode(dst))
}

// publishVilla creates, fills and publishes villa_x through the admin API.
func (a *api) publishVilla() {
	a.t.Helper()
	res := a.do(http.MethodPost, "/v1/admin/properties", adminEmail,
		`{"name":{"en":"Villa X","fr":"La Villa X"},"status":"rental","listingLanguages":["en","fr"]}`, nil)
	require.Equal(a.t, http.StatusCreated, res.StatusCode)

	res = a.do(http.MethodPatch, "/v1/admin/properties/villa_x", editorEmail, `{
		"rentals":[{"id":"main","name":"Main house","bookings":[{"id":"b1","guestNames":["Ann"],
			"checkIn":"2026-03-01","checkOut":"2026-03-08","bookingId":"ABC123",
			"dateOfBooking":"07/02/2026","preferredLanguage":"fr"}]}],
		"guestInfo":{"wifi":{"network":"villa","password":"s3cret"}}
	}`, nil)
	require.Equal(a.t, http.StatusOK, res.StatusCode)

	res = a.do(http.MethodPost, "/v1/admin/properties/villa_x/publish", adminEmail, "", nil)
	require.Equal(a.t, http.StatusOK, res.StatusCode)
}

func TestAdmin_Authentication(t *testing.T) {
	a := newAPI(t, nil)

	res := a.do(http.MethodGet, "/v1/admin/properties", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, res.Header.Get("WWW-Authenticate"), "Basic")

	res = a.do(http.MethodGet, "/v1/admin/properties", "nobody@example.test", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = a.do(http.MethodGet, "/v1/admin/properties", editorEmail, "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = a.do(http.MethodPost, "/v1/admin/properties", editorEmail, `{"id":"x","name":"X","status":"rental"}`, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestAdmin_DraftPublishFlow(t *testing.T) {
	a := newAPI(t, nil)

	res := a.do(http.MethodPost, "/v1/admin/properties", adminEmail, `{"name":"Villa X","status":"rental"}`, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created map[string]string
	decodeBody(t, res, &created)
	assert.Equal(t, "villa_x", created["id"])

	res = a.do(http.MethodPost, "/v1/admin/properties", adminEmail, `{"name":"Villa X","status":"rental"}`, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = a.do(http.MethodGet, "/v1/properties/villa_x", "", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = a.do(http.MethodPatch, "/v1/admin/properties/villa_x", editorEmail, `{"colour":"red"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res = a.do(http.MethodPatch, "/v1/admin/properties/villa_x", editorEmail, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = a.do(http.MethodPatch, "/v1/admin/properties/villa_x", editorEmail, `{"summary":{"en":"Sea view","fr":"Vue mer"}}`, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = a.do(http.MethodGet, "/v1/admin/properties/villa_x/preview?lang=fr", editorEmail, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var preview domain.PropertyView
	decodeBody(t, res, &preview)
	assert.Equal(t, "Vue mer", preview.Summary)

	res = a.do(http.MethodPost, "/v1/admin/properties/villa_x/publish", adminEmail, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var pub map[string]bool
	decodeBody(t, res, &pub)
	assert.True(t, pub["published"])

	res = a.do(http.MethodPost, "/v1/admin/properties/villa_x/revert", editorEmail, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = a.do(http.MethodGet, "/v1/admin/properties/villa_x/history", editorEmail, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var hist app.History
	decodeBody(t, res, &hist)
	assert.Empty(t, hist.Drafts)
	assert.Len(t, hist.Archive, 2)

	res = a.do(http.MethodGet, "/v1/properties/villa_x", "", "", map[string]string{"Accept-Language": "fr-CH, en;q=0.5"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "fr", res.Header.Get("Content-Language"))
	etag := res.Header.Get("ETag")
	require.NotEmpty(t, etag)

	res = a.do(http.MethodGet, "/v1/properties/villa_x", "", "", map[string]string{"Accept-Language": "fr", "If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, res.StatusCode)
}

func TestUnsafePropertyIDs(t *testing.T) {
	a := newAPI(t, nil)
	a.publishVilla()

	for _, id := range []string{"..", "villa_x%2F..", "a%2Fb"} {
		res := a.do(http.MethodGet, "/v1/properties/"+id, "", "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode, "GET %s", id)

		res = a.do(http.MethodPatch, "/v1/admin/properties/"+id, editorEmail, `{"name":"pwned"}`, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode, "PATCH %s", id)

		res = a.do(http.MethodPost, "/v1/admin/properties/"+id+"/publish", adminEmail, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode, "publish %s", id)
	}
}

func TestPublic_GuestLinks(t *testing.T) {
	a := newAPI(t, httpserver.NewGuestLimiter(100, 100))
	a.publishVilla()

	res := a.do(http.MethodGet, "/v1/properties/villa_x?lang=fr&source=guest&bookingId=abc123&bookingDate=07-02-2026", "", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "private, no-store", res.Header.Get("Cache-Control"))
	var v domain.PropertyView
	decodeBody(t, res, &v)
	require.NotNil(t, v.Guest)
	assert.Equal(t, "s3cret", v.Guest.Wifi.Password)
	assert.Equal(t, "La Villa X", v.Name)

	// booking prefers French
	res = a.do(http.MethodGet, "/v1/properties/villa_x?lang=en&source=guest&bookingId=ABC123&bookingDate=07022026", "", "", nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "fr", loc.Query().Get("lang"))
	assert.Equal(t, "ABC123", loc.Query().Get("bookingId"))

	// mismatch drops every guest parameter
	res = a.do(http.MethodGet, "/v1/properties/villa_x?lang=fr&source=guest&bookingId=ABC123&bookingDate=2026-02-07", "", "", nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	loc, err = url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/v1/properties/villa_x", loc.Path)
	assert.Equal(t, url.Values{"lang": {"fr"}}, loc.Query())

	// a plain request never carries guest data
	res = a.do(http.MethodGet, "/v1/properties/villa_x?lang=fr", "", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var plain domain.PropertyView
	decodeBody(t, res, &plain)
	assert.Nil(t, plain.Guest)
}

func TestPublic_GuestLinksAreRateLimited(t *testing.T) {
	a := newAPI(t, httpserver.NewGuestLimiter(0.001, 1))
	a.publishVilla()

	q := "/v1/properties/villa_x?source=guest&bookingId=x&bookingDate=1"
	res := a.do(http.MethodGet, q, "", "", nil)
	assert.Equal(t, http.StatusFound, res.StatusCode)

	res = a.do(http.MethodGet, q, "", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("Retry-After"))

	// non-guest traffic is not limited
	res = a.do(http.MethodGet, "/v1/properties/villa_x", "", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestPublic_GuestLimitIgnoresForwardedFor(t *testing.T) {
	a := newAPI(t, httpserver.NewGuestLimiter(0.001, 1))
	a.publishVilla()

	limited := 0
	for i := 0; i < 20; i++ {
		hdr := map[string]string{"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i), "X-Real-IP": fmt.Sprintf("10.0.1.%d", i)}
		res := a.do(http.MethodGet, "/v1/properties/villa_x?source=guest&bookingId=x&bookingDate=1", "", "", hdr)
		if res.StatusCode == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 19, limited)
}

func TestThemes_PutAndList(t *testing.T) {
	a := newAPI(t, nil)

	res := a.do(http.MethodPut, "/v1/admin/themes/ocean", editorEmail, `{"light":{"primary":"#003366"}}`, nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res = a.do(http.MethodGet, "/v1/themes", "", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var themes []domain.Theme
	decodeBody(t, res, &themes)
	require.Len(t, themes, 1)
	assert.Equal(t, "ocean", themes[0].Name)
	assert.Equal(t, "#003366", themes[0].Light.Primary)
	assert.Equal(t, domain.DefaultTheme().Dark, themes[0].Dark)
}

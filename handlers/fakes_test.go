package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spark-feed/models"
	"spark-feed/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFeed struct {
	page    *models.FeedPage
	err     error
	userID  string
	query   models.FeedQuery
	profile *models.PersonalizationProfile
	calls   int
}

func (f *fakeFeed) GenerateFeed(_ context.Context, userID string, query models.FeedQuery, profile *models.PersonalizationProfile) (*models.FeedPage, error) {
	f.calls++
	f.userID, f.query, f.profile = userID, query, profile
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return &models.FeedPage{}, nil
	}
	return f.page, nil
}

type fakeProfiles struct {
	err error
}

func (f *fakeProfiles) Build(_ context.Context, userID string) (*models.PersonalizationProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PersonalizationProfile{UserID: userID}, nil
}

type fakeDigests struct {
	req services.DigestRequest
	err error
}

func (f *fakeDigests) BuildDigest(_ context.Context, req services.DigestRequest) (*models.DigestResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.DigestResult{Date: "2024-01-15", Highlights: []models.Highlight{}, Recommendations: []models.Recommendation{}}, nil
}

type fakeRecorder struct {
	err    error
	userID string
	req    models.RecordInteractionRequest
	calls  int
}

func (f *fakeRecorder) RecordInteraction(_ context.Context, userID string, req models.RecordInteractionRequest) (*models.Interaction, error) {
	f.calls++
	f.userID, f.req = userID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Interaction{ID: 1, UserID: userID, ContentID: req.ContentID, ContentKind: req.ContentKind, Action: req.Action}, nil
}

func (f *fakeRecorder) RecordLocation(_ context.Context, userID string, lat, lon float64) (*models.UserLocation, error) {
	f.calls++
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserLocation{UserID: userID, Latitude: lat, Longitude: lon}, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error {
	return f.err
}

var errBoom = errors.New("boom")

// testServer wires the fakes into the real router
type testServer struct {
	feed     *fakeFeed
	profiles *fakeProfiles
	digests  *fakeDigests
	recorder *fakeRecorder
	limiter  *RateLimiter
	db       Pinger
}

func newTestServer() *testServer {
	return &testServer{
		feed:     &fakeFeed{},
		profiles: &fakeProfiles{},
		digests:  &fakeDigests{},
		recorder: &fakeRecorder{},
	}
}

func (s *testServer) do(t *testing.T, method, target, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := SetupRoutes(Router{
		Feed:         NewFeedHandler(s.feed, s.profiles, s.digests),
		Interactions: NewInteractionHandler(s.recorder),
		RateLimiter:  s.limiter,
		DB:           s.db,
	})
	return doRequest(r, method, target, user, body)
}

func doRequest(h http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, expected %d (body %s)", w.Code, code, w.Body.String())
	}
}

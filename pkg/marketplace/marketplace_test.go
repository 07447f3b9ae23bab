package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/directory"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

var (
	anna  = account.Actor{ID: 1, Role: account.RoleClient, Token: "anna-token"}
	boris = account.Actor{ID: 2, Role: account.RoleMaster, Token: "boris-token"}
)

// fakeAPI routes requests by "METHOD /path" and records them in order.
type fakeAPI struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []string
	auth     []string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, NewClient(srv.URL)
}

func (f *fakeAPI) handle(route string, h http.HandlerFunc) {
	f.routes[route] = h
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.requests = append(f.requests, route)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	h, ok := f.routes[route]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   map[string]string{"code": "NOT_FOUND", "message": "no route " + route},
		})
		return
	}
	h(w, r)
}

func (f *fakeAPI) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func hydra(items ...any) map[string]any {
	if items == nil {
		items = []any{}
	}
	return map[string]any{"hydra:member": items, "hydra:totalItems": len(items)}
}

func threePhotos() []eligibility.Photo {
	return []eligibility.Photo{
		{Name: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Name: "b.png", ContentType: "image/png", Data: []byte("b")},
		{Name: "c.png", ContentType: "image/png", Data: []byte("c")},
	}
}

func TestDecodeListAcceptsArrayAndHydra(t *testing.T) {
	plain, err := decodeList[eligibility.Reason]([]byte(`[{"code":"spam","title":"Spam"}]`))
	require.NoError(t, err)
	assert.Equal(t, []eligibility.Reason{{Code: "spam", Title: "Spam"}}, plain)

	wrapped, err := decodeList[eligibility.Reason]([]byte(`{"hydra:member":[{"code":"fraud","title":"Fraud"}],"hydra:totalItems":1}`))
	require.NoError(t, err)
	assert.Equal(t, []eligibility.Reason{{Code: "fraud", Title: "Fraud"}}, wrapped)

	empty, err := decodeList[eligibility.Reason]([]byte(`{"hydra:totalItems":0}`))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = decodeList[eligibility.Reason]([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestAPIErrorKinds(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/users/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]string{"code": "INVALID_TOKEN", "message": "Invalid token"},
		})
	})

	_, err := client.User(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnauthorized))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_TOKEN", apiErr.Code)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = client.User(context.Background(), 8)
	assert.True(t, IsKind(err, KindNotFound))

	offline := NewClient("http://127.0.0.1:1", WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err = offline.Provinces(context.Background())
	assert.True(t, IsKind(err, KindNetwork))
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, KindValidation, kindFor(http.StatusBadRequest))
	assert.Equal(t, KindValidation, kindFor(http.StatusUnprocessableEntity))
	assert.Equal(t, KindUnauthorized, kindFor(http.StatusForbidden))
	assert.Equal(t, KindConflict, kindFor(http.StatusConflict))
	assert.Equal(t, KindServer, kindFor(http.StatusBadGateway))
}

func TestLoadGeography(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/provinces", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, hydra(map[string]any{"id": 1, "title": "North"}))
	})
	api.handle("GET /api/cities", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("province"))
		writeJSON(w, 200, []any{map[string]any{"id": 10, "title": "Harbor", "provinceId": 1,
			"suburbs": []any{map[string]any{"id": 100, "title": "Docks"}}}})
	})
	api.handle("GET /api/districts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, hydra())
	})

	geo, err := client.LoadGeography(context.Background())
	require.NoError(t, err)
	city, ok := geo.City(10)
	require.True(t, ok)
	assert.Equal(t, "Harbor", city.Title)
	_, ok = geo.Province(1)
	assert.True(t, ok)
}

func TestSubmitReviewClientOnClientMakesNoRequests(t *testing.T) {
	api, client := newFakeAPI(t)

	_, report, err := client.SubmitReview(context.Background(), anna,
		eligibility.Party{ID: 3, Role: account.RoleClient},
		eligibility.Draft{Rating: 5, Photos: threePhotos()})

	assert.ErrorIs(t, err, eligibility.ErrReviewNotAllowed)
	assert.True(t, IsEligibilityError(err))
	assert.Zero(t, report.Total())
	assert.Empty(t, api.seen())
}

func TestSubmitReviewUploadsPhotosSequentiallyAndReportsFailures(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"id": 1, "role": "client", "name": "Anna"})
	})
	api.handle("GET /api/tickets/links", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("with"))
		writeJSON(w, 200, hydra(
			map[string]any{"id": 6, "authorId": 1, "masterId": 2, "active": false},
			map[string]any{"id": 7, "authorId": 1, "masterId": 2, "active": true},
		))
	})
	api.handle("POST /api/reviews", func(w http.ResponseWriter, r *http.Request) {
		var p eligibility.ReviewPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, 4, p.Rating)
		assert.Equal(t, "/api/tickets/7", p.Ticket)
		assert.Equal(t, "/api/users/2", p.Master)
		assert.Equal(t, "/api/users/1", p.Client)
		assert.Equal(t, account.RoleClient, p.Type)
		writeJSON(w, 201, map[string]any{"id": 5, "@id": "/api/reviews/5", "rating": 4, "images": []any{}})
	})
	var uploads atomic.Int32
	api.handle("POST /api/reviews/5/photos", func(w http.ResponseWriter, r *http.Request) {
		n := uploads.Add(1)
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		f.Close()
		if header.Filename == "b.png" {
			writeJSON(w, 500, map[string]any{"error": map[string]string{"code": "INTERNAL_ERROR", "message": "boom"}})
			return
		}
		writeJSON(w, 201, map[string]any{"id": n, "url": "https://cdn/" + header.Filename})
	})

	review, report, err := client.SubmitReview(context.Background(), boris,
		eligibility.Party{ID: 1, Role: account.RoleClient},
		eligibility.Draft{Text: "  quick  ", Rating: 4, Photos: threePhotos()})

	require.NoError(t, err)
	assert.Equal(t, 5, review.ID)
	assert.Equal(t, int32(3), uploads.Load())
	assert.Len(t, report.Uploaded, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "b.png", report.Failed[0].Name)
	assert.True(t, IsKind(report.Failed[0].Err, KindServer))
	assert.Equal(t, "saved, but 1 of 3 photos could not be uploaded", report.Warning())
	assert.Len(t, review.Images, 2)

	assert.Equal(t, []string{
		"GET /api/users/1",
		"GET /api/tickets/links",
		"POST /api/reviews",
		"POST /api/reviews/5/photos",
		"POST /api/reviews/5/photos",
		"POST /api/reviews/5/photos",
	}, api.seen())
	for _, h := range api.auth {
		assert.Equal(t, "Bearer boris-token", h)
	}
}

func TestSubmitReviewWithoutActiveTicketStopsBeforeCreate(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"id": 1, "role": "client"})
	})
	api.handle("GET /api/tickets/links", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []any{})
	})

	_, _, err := client.SubmitReview(context.Background(), boris,
		eligibility.Party{ID: 1, Role: account.RoleClient}, eligibility.Draft{Rating: 3})

	assert.ErrorIs(t, err, eligibility.ErrNoActiveTicket)
	assert.NotContains(t, api.seen(), "POST /api/reviews")
}

func TestSubmitReviewRechecksConfirmedRole(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/users/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"id": 3, "role": "master"})
	})

	_, _, err := client.SubmitReview(context.Background(), boris,
		eligibility.Party{ID: 3, Role: account.RoleClient}, eligibility.Draft{Rating: 3})

	assert.ErrorIs(t, err, eligibility.ErrReviewNotAllowed)
	assert.Equal(t, []string{"GET /api/users/3"}, api.seen())
}

func TestReportWarningEmptyOnFullSuccess(t *testing.T) {
	assert.Empty(t, PhotoReport{Uploaded: []Photo{{ID: 1}}}.Warning())
	assert.Empty(t, PhotoReport{}.Warning())
}

func TestSubmitComplaintOpensChatAfterConflict(t *testing.T) {
	api, client := newFakeAPI(t)
	var chatLookups atomic.Int32
	api.handle("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		n := chatLookups.Add(1)
		assert.Equal(t, "2", r.URL.Query().Get("with"))
		if n == 1 {
			writeJSON(w, 200, hydra())
			return
		}
		writeJSON(w, 200, hydra(map[string]any{"id": 9, "@id": "/api/chats/9"}))
	})
	api.handle("POST /api/chats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 409, map[string]any{"error": map[string]string{"code": "CHAT_ALREADY_EXISTS", "message": "exists"}})
	})
	api.handle("POST /api/appeals", func(w http.ResponseWriter, r *http.Request) {
		var p eligibility.ComplaintPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "/api/chats/9", p.Chat)
		assert.Empty(t, p.Ticket)
		assert.Equal(t, "other", p.Reason)
		assert.Equal(t, "/api/users/2", p.Respondent)
		writeJSON(w, 201, map[string]any{"id": 11, "title": p.Title, "status": "new"})
	})

	complaint, report, err := client.SubmitComplaint(context.Background(), anna, 2, 0,
		eligibility.ComplaintDraft{Title: "Rude"})

	require.NoError(t, err)
	assert.Equal(t, 11, complaint.ID)
	assert.Equal(t, "new", complaint.Status)
	assert.Zero(t, report.Total())
	assert.Equal(t, int32(2), chatLookups.Load())
}

func TestSubmitComplaintResolvesChatFromIRI(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, hydra(map[string]any{"@id": "/api/chats/14"}))
	})
	api.handle("POST /api/appeals", func(w http.ResponseWriter, r *http.Request) {
		var p eligibility.ComplaintPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "/api/chats/14", p.Chat)
		writeJSON(w, 201, map[string]any{"id": 15})
	})

	complaint, _, err := client.SubmitComplaint(context.Background(), anna, 2, 0,
		eligibility.ComplaintDraft{Title: "Rude"})

	require.NoError(t, err)
	assert.Equal(t, 15, complaint.ID)
}

func TestSubmitComplaintRejectsMalformedChatReference(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, hydra(map[string]any{"@id": "/api/tickets/14"}))
	})

	_, _, err := client.SubmitComplaint(context.Background(), anna, 2, 0,
		eligibility.ComplaintDraft{Title: "Rude"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open chat")
	assert.Equal(t, []string{"GET /api/chats"}, api.seen())
}

func TestSubmitComplaintWithTicketSkipsChat(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/appeals", func(w http.ResponseWriter, r *http.Request) {
		var p eligibility.ComplaintPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "/api/tickets/4", p.Ticket)
		writeJSON(w, 201, map[string]any{"id": 12})
	})
	api.handle("POST /api/appeals/12/photos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, map[string]any{"id": 1})
	})

	_, report, err := client.SubmitComplaint(context.Background(), boris, 1, 4,
		eligibility.ComplaintDraft{Title: "No show", Reason: "fraud", Photos: threePhotos()[:1]})

	require.NoError(t, err)
	assert.Len(t, report.Uploaded, 1)
	assert.Equal(t, []string{"POST /api/appeals", "POST /api/appeals/12/photos"}, api.seen())
}

func TestSubmitComplaintAgainstSelf(t *testing.T) {
	api, client := newFakeAPI(t)
	_, _, err := client.SubmitComplaint(context.Background(), anna, anna.ID, 0, eligibility.ComplaintDraft{Title: "x"})
	assert.ErrorIs(t, err, eligibility.ErrSelfTarget)
	assert.Empty(t, api.seen())
}

func TestReasonsFallBackToOther(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/appeal-reasons", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]any{})
	})
	assert.Equal(t, []eligibility.Reason{eligibility.ReasonOther}, client.Reasons(context.Background()))
}

func TestBrowseFiltersAndSorts(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	api, client := newFakeAPI(t)
	api.handle("GET /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("service"))
		assert.Equal(t, "1", q.Get("excludeMaster"))
		assert.Equal(t, "5", q.Get("category"))
		writeJSON(w, 200, hydra(
			directory.Listing{ID: 1, Budget: 50, CreatedAt: now.Add(-time.Hour)},
			directory.Listing{ID: 2, Budget: 10, CreatedAt: now.Add(-2 * time.Hour)},
			directory.Listing{ID: 3, Budget: 5, CreatedAt: now.AddDate(0, 0, -2)},
		))
	})

	d := NewDirectory(client)
	d.now = func() time.Time { return now }
	items := d.Browse(context.Background(), BrowseRequest{
		Actor:    anna,
		Category: 5,
		Window:   directory.WindowToday,
		Primary:  directory.KeyPriceAsc,
	})

	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 1, items[1].ID)
	assert.Equal(t, []string{"Bearer anna-token"}, api.auth)
}

func TestBrowseReturnsEmptyOnFailure(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]any{})
	})

	items := NewDirectory(client).Browse(context.Background(), BrowseRequest{Actor: account.Guest()})
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, api.seen(), 1)
}

func TestLoginReturnsActor(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok",
				"user":  map[string]any{"id": 2, "role": "master"},
			},
		})
	})

	actor, err := client.Login(context.Background(), "b@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, account.Actor{ID: 2, Role: account.RoleMaster, Token: "tok"}, actor)
	assert.Equal(t, []string{""}, api.auth)
}

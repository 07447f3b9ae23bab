package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/GTDGit/gtd_market/internal/cache"
	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
)

type fakeUsers struct {
	byID map[int]*models.User
	occ  map[int][]models.Occupation
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int]*models.User{}, occ: map[int][]models.Occupation{}}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	u.ID = len(f.byID) + 1
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetOccupations(_ context.Context, id int) ([]models.Occupation, error) {
	return f.occ[id], nil
}

func (f *fakeUsers) GetNames(_ context.Context, ids []int) (map[int]string, error) {
	out := map[int]string{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = u.Name
		}
	}
	return out, nil
}

type fakeGeoStore struct {
	rows  map[models.GeographyLevel][]models.GeoRow
	calls int
}

func (f *fakeGeoStore) GetAll(_ context.Context, level models.GeographyLevel) ([]models.GeoRow, error) {
	f.calls++
	return f.rows[level], nil
}

type fakeGeoCache struct {
	snap *cache.GeographySnapshot
}

func (f *fakeGeoCache) Get(context.Context) (*cache.GeographySnapshot, error) {
	if f.snap == nil {
		return nil, cache.ErrMiss
	}
	return f.snap, nil
}

func (f *fakeGeoCache) Set(_ context.Context, snap *cache.GeographySnapshot) error {
	snap.CachedAt = time.Now()
	f.snap = snap
	return nil
}

// Province 1 holds city 10 (suburbs 100, 101) and district 20 with
// settlement 200 (village 2000) and community 210. Province 2 is empty.
func seedGeography() *fakeGeoStore {
	return &fakeGeoStore{rows: map[models.GeographyLevel][]models.GeoRow{
		models.LevelProvince:   {{ID: 1, Title: "Moscow Oblast"}, {ID: 2, Title: "Tver Oblast"}},
		models.LevelCity:       {{ID: 10, ParentID: 1, Title: "Khimki"}},
		models.LevelSuburb:     {{ID: 100, ParentID: 10, Title: "Levoberezhny"}, {ID: 101, ParentID: 10, Title: "Skhodnya"}},
		models.LevelDistrict:   {{ID: 20, ParentID: 1, Title: "Odintsovo"}},
		models.LevelSettlement: {{ID: 200, ParentID: 20, Title: "Kubinka"}},
		models.LevelCommunity:  {{ID: 210, ParentID: 20, Title: "Zarechye"}},
		models.LevelVillage:    {{ID: 2000, ParentID: 200, Title: "Naro-Osanovo"}},
	}}
}

func newTestGeography() *GeographyService {
	return NewGeographyService(seedGeography(), &fakeGeoCache{})
}

type fakeAddresses struct {
	rows map[string]map[int][]models.Address
}

func newFakeAddresses() *fakeAddresses {
	return &fakeAddresses{rows: map[string]map[int][]models.Address{}}
}

func (f *fakeAddresses) GetByOwners(_ context.Context, ownerType string, ids []int) (map[int][]models.Address, error) {
	out := map[int][]models.Address{}
	for _, id := range ids {
		if a := f.rows[ownerType][id]; len(a) > 0 {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeAddresses) Replace(_ context.Context, ownerType string, ownerID int, addrs []models.Address) error {
	if f.rows[ownerType] == nil {
		f.rows[ownerType] = map[int][]models.Address{}
	}
	f.rows[ownerType][ownerID] = addrs
	return nil
}

type fakeTickets struct {
	byID   map[int]*models.Ticket
	nextID int
}

func newFakeTickets(tickets ...models.Ticket) *fakeTickets {
	f := &fakeTickets{byID: map[int]*models.Ticket{}, nextID: 1}
	for i := range tickets {
		t := tickets[i]
		f.byID[t.ID] = &t
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

func (f *fakeTickets) List(_ context.Context, flt models.TicketFilter) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range f.byID {
		if flt.Service != nil && t.Service != *flt.Service {
			continue
		}
		if flt.Active != nil && t.Active != *flt.Active {
			continue
		}
		if flt.CategoryID != 0 && t.CategoryID != flt.CategoryID {
			continue
		}
		if flt.ExcludeAuthor != 0 && t.AuthorID == flt.ExcludeAuthor {
			continue
		}
		if flt.ExcludeMaster != 0 && int(t.MasterID.Int64) == flt.ExcludeMaster {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTickets) GetByID(_ context.Context, id int) (*models.Ticket, error) {
	if t, ok := f.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTickets) GetBetween(_ context.Context, a, b int) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range f.byID {
		m := int(t.MasterID.Int64)
		if (t.AuthorID == a && m == b) || (t.AuthorID == b && m == a) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTickets) Create(_ context.Context, t *models.Ticket) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTickets) Update(_ context.Context, t *models.Ticket) error {
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

type fakeReviews struct {
	rows []models.Review
}

func (f *fakeReviews) ListAbout(_ context.Context, userID int, reviewType string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.rows {
		about := r.MasterID
		if r.Type == "client" {
			about = r.ClientID
		}
		if about == userID && (reviewType == "" || r.Type == reviewType) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) Summary(ctx context.Context, userID int) (models.RatingSummary, error) {
	rows, _ := f.ListAbout(ctx, userID, "")
	var s models.RatingSummary
	for _, r := range rows {
		s.Count++
		s.Average += float64(r.Rating)
	}
	if s.Count > 0 {
		s.Average /= float64(s.Count)
	}
	return s, nil
}

func (f *fakeReviews) GetByID(_ context.Context, id int) (*models.Review, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReviews) Create(_ context.Context, rv *models.Review) error {
	for _, r := range f.rows {
		if r.TicketID == rv.TicketID && r.AuthorID == rv.AuthorID {
			return utils.ErrAlreadyReviewed
		}
	}
	rv.ID = len(f.rows) + 1
	rv.CreatedAt = time.Now()
	f.rows = append(f.rows, *rv)
	return nil
}

type fakeAppeals struct {
	rows    []models.Appeal
	reasons []models.AppealReason
}

func (f *fakeAppeals) ListByAuthor(_ context.Context, authorID int) ([]models.Appeal, error) {
	var out []models.Appeal
	for _, a := range f.rows {
		if a.AuthorID == authorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppeals) GetByID(_ context.Context, id int) (*models.Appeal, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			a := f.rows[i]
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAppeals) Create(_ context.Context, a *models.Appeal) error {
	a.ID = len(f.rows) + 1
	a.CreatedAt = time.Now()
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeAppeals) GetReasons(context.Context) ([]models.AppealReason, error) {
	return f.reasons, nil
}

type fakeChats struct {
	rows []models.Chat
}

func (f *fakeChats) GetBetween(_ context.Context, a, b int) (*models.Chat, error) {
	for i := range f.rows {
		if f.rows[i].HasParticipants(a, b) {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeChats) GetByID(_ context.Context, id int) (*models.Chat, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeChats) Create(ctx context.Context, a, b int) (*models.Chat, error) {
	if _, err := f.GetBetween(ctx, a, b); err == nil {
		return nil, utils.ErrChatExists
	}
	if a > b {
		a, b = b, a
	}
	c := models.Chat{ID: len(f.rows) + 1, UserLow: a, UserHigh: b, CreatedAt: time.Now()}
	f.rows = append(f.rows, c)
	return &c, nil
}

type fakeCatalog struct {
	categories  []models.Category
	occupations []models.Occupation
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories:  []models.Category{{ID: 1, Title: "Repair"}, {ID: 2, Title: "Cleaning"}},
		occupations: []models.Occupation{{ID: 11, CategoryID: 1, Title: "Plumber"}, {ID: 21, CategoryID: 2, Title: "Window cleaning"}},
	}
}

func (f *fakeCatalog) GetCategories(context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) GetOccupations(_ context.Context, categoryID int) ([]models.Occupation, error) {
	var out []models.Occupation
	for _, o := range f.occupations {
		if categoryID == 0 || o.CategoryID == categoryID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetOccupation(_ context.Context, id int) (*models.Occupation, error) {
	for _, o := range f.occupations {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCatalog) CategoryExists(_ context.Context, id int) (bool, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakePhotos struct {
	rows []models.Photo
}

func (f *fakePhotos) Create(_ context.Context, p *models.Photo) error {
	p.ID = len(f.rows) + 1
	f.rows = append(f.rows, *p)
	return nil
}

func (f *fakePhotos) GetByOwners(_ context.Context, ownerType string, ids []int) (map[int][]models.Photo, error) {
	want := map[int]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[int][]models.Photo{}
	for _, p := range f.rows {
		if p.OwnerType == ownerType && want[p.OwnerID] {
			out[p.OwnerID] = append(out[p.OwnerID], p)
		}
	}
	return out, nil
}

type fakeStorage struct {
	keys []string
}

func (f *fakeStorage) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeModerator struct {
	labels []string
}

func (f fakeModerator) Moderate(context.Context, []byte) ([]string, error) {
	return f.labels, nil
}

type publishedEvent struct {
	key  string
	data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: key, data: data})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestPhotos() (*PhotoService, *fakeStorage) {
	st := &fakeStorage{}
	return NewPhotoService(&fakePhotos{}, st, NopModerator{}, 1<<20), st
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/cache"
	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/address"
)

// GeographyService serves the reference hierarchy. The assembled tree is
// read through the Redis cache and indexed in memory per snapshot.
type GeographyService struct {
	store GeographyStore
	cache GeographyCacher

	mu      sync.Mutex
	indexed *cache.GeographySnapshot
	geo     *address.Geography
}

// NewGeographyService creates a GeographyService.
func NewGeographyService(store GeographyStore, c GeographyCacher) *GeographyService {
	return &GeographyService{store: store, cache: c}
}

// Snapshot returns the assembled tree, loading it from the database on a
// cache miss. Cache failures are logged and bypassed.
func (s *GeographyService) Snapshot(ctx context.Context) (*cache.GeographySnapshot, error) {
	snap, err := s.cache.Get(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Msg("geography cache read failed")
	}
	return s.Warm(ctx)
}

// Warm rebuilds the tree from the database and refreshes the cache.
func (s *GeographyService) Warm(ctx context.Context) (*cache.GeographySnapshot, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, snap); err != nil {
		log.Warn().Err(err).Msg("geography cache write failed")
	}
	return snap, nil
}

func (s *GeographyService) load(ctx context.Context) (*cache.GeographySnapshot, error) {
	rows := make(map[models.GeographyLevel][]models.GeoRow, 7)
	for _, level := range []models.GeographyLevel{
		models.LevelProvince, models.LevelCity, models.LevelSuburb, models.LevelDistrict,
		models.LevelSettlement, models.LevelCommunity, models.LevelVillage,
	} {
		r, err := s.store.GetAll(ctx, level)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", level, err)
		}
		rows[level] = r
	}

	villages := make(map[int][]address.Village)
	for _, r := range rows[models.LevelVillage] {
		villages[r.ParentID] = append(villages[r.ParentID], address.Village{ID: r.ID, Title: r.Title})
	}
	settlements := make(map[int][]address.Settlement)
	for _, r := range rows[models.LevelSettlement] {
		settlements[r.ParentID] = append(settlements[r.ParentID], address.Settlement{
			ID: r.ID, Title: r.Title, Villages: nonNil(villages[r.ID]),
		})
	}
	communities := make(map[int][]address.Community)
	for _, r := range rows[models.LevelCommunity] {
		communities[r.ParentID] = append(communities[r.ParentID], address.Community{ID: r.ID, Title: r.Title})
	}
	suburbs := make(map[int][]address.Suburb)
	for _, r := range rows[models.LevelSuburb] {
		suburbs[r.ParentID] = append(suburbs[r.ParentID], address.Suburb{ID: r.ID, Title: r.Title})
	}

	snap := &cache.GeographySnapshot{
		Provinces: []address.Province{},
		Cities:    []address.City{},
		Districts: []address.District{},
	}
	for _, r := range rows[models.LevelProvince] {
		snap.Provinces = append(snap.Provinces, address.Province{ID: r.ID, Title: r.Title})
	}
	for _, r := range rows[models.LevelCity] {
		snap.Cities = append(snap.Cities, address.City{
			ID: r.ID, Title: r.Title, ProvinceID: r.ParentID, Suburbs: nonNil(suburbs[r.ID]),
		})
	}
	for _, r := range rows[models.LevelDistrict] {
		snap.Districts = append(snap.Districts, address.District{
			ID: r.ID, Title: r.Title, ProvinceID: r.ParentID,
			Settlements: nonNil(settlements[r.ID]),
			Communities: nonNil(communities[r.ID]),
		})
	}
	return snap, nil
}

// Geography returns the indexed form of the current snapshot.
func (s *GeographyService) Geography(ctx context.Context) (*address.Geography, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed == nil || !s.indexed.CachedAt.Equal(snap.CachedAt) || s.geo == nil {
		s.geo = address.NewGeography(snap.Provinces, snap.Cities, snap.Districts)
		s.indexed = snap
	}
	return s.geo, nil
}

// Provinces lists every province.
func (s *GeographyService) Provinces(ctx context.Context) ([]address.Province, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Provinces, nil
}

// Province returns one province or utils.ErrNotFound.
func (s *GeographyService) Province(ctx context.Context, id int) (*address.Province, error) {
	geo, err := s.Geography(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := geo.Province(id)
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

// Cities lists cities, optionally of one province.
func (s *GeographyService) Cities(ctx context.Context, provinceID int) ([]address.City, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if provinceID == 0 {
		return snap.Cities, nil
	}
	if err := s.requireProvince(ctx, provinceID); err != nil {
		return nil, err
	}
	out := []address.City{}
	for _, c := range snap.Cities {
		if c.ProvinceID == provinceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *GeographyService) City(ctx context.Context, id int) (*address.City, error) {
	geo, err := s.Geography(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := geo.City(id)
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

// Districts lists districts, optionally of one province.
func (s *GeographyService) Districts(ctx context.Context, provinceID int) ([]address.District, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if provinceID == 0 {
		return snap.Districts, nil
	}
	if err := s.requireProvince(ctx, provinceID); err != nil {
		return nil, err
	}
	out := []address.District{}
	for _, d := range snap.Districts {
		if d.ProvinceID == provinceID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *GeographyService) District(ctx context.Context, id int) (*address.District, error) {
	geo, err := s.Geography(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := geo.District(id)
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &d, nil
}

func (s *GeographyService) Suburbs(ctx context.Context, cityID int) ([]address.Suburb, error) {
	c, err := s.City(ctx, cityID)
	if err != nil {
		return nil, err
	}
	return c.Suburbs, nil
}

func (s *GeographyService) Settlements(ctx context.Context, districtID int) ([]address.Settlement, error) {
	d, err := s.District(ctx, districtID)
	if err != nil {
		return nil, err
	}
	return d.Settlements, nil
}

func (s *GeographyService) Communities(ctx context.Context, districtID int) ([]address.Community, error) {
	d, err := s.District(ctx, districtID)
	if err != nil {
		return nil, err
	}
	return d.Communities, nil
}

func (s *GeographyService) Villages(ctx context.Context, settlementID int) ([]address.Village, error) {
	geo, err := s.Geography(ctx)
	if err != nil {
		return nil, err
	}
	st, _, ok := geo.Settlement(settlementID)
	if !ok {
		return nil, utils.ErrNotFound
	}
	return st.Villages, nil
}

func (s *GeographyService) requireProvince(ctx context.Context, id int) error {
	_, err := s.Province(ctx, id)
	return err
}

// CheckSelection replays sel through a selector of the given flow. The
// selection is accepted only if every step is legal and nothing it asked for
// was dropped on the way (e.g. a city next to districts in an exclusive flow).
func (s *GeographyService) CheckSelection(ctx context.Context, sel address.Selection, flow address.Flow) error {
	geo, err := s.Geography(ctx)
	if err != nil {
		return err
	}

	sl := address.NewSelector(geo, flow)
	steps := []error{sl.SelectProvince(sel.ProvinceID)}
	if sel.CityID != 0 {
		steps = append(steps, sl.SelectCity(sel.CityID))
		for _, id := range sel.SuburbIDs {
			steps = append(steps, sl.SelectSuburb(id))
		}
	}
	for _, id := range sel.DistrictIDs {
		steps = append(steps, sl.SelectDistrict(id))
	}
	if sel.SettlementID != 0 {
		steps = append(steps, sl.SelectSettlement(sel.SettlementID))
	}
	if sel.CommunityID != 0 {
		steps = append(steps, sl.SelectCommunity(sel.CommunityID))
	}
	if sel.VillageID != 0 {
		steps = append(steps, sl.SelectVillage(sel.VillageID))
	}
	if err := errors.Join(steps...); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	got := sl.Selection()
	if got.CityID != sel.CityID || len(got.SuburbIDs) != len(sel.SuburbIDs) ||
		len(got.DistrictIDs) != len(sel.DistrictIDs) || got.SettlementID != sel.SettlementID ||
		got.CommunityID != sel.CommunityID || got.VillageID != sel.VillageID {
		return fmt.Errorf("%w: address mixes branches or subdivisions that cannot be combined", utils.ErrValidation)
	}
	return nil
}

// View resolves a stored address into display titles. Unknown ids render as
// empty components.
func (s *GeographyService) View(geo *address.Geography, a models.Address) address.View {
	v := address.View{Street: strings.TrimSpace(a.Street.String)}
	if p, ok := geo.Province(a.ProvinceID); ok {
		v.Province = p.Title
	}
	if a.CityID.Valid {
		if c, ok := geo.City(int(a.CityID.Int64)); ok {
			v.City = c.Title
			for _, id := range a.SuburbIDs {
				for _, sb := range c.Suburbs {
					if sb.ID == int(id) {
						v.Suburbs = append(v.Suburbs, sb.Title)
					}
				}
			}
		}
	}
	for _, id := range a.DistrictIDs {
		d, ok := geo.District(int(id))
		if !ok {
			continue
		}
		v.Districts = append(v.Districts, d.Title)
		if a.CommunityID.Valid {
			for _, c := range d.Communities {
				if c.ID == int(a.CommunityID.Int64) {
					v.Community = c.Title
				}
			}
		}
	}
	if a.SettlementID.Valid {
		if st, _, ok := geo.Settlement(int(a.SettlementID.Int64)); ok {
			v.Settlement = st.Title
			if a.VillageID.Valid {
				for _, vl := range st.Villages {
					if vl.ID == int(a.VillageID.Int64) {
						v.Village = vl.Title
					}
				}
			}
		}
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

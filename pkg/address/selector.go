package address

import (
	"errors"
	"slices"
)

var (
	ErrUnknownProvince   = errors.New("address: unknown province")
	ErrUnknownCity       = errors.New("address: city does not belong to the selected province")
	ErrUnknownDistrict   = errors.New("address: district does not belong to the selected province")
	ErrUnknownSuburb     = errors.New("address: suburb does not belong to the selected city")
	ErrUnknownSettlement = errors.New("address: settlement does not belong to a selected district")
	ErrUnknownCommunity  = errors.New("address: community does not belong to a selected district")
	ErrUnknownVillage    = errors.New("address: village does not belong to the selected settlement")

	ErrProvinceRequired   = errors.New("address: province is required")
	ErrCityRequired       = errors.New("address: city is required")
	ErrDistrictRequired   = errors.New("address: district is required")
	ErrSettlementRequired = errors.New("address: settlement is required")
)

// Flow carries the few behavioural differences between the pages that edit a
// location.
type Flow struct {
	// ExclusiveBranches clears the district branch when a city is chosen and
	// the city branch when a district is chosen.
	ExclusiveBranches bool
	// MultiDistrict toggles district membership; otherwise a district replaces
	// the previous one.
	MultiDistrict bool
	// MultiSuburb toggles suburb membership; otherwise a suburb replaces the
	// previous one.
	MultiSuburb bool
	// ExclusiveSubdivisions makes settlement and community mutually exclusive.
	ExclusiveSubdivisions bool
}

var (
	// TicketFlow is used when creating or editing a ticket.
	TicketFlow = Flow{ExclusiveBranches: true, MultiDistrict: true, MultiSuburb: true, ExclusiveSubdivisions: true}
	// ServiceEditFlow is used by the master's edit-service page.
	ServiceEditFlow = Flow{ExclusiveBranches: true, MultiDistrict: false, MultiSuburb: true, ExclusiveSubdivisions: true}
	// ProfileFlow is used by the client profile city page where both branches coexist.
	ProfileFlow = Flow{ExclusiveBranches: false, MultiDistrict: true, MultiSuburb: true, ExclusiveSubdivisions: true}
)

// Selection is the ephemeral state of an address being edited. Zero ids mean
// "not selected".
type Selection struct {
	ProvinceID   int    `json:"provinceId"`
	CityID       int    `json:"cityId,omitempty"`
	SuburbIDs    []int  `json:"suburbIds,omitempty"`
	DistrictIDs  []int  `json:"districtIds,omitempty"`
	SettlementID int    `json:"settlementId,omitempty"`
	CommunityID  int    `json:"communityId,omitempty"`
	VillageID    int    `json:"villageId,omitempty"`
	Street       string `json:"street,omitempty"`
}

// Selector drives the selection of a location over an in-memory Geography.
// Rejected operations return an error and leave the selection untouched.
type Selector struct {
	geo  *Geography
	flow Flow
	sel  Selection
}

// NewSelector creates a selector for the given flow.
func NewSelector(geo *Geography, flow Flow) *Selector {
	return &Selector{geo: geo, flow: flow}
}

// Flow returns the flow options of the selector.
func (s *Selector) Flow() Flow {
	return s.flow
}

// Selection returns a copy of the current state.
func (s *Selector) Selection() Selection {
	out := s.sel
	out.SuburbIDs = slices.Clone(s.sel.SuburbIDs)
	out.DistrictIDs = slices.Clone(s.sel.DistrictIDs)
	return out
}

// Reset discards the whole selection.
func (s *Selector) Reset() {
	s.sel = Selection{}
}

// SetStreet stores the street-level detail of the address.
func (s *Selector) SetStreet(street string) {
	s.sel.Street = street
}

// SelectProvince sets the province and clears every descendant selection.
func (s *Selector) SelectProvince(id int) error {
	if _, ok := s.geo.Province(id); !ok {
		return ErrUnknownProvince
	}
	s.sel = Selection{ProvinceID: id, Street: s.sel.Street}
	return nil
}

// SelectCity sets the city and clears its suburbs. In exclusive flows the
// whole district branch is cleared as well.
func (s *Selector) SelectCity(id int) error {
	if s.sel.ProvinceID == 0 {
		return ErrProvinceRequired
	}
	city, ok := s.geo.City(id)
	if !ok || city.ProvinceID != s.sel.ProvinceID {
		return ErrUnknownCity
	}

	s.sel.CityID = id
	s.sel.SuburbIDs = nil
	if s.flow.ExclusiveBranches {
		s.clearDistrictBranch()
	}
	return nil
}

// SelectDistrict toggles (multi) or replaces (single) the district. In
// exclusive flows the city branch is cleared. Settlement, community and
// village selections that no longer belong to a selected district are dropped.
func (s *Selector) SelectDistrict(id int) error {
	if s.sel.ProvinceID == 0 {
		return ErrProvinceRequired
	}
	district, ok := s.geo.District(id)
	if !ok || district.ProvinceID != s.sel.ProvinceID {
		return ErrUnknownDistrict
	}

	if s.flow.MultiDistrict {
		s.sel.DistrictIDs = toggle(s.sel.DistrictIDs, id)
	} else {
		s.sel.DistrictIDs = []int{id}
	}
	if s.flow.ExclusiveBranches {
		s.sel.CityID = 0
		s.sel.SuburbIDs = nil
	}
	s.pruneSubdivisions()
	return nil
}

// SelectSuburb toggles (multi) or replaces (single) a suburb of the selected city.
func (s *Selector) SelectSuburb(id int) error {
	if s.sel.CityID == 0 {
		return ErrCityRequired
	}
	city, _ := s.geo.City(s.sel.CityID)
	if !city.hasSuburb(id) {
		return ErrUnknownSuburb
	}

	if s.flow.MultiSuburb {
		s.sel.SuburbIDs = toggle(s.sel.SuburbIDs, id)
	} else {
		s.sel.SuburbIDs = []int{id}
	}
	return nil
}

// SelectSettlement sets the settlement; a village outside it is cleared.
func (s *Selector) SelectSettlement(id int) error {
	if len(s.sel.DistrictIDs) == 0 {
		return ErrDistrictRequired
	}
	settlement, districtID, ok := s.geo.Settlement(id)
	if !ok || !slices.Contains(s.sel.DistrictIDs, districtID) {
		return ErrUnknownSettlement
	}

	s.sel.SettlementID = id
	if s.sel.VillageID != 0 && !settlement.hasVillage(s.sel.VillageID) {
		s.sel.VillageID = 0
	}
	if s.flow.ExclusiveSubdivisions {
		s.sel.CommunityID = 0
	}
	return nil
}

// SelectCommunity sets the community of a selected district.
func (s *Selector) SelectCommunity(id int) error {
	if len(s.sel.DistrictIDs) == 0 {
		return ErrDistrictRequired
	}
	districtID, ok := s.geo.CommunityDistrict(id)
	if !ok || !slices.Contains(s.sel.DistrictIDs, districtID) {
		return ErrUnknownCommunity
	}

	s.sel.CommunityID = id
	if s.flow.ExclusiveSubdivisions {
		s.sel.SettlementID = 0
		s.sel.VillageID = 0
	}
	return nil
}

// SelectVillage sets the village of the selected settlement.
func (s *Selector) SelectVillage(id int) error {
	if s.sel.SettlementID == 0 {
		return ErrSettlementRequired
	}
	settlement, _, _ := s.geo.Settlement(s.sel.SettlementID)
	if !settlement.hasVillage(id) {
		return ErrUnknownVillage
	}
	s.sel.VillageID = id
	return nil
}

func (s *Selector) clearDistrictBranch() {
	s.sel.DistrictIDs = nil
	s.sel.SettlementID = 0
	s.sel.CommunityID = 0
	s.sel.VillageID = 0
}

func (s *Selector) pruneSubdivisions() {
	if s.sel.SettlementID != 0 {
		_, districtID, _ := s.geo.Settlement(s.sel.SettlementID)
		if !slices.Contains(s.sel.DistrictIDs, districtID) {
			s.sel.SettlementID = 0
			s.sel.VillageID = 0
		}
	}
	if s.sel.CommunityID != 0 {
		districtID, _ := s.geo.CommunityDistrict(s.sel.CommunityID)
		if !slices.Contains(s.sel.DistrictIDs, districtID) {
			s.sel.CommunityID = 0
		}
	}
}

func toggle(ids []int, id int) []int {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

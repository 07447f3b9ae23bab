package address

import "slices"

// Payload is the wire form of an address: only the populated branch is
// present and every value is an entity reference.
type Payload struct {
	Province   string   `json:"province"`
	City       string   `json:"city,omitempty"`
	Suburbs    []string `json:"suburbs,omitempty"`
	Districts  []string `json:"districts,omitempty"`
	Settlement string   `json:"settlement,omitempty"`
	Community  string   `json:"community,omitempty"`
	Village    string   `json:"village,omitempty"`
	Street     string   `json:"street,omitempty"`
}

// BuildPayload serialises the current selection. It fails with
// ErrProvinceRequired when no province is selected.
func (s *Selector) BuildPayload() (*Payload, error) {
	return s.Selection().Payload()
}

// Payload serialises a selection.
func (sel Selection) Payload() (*Payload, error) {
	if sel.ProvinceID == 0 {
		return nil, ErrProvinceRequired
	}

	p := &Payload{
		Province: IRI(CollectionProvinces, sel.ProvinceID),
		Street:   sel.Street,
	}
	if sel.CityID != 0 {
		p.City = IRI(CollectionCities, sel.CityID)
		p.Suburbs = iris(CollectionSuburbs, sel.SuburbIDs)
	}
	if len(sel.DistrictIDs) > 0 {
		p.Districts = iris(CollectionDistricts, sel.DistrictIDs)
		if sel.SettlementID != 0 {
			p.Settlement = IRI(CollectionSettlements, sel.SettlementID)
			if sel.VillageID != 0 {
				p.Village = IRI(CollectionVillages, sel.VillageID)
			}
		}
		if sel.CommunityID != 0 {
			p.Community = IRI(CollectionCommunities, sel.CommunityID)
		}
	}
	return p, nil
}

// Selection parses a payload back into ids. Structural rules (suburbs need a
// city, village needs a settlement) are checked; membership is not, as the
// caller owns the reference data.
func (p *Payload) Selection() (Selection, error) {
	var (
		sel Selection
		err error
	)
	if p.Province == "" {
		return sel, ErrProvinceRequired
	}
	if sel.ProvinceID, err = ParseIRI(CollectionProvinces, p.Province); err != nil {
		return sel, err
	}
	if p.City != "" {
		if sel.CityID, err = ParseIRI(CollectionCities, p.City); err != nil {
			return sel, err
		}
	}
	if len(p.Suburbs) > 0 && sel.CityID == 0 {
		return sel, ErrCityRequired
	}
	if sel.SuburbIDs, err = parseIRIs(CollectionSuburbs, p.Suburbs); err != nil {
		return sel, err
	}
	if sel.DistrictIDs, err = parseIRIs(CollectionDistricts, p.Districts); err != nil {
		return sel, err
	}
	if (p.Settlement != "" || p.Community != "") && len(sel.DistrictIDs) == 0 {
		return sel, ErrDistrictRequired
	}
	if p.Settlement != "" {
		if sel.SettlementID, err = ParseIRI(CollectionSettlements, p.Settlement); err != nil {
			return sel, err
		}
	}
	if p.Community != "" {
		if sel.CommunityID, err = ParseIRI(CollectionCommunities, p.Community); err != nil {
			return sel, err
		}
	}
	if p.Village != "" {
		if sel.SettlementID == 0 {
			return sel, ErrSettlementRequired
		}
		if sel.VillageID, err = ParseIRI(CollectionVillages, p.Village); err != nil {
			return sel, err
		}
	}
	sel.Street = p.Street
	return sel, nil
}

func iris(collection string, ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, IRI(collection, id))
	}
	return out
}

func parseIRIs(collection string, refs []string) ([]int, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(refs))
	for _, ref := range refs {
		id, err := ParseIRI(collection, ref)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

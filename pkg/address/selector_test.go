package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeography() *Geography {
	return NewGeography(
		[]Province{{ID: 1, Title: "Chuy"}, {ID: 2, Title: "Osh"}},
		[]City{
			{ID: 10, Title: "Bishkek", ProvinceID: 1, Suburbs: []Suburb{{ID: 100, Title: "Ak-Orgo"}, {ID: 101, Title: "Kok-Jar"}}},
			{ID: 11, Title: "Tokmok", ProvinceID: 1, Suburbs: []Suburb{{ID: 110, Title: "Center"}}},
			{ID: 20, Title: "Osh", ProvinceID: 2},
		},
		[]District{
			{
				ID: 30, Title: "Alamudun", ProvinceID: 1,
				Settlements: []Settlement{
					{ID: 300, Title: "Lebedinovka", Villages: []Village{{ID: 3000, Title: "Vorontsovka"}, {ID: 3001, Title: "Kok-Jar"}}},
					{ID: 301, Title: "Baytik", Villages: []Village{{ID: 3010, Title: "Chon-Tash"}}},
				},
				Communities: []Community{{ID: 310, Title: "Alamudun a/a"}},
			},
			{
				ID: 31, Title: "Sokuluk", ProvinceID: 1,
				Settlements: []Settlement{{ID: 302, Title: "Shopokov", Villages: []Village{{ID: 3020, Title: "Kun-Tuu"}}}},
				Communities: []Community{{ID: 311, Title: "Sokuluk a/a"}},
			},
			{ID: 40, Title: "Kara-Suu", ProvinceID: 2},
		},
	)
}

func fullySelected(t *testing.T, flow Flow) *Selector {
	t.Helper()
	s := NewSelector(testGeography(), flow)
	require.NoError(t, s.SelectProvince(1))
	require.NoError(t, s.SelectDistrict(30))
	require.NoError(t, s.SelectSettlement(300))
	require.NoError(t, s.SelectVillage(3000))
	return s
}

func TestSelectProvinceClearsDescendants(t *testing.T) {
	for _, flow := range []Flow{TicketFlow, ServiceEditFlow, ProfileFlow} {
		for _, province := range []int{1, 2} {
			s := NewSelector(testGeography(), flow)
			require.NoError(t, s.SelectProvince(1))
			require.NoError(t, s.SelectCity(10))
			require.NoError(t, s.SelectSuburb(100))
			require.NoError(t, s.SelectDistrict(31))
			require.NoError(t, s.SelectCommunity(311))

			require.NoError(t, s.SelectProvince(province))
			sel := s.Selection()
			assert.Equal(t, province, sel.ProvinceID)
			assert.Zero(t, sel.CityID)
			assert.Empty(t, sel.SuburbIDs)
			assert.Empty(t, sel.DistrictIDs)
			assert.Zero(t, sel.SettlementID)
			assert.Zero(t, sel.CommunityID)
			assert.Zero(t, sel.VillageID)
		}
	}
}

func TestSelectUnknownProvinceIsNoop(t *testing.T) {
	s := fullySelected(t, TicketFlow)
	before := s.Selection()

	assert.ErrorIs(t, s.SelectProvince(99), ErrUnknownProvince)
	assert.Equal(t, before, s.Selection())
}

func TestSelectCityClearsDistrictBranchInExclusiveFlows(t *testing.T) {
	for _, flow := range []Flow{TicketFlow, ServiceEditFlow} {
		s := fullySelected(t, flow)
		require.NoError(t, s.SelectCommunity(310))

		require.NoError(t, s.SelectCity(10))
		sel := s.Selection()
		assert.Equal(t, 10, sel.CityID)
		assert.Empty(t, sel.DistrictIDs)
		assert.Zero(t, sel.SettlementID)
		assert.Zero(t, sel.CommunityID)
		assert.Zero(t, sel.VillageID)
	}
}

func TestProfileFlowKeepsBothBranches(t *testing.T) {
	s := fullySelected(t, ProfileFlow)
	require.NoError(t, s.SelectCity(10))
	require.NoError(t, s.SelectSuburb(101))

	sel := s.Selection()
	assert.Equal(t, 10, sel.CityID)
	assert.Equal(t, []int{30}, sel.DistrictIDs)
	assert.Equal(t, 300, sel.SettlementID)
	assert.Equal(t, 3000, sel.VillageID)

	p, err := s.BuildPayload()
	require.NoError(t, err)
	assert.Equal(t, "/api/cities/10", p.City)
	assert.Equal(t, []string{"/api/districts/30"}, p.Districts)
}

func TestSelectCityRequiresProvince(t *testing.T) {
	s := NewSelector(testGeography(), TicketFlow)
	assert.ErrorIs(t, s.SelectCity(10), ErrProvinceRequired)

	require.NoError(t, s.SelectProvince(2))
	assert.ErrorIs(t, s.SelectCity(10), ErrUnknownCity)
	assert.Zero(t, s.Selection().CityID)
}

func TestSelectCityClearsSuburbs(t *testing.T) {
	s := NewSelector(testGeography(), TicketFlow)
	require.NoError(t, s.SelectProvince(1))
	require.NoError(t, s.SelectCity(10))
	require.NoError(t, s.SelectSuburb(100))
	require.NoError(t, s.SelectCity(11))
	assert.Empty(t, s.Selection().SuburbIDs)
}

func TestSelectDistrictToggles(t *testing.T) {
	s := NewSelector(testGeography(), TicketFlow)
	require.NoError(t, s.SelectProvince(1))
	require.NoError(t, s.SelectCity(10))

	require.NoError(t, s.SelectDistrict(30))
	require.NoError(t, s.SelectDistrict(31))
	sel := s.Selection()
	assert.Equal(t, []int{30, 31}, sel.DistrictIDs)
	assert.Zero(t, sel.CityID, "exclusive flow drops the city branch")

	require.NoError(t, s.SelectDistrict(30))
	assert.Equal(t, []int{31}, s.Selection().DistrictIDs)
}

func TestSelectDistrictReplacesInServiceEditFlow(t *testing.T) {
	s := NewSelector(testGeography(), ServiceEditFlow)
	require.NoError(t, s.SelectProvince(1))
	require.NoError(t, s.SelectDistrict(30))
	require.NoError(t, s.SelectSettlement(301))
	require.NoError(t, s.SelectDistrict(31))

	sel := s.Selection()
	assert.Equal(t, []int{31}, sel.DistrictIDs)
	assert.Zero(t, sel.SettlementID, "settlement of the previous district is dropped")
}

func TestSelectDistrictKeepsSubdivisionsOfRemainingDistrict(t *testing.T) {
	s := fullySelected(t, TicketFlow)
	require.NoError(t, s.SelectDistrict(31))

	sel := s.Selection()
	assert.Equal(t, 300, sel.SettlementID)
	assert.Equal(t, 3000, sel.VillageID)

	require.NoError(t, s.SelectDistrict(30))
	sel = s.Selection()
	assert.Zero(t, sel.SettlementID)
	assert.Zero(t, sel.VillageID)
}

func TestSelectDistrictOfOtherProvince(t *testing.T) {
	s := NewSelector(testGeography(), TicketFlow)
	require.NoError(t, s.SelectProvince(1))
	assert.ErrorIs(t, s.SelectDistrict(40), ErrUnknownDistrict)
}

func TestSelectSettlementClearsForeignVillage(t *testing.T) {
	s := fullySelected(t, TicketFlow)

	require.NoError(t, s.SelectSettlement(301))
	sel := s.Selection()
	assert.Equal(t, 301, sel.SettlementID)
	assert.Zero(t, sel.VillageID)

	require.NoError(t, s.SelectVillage(3010))
	require.NoError(t, s.SelectSettlement(301))
	assert.Equal(t, 3010, s.Selection().VillageID, "village of the same settlement survives")
}

func TestSettlementAndCommunityAreExclusive(t *testing.T) {
	s := fullySelected(t, TicketFlow)

	require.NoError(t, s.SelectCommunity(310))
	sel := s.Selection()
	assert.Equal(t, 310, sel.CommunityID)
	assert.Zero(t, sel.SettlementID)
	assert.Zero(t, sel.VillageID)

	require.NoError(t, s.SelectSettlement(301))
	assert.Zero(t, s.Selection().CommunityID)
}

func TestSettlementAndCommunityCoexistWhenAllowed(t *testing.T) {
	flow := TicketFlow
	flow.ExclusiveSubdivisions = false
	s := fullySelected(t, flow)

	require.NoError(t, s.SelectCommunity(310))
	sel := s.Selection()
	assert.Equal(t, 310, sel.CommunityID)
	assert.Equal(t, 300, sel.SettlementID)
}

func TestStructuralRequirements(t *testing.T) {
	s := NewSelector(testGeography(), TicketFlow)
	require.NoError(t, s.SelectProvince(1))

	assert.ErrorIs(t, s.SelectSuburb(100), ErrCityRequired)
	assert.ErrorIs(t, s.SelectSettlement(300), ErrDistrictRequired)
	assert.ErrorIs(t, s.SelectCommunity(310), ErrDistrictRequired)
	assert.ErrorIs(t, s.SelectVillage(3000), ErrSettlementRequired)

	require.NoError(t, s.SelectCity(10))
	assert.ErrorIs(t, s.SelectSuburb(110), ErrUnknownSuburb)

	require.NoError(t, s.SelectDistrict(30))
	assert.ErrorIs(t, s.SelectSettlement(302), ErrUnknownSettlement)
	assert.ErrorIs(t, s.SelectCommunity(311), ErrUnknownCommunity)
	require.NoError(t, s.SelectSettlement(300))
	assert.ErrorIs(t, s.SelectVillage(3010), ErrUnknownVillage)
}

func TestSelectSuburbSingleMode(t *testing.T) {
	flow := TicketFlow
	flow.MultiSuburb = false
	s := NewSelector(testGeography(), flow)
	require.NoError(t, s.SelectProvince(1))
	require.NoError(t, s.SelectCity(10))
	require.NoError(t, s.SelectSuburb(100))
	require.NoError(t, s.SelectSuburb(101))
	assert.Equal(t, []int{101}, s.Selection().SuburbIDs)
}

func TestSelectionIsACopy(t *testing.T) {
	s := NewSelector(testGeography(), TicketFlow)
	require.NoError(t, s.SelectProvince(1))
	require.NoError(t, s.SelectDistrict(30))

	sel := s.Selection()
	sel.DistrictIDs[0] = 31
	assert.Equal(t, []int{30}, s.Selection().DistrictIDs)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
)

// GeographyHandler serves the read-only address hierarchy.
type GeographyHandler struct {
	geo *service.GeographyService
}

// NewGeographyHandler creates a new GeographyHandler
func NewGeographyHandler(geo *service.GeographyService) *GeographyHandler {
	return &GeographyHandler{geo: geo}
}

// GetProvinces returns all provinces
// GET /api/provinces
func (h *GeographyHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.geo.Provinces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, provinces)
}

// GetProvince returns one province
// GET /api/provinces/:id
func (h *GeographyHandler) GetProvince(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.geo.Province(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, p)
}

// GetCities returns cities with their suburbs
// GET /api/cities[?province=ID]
func (h *GeographyHandler) GetCities(c *gin.Context) {
	provinceID, ok := queryID(c, "province")
	if !ok {
		return
	}
	cities, err := h.geo.Cities(c.Request.Context(), provinceID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, cities)
}

// GET /api/cities/:id
func (h *GeographyHandler) GetCity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	city, err := h.geo.City(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, city)
}

// GetDistricts returns districts with settlements and communities
// GET /api/districts[?province=ID]
func (h *GeographyHandler) GetDistricts(c *gin.Context) {
	provinceID, ok := queryID(c, "province")
	if !ok {
		return
	}
	districts, err := h.geo.Districts(c.Request.Context(), provinceID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, districts)
}

// GET /api/districts/:id
func (h *GeographyHandler) GetDistrict(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.geo.District(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Item(c, 200, d)
}

// GET /api/suburbs?city=ID
func (h *GeographyHandler) GetSuburbs(c *gin.Context) {
	cityID, ok := requiredQueryID(c, "city")
	if !ok {
		return
	}
	suburbs, err := h.geo.Suburbs(c.Request.Context(), cityID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, suburbs)
}

// GET /api/settlements?district=ID
func (h *GeographyHandler) GetSettlements(c *gin.Context) {
	districtID, ok := requiredQueryID(c, "district")
	if !ok {
		return
	}
	settlements, err := h.geo.Settlements(c.Request.Context(), districtID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, settlements)
}

// GET /api/communities?district=ID
func (h *GeographyHandler) GetCommunities(c *gin.Context) {
	districtID, ok := requiredQueryID(c, "district")
	if !ok {
		return
	}
	communities, err := h.geo.Communities(c.Request.Context(), districtID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, communities)
}

// GET /api/villages?settlement=ID
func (h *GeographyHandler) GetVillages(c *gin.Context) {
	settlementID, ok := requiredQueryID(c, "settlement")
	if !ok {
		return
	}
	villages, err := h.geo.Villages(c.Request.Context(), settlementID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, villages)
}

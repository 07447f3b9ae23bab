package marketplace

import (
	"context"
	"net/url"
	"strconv"

	"github.com/GTDGit/gtd_market/pkg/address"
)

// Provinces lists all provinces.
func (c *Client) Provinces(ctx context.Context) ([]address.Province, error) {
	return getList[address.Province](ctx, c, "/api/provinces", nil)
}

// Cities lists the cities of a province with their suburbs. provinceID 0
// lists every city.
func (c *Client) Cities(ctx context.Context, provinceID int) ([]address.City, error) {
	return getList[address.City](ctx, c, "/api/cities", parentQuery("province", provinceID))
}

// Districts lists the districts of a province with their settlements,
// villages and communities. provinceID 0 lists every district.
func (c *Client) Districts(ctx context.Context, provinceID int) ([]address.District, error) {
	return getList[address.District](ctx, c, "/api/districts", parentQuery("province", provinceID))
}

// LoadGeography fetches the full reference tree and indexes it for the
// address selector.
func (c *Client) LoadGeography(ctx context.Context) (*address.Geography, error) {
	provinces, err := c.Provinces(ctx)
	if err != nil {
		return nil, err
	}
	cities, err := c.Cities(ctx, 0)
	if err != nil {
		return nil, err
	}
	districts, err := c.Districts(ctx, 0)
	if err != nil {
		return nil, err
	}
	return address.NewGeography(provinces, cities, districts), nil
}

func parentQuery(key string, id int) url.Values {
	if id <= 0 {
		return nil
	}
	return url.Values{key: []string{strconv.Itoa(id)}}
}

package remote

import (
	"context"
	"net/url"
	"strings"

	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

// Catalog holds the static content loaded once at startup. It is read-only
// after LoadCatalog returns.
type Catalog struct {
	LocalItems  []models.Item
	TravelItems map[string][]models.Item
	Events      []models.Event
}

// Travel returns the travel items for a city, matched ignoring case
func (c *Catalog) Travel(city string) []models.Item {
	for name, items := range c.TravelItems {
		if strings.EqualFold(name, city) {
			return items
		}
	}
	return nil
}

// Cities lists the cities with travel items
func (c *Catalog) Cities() []string {
	out := make([]string, 0, len(c.TravelItems))
	for name := range c.TravelItems {
		out = append(out, name)
	}
	return out
}

// LoadCatalog fetches every static document. A document that cannot be
// fetched or parsed leaves its collection empty; LoadCatalog itself never fails.
func (c *Client) LoadCatalog(ctx context.Context) *Catalog {
	cat := &Catalog{
		LocalItems:  []models.Item{},
		TravelItems: map[string][]models.Item{},
		Events:      []models.Event{},
	}

	if err := c.getJSON(ctx, c.paths.LocalItems, nil, &cat.LocalItems); err != nil {
		c.logger.Warn("Local items unavailable", zap.Error(err))
		cat.LocalItems = []models.Item{}
	}

	var travel []models.Item
	if err := c.getJSON(ctx, c.paths.TravelItems, nil, &travel); err != nil {
		c.logger.Warn("Travel items unavailable", zap.Error(err))
	}
	for _, item := range travel {
		city := strings.TrimSpace(item.City)
		if city == "" {
			continue
		}
		cat.TravelItems[city] = append(cat.TravelItems[city], item)
	}

	if err := c.getJSON(ctx, c.paths.Events, nil, &cat.Events); err != nil {
		c.logger.Warn("Events unavailable", zap.Error(err))
		cat.Events = []models.Event{}
	}

	c.logger.Info("Catalog loaded",
		zap.Int("local_items", len(cat.LocalItems)),
		zap.Int("travel_cities", len(cat.TravelItems)),
		zap.Int("events", len(cat.Events)))

	return cat
}

// SearchVenues asks the API for venues matching query
func (c *Client) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	var venues []models.Venue
	if err := c.getJSON(ctx, c.paths.VenueSearch, url.Values{"q": {query}}, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}

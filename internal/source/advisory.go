package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// AdvisoryFeed implements ForecastProvider from a weather-bulletin RSS
// feed (district advisories published by the met office). Bulletin
// titles carry the location and condition; the adapter maps condition
// keywords to forecast estimates.
type AdvisoryFeed struct {
	feedURL string
	cache   *Cache
	parser  *gofeed.Parser
}

// NewAdvisoryFeed creates a forecast provider backed by the given RSS feed.
func NewAdvisoryFeed(feedURL string) *AdvisoryFeed {
	return &AdvisoryFeed{
		feedURL: feedURL,
		cache:   NewCache(15 * time.Minute),
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (a *AdvisoryFeed) Name() string { return "Weather Advisory Feed" }

// SetCacheTTL replaces the bulletin cache with one using the given TTL.
func (a *AdvisoryFeed) SetCacheTTL(ttl time.Duration) {
	a.cache = NewCache(ttl)
}

// conditionEstimates maps advisory keywords to forecast point values.
// Ordered most-severe first; the first keyword found in a bulletin wins.
var conditionEstimates = []struct {
	keyword string
	point   models.ForecastPoint
}{
	{"cyclone", models.ForecastPoint{TemperatureC: 25, HumidityPct: 95, PrecipitationMM: 60, WindSpeedKPH: 90, Condition: "cyclone"}},
	{"very heavy rain", models.ForecastPoint{TemperatureC: 25, HumidityPct: 95, PrecipitationMM: 45, WindSpeedKPH: 40, Condition: "very heavy rain"}},
	{"heavy rain", models.ForecastPoint{TemperatureC: 26, HumidityPct: 92, PrecipitationMM: 30, WindSpeedKPH: 30, Condition: "heavy rain"}},
	{"thunderstorm", models.ForecastPoint{TemperatureC: 27, HumidityPct: 88, PrecipitationMM: 18, WindSpeedKPH: 45, Condition: "thunderstorm"}},
	{"rain", models.ForecastPoint{TemperatureC: 27, HumidityPct: 85, PrecipitationMM: 8, WindSpeedKPH: 20, Condition: "rain"}},
	{"heat wave", models.ForecastPoint{TemperatureC: 43, HumidityPct: 25, PrecipitationMM: 0, WindSpeedKPH: 12, Condition: "heat wave"}},
	{"fog", models.ForecastPoint{TemperatureC: 14, HumidityPct: 96, PrecipitationMM: 0, WindSpeedKPH: 5, Condition: "fog"}},
	{"clear", models.ForecastPoint{TemperatureC: 29, HumidityPct: 60, PrecipitationMM: 0, WindSpeedKPH: 10, Condition: "clear"}},
}

// Forecast parses the feed and builds a forecast from the bulletins
// matching the location. No matching bulletin means the feed has no
// outlook for that district, which is reported as unavailable rather
// than guessed at.
func (a *AdvisoryFeed) Forecast(ctx context.Context, location string, leadHours int) (*models.Forecast, error) {
	feed, err := a.fetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	loc := strings.ToLower(strings.TrimSpace(location))
	var points []models.ForecastPoint
	for _, item := range feed.Items {
		text := strings.ToLower(item.Title + " " + item.Description)
		if !strings.Contains(text, loc) {
			continue
		}
		if p, ok := matchCondition(text); ok {
			points = append(points, p)
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no advisory for %s", ErrUnavailable, location)
	}

	return &models.Forecast{
		Location:  location,
		LeadHours: leadHours,
		Points:    points,
		Source:    models.ForecastLive,
	}, nil
}

// HealthCheck fetches the feed head.
func (a *AdvisoryFeed) HealthCheck(ctx context.Context) error {
	_, err := a.fetchFeed(ctx)
	return err
}

func (a *AdvisoryFeed) fetchFeed(ctx context.Context) (*gofeed.Feed, error) {
	if v, ok := a.cache.Get("feed"); ok {
		return v.(*gofeed.Feed), nil
	}
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return nil, err
	}
	a.cache.Set("feed", feed)
	return feed, nil
}

func matchCondition(text string) (models.ForecastPoint, bool) {
	for _, ce := range conditionEstimates {
		if strings.Contains(text, ce.keyword) {
			return ce.point, true
		}
	}
	return models.ForecastPoint{}, false
}

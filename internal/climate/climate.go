// Package climate supplies recharge and growth multipliers for scenarios.
// By default the multipliers follow a simple seasonal cycle; when an
// OpenWeatherMap API key is configured, current real-world conditions
// override the seasonal default (a rainy day outside means a wetter
// demonstration run).
package climate

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Season indexes the four seasons.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// SeasonName returns a human-readable season name.
func SeasonName(s Season) string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	case Winter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// RechargeModifier scales a scenario's ambient recharge by season: wet
// springs, dry summers.
func RechargeModifier(s Season) float64 {
	switch s {
	case Spring:
		return 1.25
	case Summer:
		return 0.70
	case Autumn:
		return 1.00
	case Winter:
		return 0.90
	default:
		return 1.00
	}
}

// GrowthModifier scales vegetation regrowth speed by season.
func GrowthModifier(s Season) float64 {
	switch s {
	case Spring:
		return 1.20
	case Summer:
		return 1.00
	case Autumn:
		return 0.80
	case Winter:
		return 0.50
	default:
		return 1.00
	}
}

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	apiKey   string
	location string
	client   *http.Client

	mu          sync.Mutex
	cached      *Conditions
	cachedAt    time.Time
	cacheTTL    time.Duration
	lastFailAt  time.Time
	failBackoff time.Duration
}

// NewClient creates a weather API client. Returns nil if apiKey is empty;
// a nil client is safe to use and always falls back to seasonal defaults.
func NewClient(apiKey, location string) *Client {
	if apiKey == "" {
		return nil
	}
	if location == "" {
		location = "Utrecht,NL"
	}
	return &Client{
		apiKey:   apiKey,
		location: location,
		client:   &http.Client{Timeout: 10 * time.Second},
		cacheTTL: 5 * time.Minute,
	}
}

// Conditions holds parsed weather data from the API.
type Conditions struct {
	Temp        float64 `json:"temp"` // Celsius
	Description string  `json:"description"`
	IsRain      bool    `json:"is_rain"`
	IsStorm     bool    `json:"is_storm"`
}

// Fetch retrieves current conditions, using the cache if fresh and backing
// off after repeated failures (up to 10 minutes).
func (c *Client) Fetch() (*Conditions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.cachedAt) < c.cacheTTL {
		return c.cached, nil
	}

	if c.failBackoff > 0 && time.Since(c.lastFailAt) < c.failBackoff {
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, fmt.Errorf("weather API backoff (%s remaining)", c.failBackoff-time.Since(c.lastFailAt))
	}

	conditions, err := c.fetchFromAPI()
	if err != nil {
		c.lastFailAt = time.Now()
		if c.failBackoff == 0 {
			c.failBackoff = 1 * time.Minute
		} else if c.failBackoff < 10*time.Minute {
			c.failBackoff *= 2
		}
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = conditions
	c.cachedAt = time.Now()
	c.failBackoff = 0
	return conditions, nil
}

func (c *Client) fetchFromAPI() (*Conditions, error) {
	apiURL := fmt.Sprintf("https://api.openweathermap.org/data/2.5/weather?q=%s&appid=%s&units=metric",
		url.QueryEscape(c.location), c.apiKey)

	resp, err := c.client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("weather API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error %d: %s", resp.StatusCode, string(body))
	}

	var owm struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.Unmarshal(body, &owm); err != nil {
		return nil, fmt.Errorf("parse weather: %w", err)
	}

	conditions := &Conditions{Temp: owm.Main.Temp}
	if len(owm.Weather) > 0 {
		conditions.Description = owm.Weather[0].Description
		main := strings.ToLower(owm.Weather[0].Main)
		conditions.IsRain = main == "rain" || main == "drizzle"
		conditions.IsStorm = main == "thunderstorm" || owm.Wind.Speed > 15
	}

	slog.Debug("weather fetched", "temp", conditions.Temp, "desc", conditions.Description)
	return conditions, nil
}

// RechargeScale maps conditions onto a recharge multiplier. A nil client or
// a failed fetch falls back to the seasonal modifier.
func (c *Client) RechargeScale(season Season) float64 {
	if c == nil {
		return RechargeModifier(season)
	}
	conditions, err := c.Fetch()
	if err != nil {
		return RechargeModifier(season)
	}
	return ScaleFromConditions(conditions, season)
}

// ScaleFromConditions converts conditions to a recharge multiplier.
func ScaleFromConditions(conditions *Conditions, season Season) float64 {
	if conditions == nil {
		return RechargeModifier(season)
	}
	switch {
	case conditions.IsStorm:
		return 1.8
	case conditions.IsRain:
		return 1.4
	case conditions.Temp > 30:
		return 0.6 // hot and dry: evaporation wins
	default:
		return RechargeModifier(season)
	}
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"wewearapi/languageutil"
	"wewearapi/logger"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"golang.org/x/sync/errgroup"
)

const openWeatherBaseURL = "http://api.openweathermap.org/data/2.5"

type HourlyForecast struct {
	Time       int64   `json:"time"`
	Temp       int     `json:"temp"`
	Condition  string  `json:"condition"`
	RainChance float64 `json:"rain_chance"`
}

type Weather struct {
	Temperature    int              `json:"temperature"`
	FeelsLike      int              `json:"feels_like"`
	Condition      string           `json:"condition"`
	MainCondition  string           `json:"main_condition"`
	Humidity       int              `json:"humidity"`
	WindSpeed      float64          `json:"wind_speed"` // km/h
	Pressure       int              `json:"pressure"`
	Visibility     float64          `json:"visibility"` // km
	Location       string           `json:"location"`
	Icon           string           `json:"icon"`
	Mock           bool             `json:"mock"`
	HourlyForecast []HourlyForecast `json:"hourly_forecast"`
}

// Description is the compact string handed to the outfit engine,
// e.g. "12°C (Light Rain), feels like 9°C, humid, breezy".
func (w Weather) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d°C (%s)", w.Temperature, w.Condition)
	if diff := w.Temperature - w.FeelsLike; diff > 2 || diff < -2 {
		fmt.Fprintf(&b, ", feels like %d°C", w.FeelsLike)
	}
	switch {
	case w.Humidity > 70:
		b.WriteString(", humid")
	case w.Humidity < 30:
		b.WriteString(", dry")
	}
	switch {
	case w.WindSpeed > 20:
		b.WriteString(", windy")
	case w.WindSpeed > 10:
		b.WriteString(", breezy")
	}
	return b.String()
}

func (w Weather) Advice() string {
	var advice []string
	switch t := w.Temperature; {
	case t < 0:
		advice = append(advice, "Very cold - layer heavily, wear winter coat")
	case t < 10:
		advice = append(advice, "Cold - sweaters, jackets, long pants recommended")
	case t < 20:
		advice = append(advice, "Cool - light jacket or cardigan recommended")
	case t < 25:
		advice = append(advice, "Mild - comfortable for most clothing")
	case t < 30:
		advice = append(advice, "Warm - light, breathable fabrics recommended")
	default:
		advice = append(advice, "Hot - minimal, light-colored, breathable clothing")
	}
	condition := strings.ToLower(w.MainCondition)
	switch {
	case strings.Contains(condition, "rain") || strings.Contains(condition, "drizzle"):
		advice = append(advice, "Bring umbrella or waterproof jacket")
	case strings.Contains(condition, "snow"):
		advice = append(advice, "Wear waterproof boots and warm layers")
	case strings.Contains(condition, "wind") || w.WindSpeed > 20:
		advice = append(advice, "Avoid loose clothing, secure accessories")
	}
	if w.Humidity > 80 {
		advice = append(advice, "High humidity - choose breathable fabrics")
	}
	return strings.Join(advice, ". ")
}

type WeatherProvider interface {
	Current(ctx context.Context, location string) (Weather, error)
}

type OpenWeatherClient struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewOpenWeatherClient(apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		APIKey:  apiKey,
		BaseURL: openWeatherBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type owmCurrent struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility *float64 `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("appid", c.APIKey)
	params.Set("units", "metric")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather request %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *OpenWeatherClient) Current(ctx context.Context, location string) (Weather, error) {
	var current owmCurrent
	var forecast owmForecast

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, "/weather", url.Values{"q": {location}}, &current)
	})
	g.Go(func() error {
		// forecast is decoration, a failure here never fails the lookup
		if err := c.get(gctx, "/forecast", url.Values{"q": {location}, "cnt": {"8"}}, &forecast); err != nil {
			logger.L().Debug("weather forecast unavailable", "location", location, "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Weather{}, err
	}
	if len(current.Weather) == 0 {
		return Weather{}, fmt.Errorf("weather response for %q has no conditions", location)
	}

	visibility := 10.0
	if current.Visibility != nil {
		visibility = *current.Visibility / 1000
	}
	w := Weather{
		Temperature:    int(math.Round(current.Main.Temp)),
		FeelsLike:      int(math.Round(current.Main.FeelsLike)),
		Condition:      languageutil.DisplayName(current.Weather[0].Description),
		MainCondition:  strings.ToLower(current.Weather[0].Main),
		Humidity:       current.Main.Humidity,
		WindSpeed:      math.Round(current.Wind.Speed*3.6*10) / 10,
		Pressure:       current.Main.Pressure,
		Visibility:     visibility,
		Location:       fmt.Sprintf("%s, %s", current.Name, current.Sys.Country),
		Icon:           current.Weather[0].Icon,
		HourlyForecast: []HourlyForecast{},
	}
	for i, entry := range forecast.List {
		if i == 4 {
			break
		}
		condition := ""
		if len(entry.Weather) > 0 {
			condition = languageutil.DisplayName(entry.Weather[0].Description)
		}
		w.HourlyForecast = append(w.HourlyForecast, HourlyForecast{
			Time:       entry.Dt,
			Temp:       int(math.Round(entry.Main.Temp)),
			Condition:  condition,
			RainChance: entry.Pop * 100,
		})
	}
	return w, nil
}

// MockWeather produces plausible seasonal weather when no API key is configured
// or the upstream is failing.
type MockWeather struct {
	mu   sync.Mutex
	rand *rand.Rand
	Now  func() time.Time
}

func NewMockWeather(seed int64) *MockWeather {
	return &MockWeather{rand: rand.New(rand.NewSource(seed)), Now: time.Now}
}

func (m *MockWeather) between(lo, hi int) int {
	return lo + m.rand.Intn(hi-lo+1)
}

func (m *MockWeather) Current(ctx context.Context, location string) (Weather, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lo, hi int
	var conditions []string
	switch m.Now().Month() {
	case time.December, time.January, time.February:
		lo, hi = -5, 10
		conditions = []string{"Cloudy", "Light Snow", "Overcast", "Clear"}
	case time.March, time.April, time.May:
		lo, hi = 10, 20
		conditions = []string{"Partly Cloudy", "Light Rain", "Clear", "Breezy"}
	case time.June, time.July, time.August:
		lo, hi = 20, 30
		conditions = []string{"Sunny", "Partly Cloudy", "Hot", "Clear"}
	default:
		lo, hi = 5, 18
		conditions = []string{"Cloudy", "Light Rain", "Windy", "Overcast"}
	}
	temp := m.between(lo, hi)
	condition := conditions[m.rand.Intn(len(conditions))]
	if location == "" {
		location = "Your Location"
	}
	return Weather{
		Temperature:    temp,
		FeelsLike:      temp + m.between(-3, 3),
		Condition:      condition,
		MainCondition:  strings.ToLower(condition),
		Humidity:       m.between(40, 80),
		WindSpeed:      float64(m.between(5, 25)),
		Pressure:       m.between(1000, 1030),
		Visibility:     float64(m.between(8, 15)),
		Location:       location,
		Icon:           "01d",
		Mock:           true,
		HourlyForecast: []HourlyForecast{},
	}, nil
}

// WeatherService caches upstream lookups per location and degrades to mock data.
type WeatherService struct {
	cache    *cache.LoadableCache[Weather]
	fallback WeatherProvider
}

func NewWeatherService(upstream WeatherProvider, fallback WeatherProvider, ttl time.Duration) (*WeatherService, error) {
	ristrettoStore, err := newRistrettoStore(1 << 12)
	if err != nil {
		return nil, err
	}
	load := func(ctx context.Context, key any) (Weather, []store.Option, error) {
		location, ok := key.(string)
		if !ok {
			return Weather{}, nil, fmt.Errorf("invalid key type provided to weather cache: expected string, got %T", key)
		}
		w, err := upstream.Current(ctx, location)
		return w, []store.Option{store.WithExpiration(ttl), store.WithCost(1)}, err
	}
	return &WeatherService{
		cache:    cache.NewLoadable[Weather](load, cache.New[Weather](ristrettoStore)),
		fallback: fallback,
	}, nil
}

func (s *WeatherService) Current(ctx context.Context, location string) (Weather, error) {
	key := languageutil.Canonical(location)
	if key != "" {
		w, err := s.cache.Get(ctx, key)
		if err == nil {
			return w, nil
		}
		logger.L().Warn("weather lookup failed, using mock data", "location", location, "error", err)
	}
	return s.fallback.Current(ctx, location)
}

// Package openweather fetches current conditions from the OpenWeatherMap API.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"activityweather/internal/domain"
)

const maxErrorBody = 500

// ErrNoConditions is returned when the response carries an empty weather array.
var ErrNoConditions = errors.New("openweather: response has no weather conditions")

// HTTPError is returned for non-success responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openweather: status %d: %s", e.StatusCode, e.Body)
}

// Client queries the current-weather endpoint.
type Client struct {
	baseURL string
	apiKey  string
	lang    string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client. lang selects the language of the condition
// description ("en" when empty).
func NewClient(baseURL, apiKey, lang string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if lang == "" {
		lang = "en"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		lang:    lang,
		http:    httpClient,
		logger:  logger,
	}
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Name string `json:"name"`
}

// CurrentWeather returns the conditions at (lat, lon). The snapshot is
// stamped with at, the activity start time.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64, at time.Time) (*domain.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", c.lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openweather: decode response: %w", err)
	}
	if len(out.Weather) == 0 {
		return nil, ErrNoConditions
	}

	c.logger.Debug("weather fetched",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.String("city", out.Name),
		zap.String("description", out.Weather[0].Description))

	return &domain.WeatherSnapshot{
		Description: out.Weather[0].Description,
		Temperature: round1(out.Main.Temp),
		FeelsLike:   round1(out.Main.FeelsLike),
		Humidity:    out.Main.Humidity,
		WindSpeed:   round1(out.Wind.Speed),
		WindAngle:   out.Wind.Deg,
		Cloudiness:  out.Clouds.All,
		CityName:    out.Name,
		Timestamp:   at,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

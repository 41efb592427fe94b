package domain

import "time"

// WeatherSnapshot is the weather observed at an activity's start.
type WeatherSnapshot struct {
	Description string    `json:"description"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	WindAngle   float64   `json:"windAngle"`
	Cloudiness  int       `json:"cloudiness"`
	CityName    string    `json:"cityName"`
	Timestamp   time.Time `json:"timestamp"`
}

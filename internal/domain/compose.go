package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var sportEmoji = map[string]string{
	"Ride":             "🚴",
	"GravelRide":       "🚴",
	"VirtualRide":      "🚴‍♂️🏠",
	"Run":              "🏃",
	"TrailRun":         "🏃",
	"VirtualRun":       "🏃‍♂️🏠",
	"Hike":             "🥾",
	"MountainBikeRide": "🚵",
	"Walk":             "🚶",
}

// SportEmojiTitle prefixes name with the emoji of the sport type. The
// boolean is false when the sport type is not mapped and the name is
// returned unchanged.
func SportEmojiTitle(name, sportType string) (string, bool) {
	emoji, ok := sportEmoji[sportType]
	if !ok {
		return name, false
	}
	return emoji + " " + name, true
}

// IsDaytime reports whether t falls within the daytime hours [6, 18].
func IsDaytime(t time.Time) bool {
	h := t.Hour()
	return h >= 6 && h <= 18
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// WeatherEmoji picks a glyph for a condition description. Descriptions may
// be in English or French.
func WeatherEmoji(description string, temperature float64, isDaytime bool) string {
	condition := strings.ToLower(description)

	switch {
	case containsAny(condition, "thunder", "storm", "orage"):
		return "⛈️"
	case containsAny(condition, "snow", "neige"):
		return "❄️"
	case containsAny(condition, "drizzle", "bruine"):
		return "🌦️"
	case containsAny(condition, "mist", "fog", "haze", "brume", "brouillard"):
		return "🌫️"
	}

	if isDaytime {
		switch {
		case containsAny(condition, "rain", "pluie"):
			return "🌧️"
		case containsAny(condition, "cloud", "nuage"):
			if containsAny(condition, "few", "scattered", "quelques", "épars") {
				return "🌤️"
			}
			if containsAny(condition, "broken", "fragmenté") {
				return "⛅"
			}
			return "☁️"
		case containsAny(condition, "clear", "dégagé", "ensoleillé"):
			return "☀️"
		}
		return "🌤️"
	}

	switch {
	case containsAny(condition, "rain", "pluie"):
		return "🌧️"
	case containsAny(condition, "cloud", "nuage"):
		return "☁️"
	case containsAny(condition, "clear", "dégagé"):
		if temperature < 0 {
			return "🌑"
		}
		if temperature < 10 {
			return "🌙"
		}
		return "🌕"
	}
	if temperature >= 0 {
		return "🌗"
	}
	return "🌑"
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection maps a bearing in degrees to one of eight compass points.
// Each sector is 45° wide and centred on its point; lower edges are inclusive.
func WindDirection(deg float64) string {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		deg = 0
	}
	if deg < 0 || deg >= 360 {
		deg = mod360(deg)
	}
	idx := int((deg+22.5)/45) % len(compassPoints)
	return compassPoints[idx]
}

func mod360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WeatherLine renders the one-line weather summary appended to descriptions.
func WeatherLine(w WeatherSnapshot) string {
	return fmt.Sprintf("🌡️ %s°C (feels like %s°C) ☁️ %s 💨 Wind: %s m/s from %s",
		formatNumber(w.Temperature),
		formatNumber(w.FeelsLike),
		w.Description,
		formatNumber(w.WindSpeed),
		WindDirection(w.WindAngle),
	)
}

// DescriptionWithWeather appends the weather line to current, separated by a
// blank line. An empty or blank current description is replaced outright.
func DescriptionWithWeather(current string, w WeatherSnapshot, devMode bool) string {
	line := WeatherLine(w)
	if devMode {
		line = "[DEV MODE] " + line
	}
	if strings.TrimSpace(current) == "" {
		return line
	}
	return current + "\n\n" + line
}

// TitleWithWeather prefixes title with the weather emoji.
func TitleWithWeather(title string, w WeatherSnapshot, isDaytime bool) string {
	return WeatherEmoji(w.Description, w.Temperature, isDaytime) + " " + title
}

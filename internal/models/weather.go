package models

import "fmt"

// WeatherCategory is the dataset's weather situation code.
type WeatherCategory int

const (
	WeatherClear WeatherCategory = iota + 1
	WeatherMist
	WeatherLightPrecipitation
	WeatherHeavyPrecipitation
)

// Valid reports whether c is one of the known weather codes.
func (c WeatherCategory) Valid() bool {
	return c >= WeatherClear && c <= WeatherHeavyPrecipitation
}

func (c WeatherCategory) String() string {
	switch c {
	case WeatherClear:
		return "Clear"
	case WeatherMist:
		return "Mist"
	case WeatherLightPrecipitation:
		return "Light Snow/Rain"
	case WeatherHeavyPrecipitation:
		return "Heavy Rain/Snow"
	default:
		return fmt.Sprintf("Weather(%d)", int(c))
	}
}

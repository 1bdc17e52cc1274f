package domain

import "context"

// WeatherReport contains current conditions returned by a weather provider.
type WeatherReport struct {
	Place       string  // resolved place name
	Description string  // localized conditions summary
	TempC       float64 // air temperature, °C
	Humidity    int     // relative humidity, %
	WindSpeed   float64 // m/s
}

// WeatherProvider supplies current weather for a named place. Implementations
// may fail or return an empty report; callers degrade gracefully, since
// weather is advisory and never part of the dosage calculation.
type WeatherProvider interface {
	Current(ctx context.Context, place string) (WeatherReport, error)
}

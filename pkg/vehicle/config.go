package vehicle

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/levenlabs/go-lflag"

	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
)

// Vehicle bundles the telemetry client with the home area used for
// proximity gating. API is nil when no token is configured; callers must
// treat the vehicle as unavailable then.
type Vehicle struct {
	API  API
	Home HomeArea
}

// Configured sets up the vehicle client and home area based on flags.
func Configured() *Vehicle {
	v := &Vehicle{}

	baseURL := lflag.String("vehicle-api-url", "https://owner-api.vendor.example", "Vehicle telemetry API base URL")
	token := lflag.String("vehicle-api-token", "", "Vehicle telemetry API bearer token")
	vehicleID := lflag.String("vehicle-id", "", "Vehicle identifier")
	homeLocation := lflag.String("home-location", "", "Home coordinates as lat,lng")
	homeRadius := lflag.String("home-radius-meters", "100", "Radius around home considered at-home")

	lflag.Do(func() {
		if *token != "" {
			v.API = NewClient(*baseURL, *token, *vehicleID)
		}
		if *homeLocation != "" {
			loc, err := parseLocation(*homeLocation)
			if err != nil {
				log.Ctx(context.Background()).Error("invalid home-location", slog.String("value", *homeLocation), slog.Any("error", err))
				panic(err)
			}
			v.Home.Home = loc
		}
		radius, err := strconv.ParseFloat(*homeRadius, 64)
		if err != nil {
			log.Ctx(context.Background()).Error("invalid home-radius-meters", slog.String("value", *homeRadius), slog.Any("error", err))
			panic(err)
		}
		v.Home.RadiusMeters = radius
	})

	return v
}

func parseLocation(s string) (types.Location, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return types.Location{}, strconv.ErrSyntax
	}
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return types.Location{}, err
	}
	lngF, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return types.Location{}, err
	}
	return types.Location{Latitude: latF, Longitude: lngF}, nil
}

package lib

import (
	"context"
	"log"

	"sbp/src/config"

	"googlemaps.github.io/maps"
)

var mapsClient *maps.Client

func GetMapsClient() (*maps.Client, error) {
	if mapsClient != nil {
		return mapsClient, nil
	}
	cli, err := maps.NewClient(maps.WithAPIKey(config.GAPI_API_KEY))
	if err != nil {
		return nil, err
	}
	mapsClient = cli
	return cli, nil
}

func NewMapsClient(c *maps.Client) {
	mapsClient = c
}

// ReverseGeocode returns a formatted address for the coordinates, or an
// empty string when geocoding is unavailable or returns nothing.
func ReverseGeocode(ctx context.Context, lat, lng float64) string {
	cli, err := GetMapsClient()
	if err != nil {
		log.Printf("Error initializing Maps client: %s\n", err.Error())
		return ""
	}
	results, err := cli.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		log.Printf("Error reverse geocoding: %s\n", err.Error())
		return ""
	}
	if len(results) == 0 {
		return ""
	}
	return results[0].FormattedAddress
}

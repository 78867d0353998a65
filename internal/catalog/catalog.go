// Package catalog maintains the station reference document: one reduced
// record per upstream station, persisted separately from measurement
// data and treated as read-mostly.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/tjsjts22/jpoproject/internal/gios"
)

// catalogKey is the document key the station catalog persists under.
const catalogKey = "stations"

var (
	// ErrEmptyCatalog is returned when a search runs against a catalog
	// with no stations.
	ErrEmptyCatalog = errors.New("station catalog is empty")
)

// Station is one reduced catalog record. Field names mirror the
// persisted layout, upstream spelling quirks included.
type Station struct {
	ID           int     `json:"id"`
	CityName     string  `json:"cityName"`
	ProvinceName string  `json:"provinceName"`
	GegrLat      float64 `json:"gegrLat"`
	GeogrLon     float64 `json:"geogrLon"`
}

// StationLister fetches the full upstream station listing.
type StationLister interface {
	FindAllStations(ctx context.Context) ([]gios.StationListing, error)
}

// DocumentStore persists the catalog document.
type DocumentStore interface {
	Load(key string, into any) error
	Save(key string, doc any) error
}

// Catalog builds and queries the station reference document.
type Catalog struct {
	store  DocumentStore
	lister StationLister
	log    *slog.Logger
}

// New creates a Catalog over the given store and lister.
func New(store DocumentStore, lister StationLister, log *slog.Logger) *Catalog {
	return &Catalog{store: store, lister: lister, log: log}
}

// Refresh rebuilds the catalog from the upstream listing and persists
// it, replacing any previous version. Listings without a city object or
// with unparseable coordinates are skipped. Returns the number of
// stations kept.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	listing, err := c.lister.FindAllStations(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch station listing: %w", err)
	}

	stations := make([]Station, 0, len(listing))
	for _, entry := range listing {
		if entry.City == nil {
			continue
		}
		lat, err := strconv.ParseFloat(entry.GegrLat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(entry.GegrLon, 64)
		if err != nil {
			continue
		}
		stations = append(stations, Station{
			ID:           entry.ID,
			CityName:     entry.City.Name,
			ProvinceName: entry.City.Commune.ProvinceName,
			GegrLat:      lat,
			GeogrLon:     lon,
		})
	}

	if err := c.store.Save(catalogKey, stations); err != nil {
		return 0, fmt.Errorf("persist station catalog: %w", err)
	}

	c.log.Info("station catalog rebuilt", "stations", len(stations), "listed", len(listing))
	return len(stations), nil
}

// Stations loads the persisted catalog.
func (c *Catalog) Stations() ([]Station, error) {
	var stations []Station
	if err := c.store.Load(catalogKey, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// SearchByCity returns every catalog station whose city name matches,
// case-insensitively.
func (c *Catalog) SearchByCity(city string) ([]Station, error) {
	stations, err := c.Stations()
	if err != nil {
		return nil, err
	}

	var matches []Station
	for _, st := range stations {
		if strings.EqualFold(st.CityName, city) {
			matches = append(matches, st)
		}
	}
	return matches, nil
}

// Nearest returns the catalog station closest to the given coordinates
// and the great-circle distance to it in kilometers.
func (c *Catalog) Nearest(lat, lon float64) (Station, float64, error) {
	stations, err := c.Stations()
	if err != nil {
		return Station{}, 0, err
	}
	if len(stations) == 0 {
		return Station{}, 0, ErrEmptyCatalog
	}

	best := stations[0]
	bestDist := haversine(lat, lon, best.GegrLat, best.GeogrLon)
	for _, st := range stations[1:] {
		if d := haversine(lat, lon, st.GegrLat, st.GeogrLon); d < bestDist {
			best = st
			bestDist = d
		}
	}
	return best, bestDist, nil
}

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// haversine computes the great-circle distance between two coordinates
// in kilometers.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

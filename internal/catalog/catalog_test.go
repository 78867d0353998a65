package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/tjsjts22/jpoproject/internal/gios"
	"github.com/tjsjts22/jpoproject/internal/store"
)

type fakeLister struct {
	listing []gios.StationListing
	err     error
}

func (f *fakeLister) FindAllStations(ctx context.Context) ([]gios.StationListing, error) {
	return f.listing, f.err
}

func cityListing(id int, name, province string) *gios.CityListing {
	c := &gios.CityListing{ID: id, Name: name}
	c.Commune.ProvinceName = province
	return c
}

func newTestCatalog(lister StationLister) *Catalog {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.NewMemoryStore(), lister, log)
}

func TestRefreshReducesListing(t *testing.T) {
	lister := &fakeLister{listing: []gios.StationListing{
		{ID: 52, GegrLat: "54.353336", GegrLon: "18.635283", City: cityListing(1, "Gdańsk", "POMORSKIE")},
		{ID: 109, GegrLat: "50.057678", GegrLon: "19.926189", City: cityListing(2, "Kraków", "MAŁOPOLSKIE")},
		{ID: 7, GegrLat: "51.1", GegrLon: "17.0", City: nil},          // no city object
		{ID: 8, GegrLat: "bad", GegrLon: "17.0", City: cityListing(3, "X", "Y")}, // bad coordinate
	}}
	cat := newTestCatalog(lister)

	count, err := cat.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stations kept, got %d", count)
	}

	stations, err := cat.Stations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stations[0].ID != 52 || stations[0].CityName != "Gdańsk" {
		t.Fatalf("unexpected first station: %+v", stations[0])
	}
	if stations[0].GegrLat != 54.353336 {
		t.Fatalf("coordinate not parsed: %v", stations[0].GegrLat)
	}
}

func TestStationsBeforeRefresh(t *testing.T) {
	cat := newTestCatalog(&fakeLister{})
	if _, err := cat.Stations(); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchByCityIsCaseInsensitive(t *testing.T) {
	lister := &fakeLister{listing: []gios.StationListing{
		{ID: 52, GegrLat: "54.3", GegrLon: "18.6", City: cityListing(1, "Gdańsk", "POMORSKIE")},
		{ID: 53, GegrLat: "54.4", GegrLon: "18.5", City: cityListing(1, "Gdańsk", "POMORSKIE")},
		{ID: 109, GegrLat: "50.0", GegrLon: "19.9", City: cityListing(2, "Kraków", "MAŁOPOLSKIE")},
	}}
	cat := newTestCatalog(lister)
	if _, err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := cat.SearchByCity("gdańsk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	matches, err = cat.SearchByCity("Lublin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestNearestPicksClosestStation(t *testing.T) {
	lister := &fakeLister{listing: []gios.StationListing{
		{ID: 52, GegrLat: "54.35", GegrLon: "18.64", City: cityListing(1, "Gdańsk", "POMORSKIE")},
		{ID: 109, GegrLat: "50.06", GegrLon: "19.93", City: cityListing(2, "Kraków", "MAŁOPOLSKIE")},
	}}
	cat := newTestCatalog(lister)
	if _, err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// From Warsaw, Kraków is the closer of the two by great-circle
	// distance.
	station, dist, err := cat.Nearest(52.23, 21.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if station.ID != 109 {
		t.Fatalf("expected station 109, got %d", station.ID)
	}
	if dist <= 0 || dist > 1000 {
		t.Fatalf("implausible distance: %v km", dist)
	}
}

func TestNearestEmptyCatalog(t *testing.T) {
	cat := newTestCatalog(&fakeLister{listing: []gios.StationListing{}})
	if _, err := cat.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := cat.Nearest(52, 21); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Gdańsk to Kraków is roughly 485 km great-circle.
	d := haversine(54.3520, 18.6466, 50.0647, 19.9450)
	if math.Abs(d-485) > 15 {
		t.Fatalf("expected ~485 km, got %v", d)
	}
}

package airquality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/tjsjts22/jpoproject/internal/store"
)

var (
	// ErrSensorNotFound is returned when a station document exists but
	// holds no record for the requested sensor.
	ErrSensorNotFound = errors.New("sensor not found in station document")

	// ErrNoReadings is returned when statistics are requested for a
	// sensor whose series is empty (never fetched, all entries invalid,
	// or nothing left after date filtering).
	ErrNoReadings = errors.New("sensor has no readings")
)

// SensorInfo is one entry of the upstream per-station sensor listing.
type SensorInfo struct {
	ID    int
	Param *Param
}

// SensorPayload is the raw result of fetching one sensor's data.
type SensorPayload struct {
	Key    string
	Values []ValueEntry
}

// Client is the upstream fetch collaborator. A failed fetch returns an
// error and nothing else happens; the cache is never touched on failure.
type Client interface {
	StationSensors(ctx context.Context, stationID int) ([]SensorInfo, error)
	SensorData(ctx context.Context, sensorID int) (SensorPayload, error)
}

// DocumentStore is the persistence collaborator for station documents.
type DocumentStore interface {
	Load(key string, into any) error
	Save(key string, doc any) error
}

// Service runs the ingestion and analysis pipeline for station sensor
// data. The load-merge-save sequence over a station document is not
// reentrant, so Service serializes it per station; concurrent updates
// for the same station queue behind each other instead of losing merges.
type Service struct {
	store  DocumentStore
	client Client
	log    *slog.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewService creates a new Service.
func NewService(store DocumentStore, client Client, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		client: client,
		log:    log,
		locks:  make(map[int]*sync.Mutex),
	}
}

// stationLock returns the mutex guarding one station's document.
func (s *Service) stationLock(stationID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[stationID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[stationID] = l
	}
	return l
}

func stationKey(stationID int) string {
	return strconv.Itoa(stationID)
}

// Document loads the persisted document for a station.
func (s *Service) Document(stationID int) (StationDocument, error) {
	var doc StationDocument
	if err := s.store.Load(stationKey(stationID), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// loadOrEmpty starts merges from the persisted document when present and
// from an empty one otherwise.
func (s *Service) loadOrEmpty(stationID int) (StationDocument, error) {
	doc, err := s.Document(stationID)
	if errors.Is(err, store.ErrNotFound) {
		return StationDocument{}, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateSensor fetches fresh data for one sensor and merges it into the
// station document: replace the record's values when the sensor is
// already present, append a new record otherwise. Merging the same
// payload twice yields the same document. The full new document is built
// before persisting; on any error the stored document is left untouched.
func (s *Service) UpdateSensor(ctx context.Context, stationID, sensorID int) (StationDocument, error) {
	payload, err := s.client.SensorData(ctx, sensorID)
	if err != nil {
		return nil, fmt.Errorf("fetch sensor %d: %w", sensorID, err)
	}

	lock := s.stationLock(stationID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.loadOrEmpty(stationID)
	if err != nil {
		return nil, err
	}

	doc = doc.Upsert(sensorID, payload.Values)
	if err := s.store.Save(stationKey(stationID), doc); err != nil {
		return nil, fmt.Errorf("persist station %d: %w", stationID, err)
	}

	s.log.Info("sensor data merged",
		"station", stationID, "sensor", sensorID, "entries", len(payload.Values))
	return doc, nil
}

// RefreshSensorList fetches the station's sensor listing and seeds the
// document with a record per sensor. Existing records keep their values;
// only the parameter metadata is refreshed.
func (s *Service) RefreshSensorList(ctx context.Context, stationID int) (StationDocument, error) {
	sensors, err := s.client.StationSensors(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("fetch sensor list for station %d: %w", stationID, err)
	}

	lock := s.stationLock(stationID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.loadOrEmpty(stationID)
	if err != nil {
		return nil, err
	}

	for _, info := range sensors {
		if i := doc.Find(info.ID); i >= 0 {
			doc[i].Param = info.Param
			continue
		}
		doc = append(doc, SensorRecord{ID: info.ID, Param: info.Param})
	}

	if err := s.store.Save(stationKey(stationID), doc); err != nil {
		return nil, fmt.Errorf("persist station %d: %w", stationID, err)
	}
	return doc, nil
}

// UpdateStation refreshes the sensor listing and then fetches data for
// every listed sensor, merging record by record. Sensors that fail to
// fetch are skipped and keep whatever the document already holds.
func (s *Service) UpdateStation(ctx context.Context, stationID int) (StationDocument, error) {
	doc, err := s.RefreshSensorList(ctx, stationID)
	if err != nil {
		return nil, err
	}

	for _, rec := range doc {
		if _, err := s.UpdateSensor(ctx, stationID, rec.ID); err != nil {
			s.log.Warn("sensor update failed",
				"station", stationID, "sensor", rec.ID, "error", err)
		}
	}
	return s.Document(stationID)
}

// Series extracts the ascending series for one sensor, optionally
// bounded by a date range. An empty result is valid.
func (s *Service) Series(stationID, sensorID int, r *DateRange) (TimeSeries, error) {
	doc, err := s.Document(stationID)
	if err != nil {
		return nil, err
	}

	i := doc.Find(sensorID)
	if i < 0 {
		return nil, ErrSensorNotFound
	}

	series := ExtractSeries(doc[i].Values)
	if r != nil {
		series = FilterSeries(series, *r)
	}
	return series, nil
}

// StationSeries extracts the ascending series for every fetched sensor
// of a station, keyed by sensor ID and optionally bounded by a date
// range. Sensors left without readings by the filter contribute nothing.
func (s *Service) StationSeries(stationID int, r *DateRange) (map[int]TimeSeries, error) {
	doc, err := s.Document(stationID)
	if err != nil {
		return nil, err
	}
	if r != nil {
		doc = FilterDocument(doc, *r)
	}
	return ExtractDocument(doc), nil
}

// Stats analyzes one sensor's series. Emptiness is checked here so the
// analysis precondition holds; no data maps to ErrNoReadings.
func (s *Service) Stats(stationID, sensorID int, r *DateRange) (Statistics, error) {
	series, err := s.Series(stationID, sensorID, r)
	if err != nil {
		return Statistics{}, err
	}
	if len(series) == 0 {
		return Statistics{}, ErrNoReadings
	}
	return Analyze(series), nil
}

// Chart builds the chart model for one sensor. An empty series yields a
// model with empty geometry rather than an error, so the caller can draw
// an empty frame.
func (s *Service) Chart(stationID, sensorID int, r *DateRange, vp Viewport, m Margins) (ChartModel, error) {
	series, err := s.Series(stationID, sensorID, r)
	if err != nil {
		return ChartModel{}, err
	}
	return Layout(series, vp, m), nil
}

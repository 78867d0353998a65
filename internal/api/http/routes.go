package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tjsjts22/jpoproject/internal/airquality"
	"github.com/tjsjts22/jpoproject/internal/catalog"
	"github.com/tjsjts22/jpoproject/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service, cat *catalog.Catalog) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations/search", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		stations, err := cat.SearchByCity(city)
		if err != nil {
			return mapStoreError(err, "station catalog not built yet")
		}

		return c.JSON(fiber.Map{
			"city":     city,
			"stations": stations,
		})
	})

	v1.Get("/stations/nearest", func(c *fiber.Ctx) error {
		var req nearestQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		station, distanceKm, err := cat.Nearest(req.Lat, req.Lon)
		if err != nil {
			if errors.Is(err, catalog.ErrEmptyCatalog) {
				return fiber.NewError(fiber.StatusNotFound, "station catalog is empty")
			}
			return mapStoreError(err, "station catalog not built yet")
		}

		return c.JSON(fiber.Map{
			"station":    station,
			"distanceKm": distanceKm,
		})
	})

	v1.Post("/stations/catalog/refresh", func(c *fiber.Ctx) error {
		count, err := cat.Refresh(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to rebuild station catalog")
		}
		return c.JSON(fiber.Map{"stations": count})
	})

	v1.Get("/stations/:id/sensors", func(c *fiber.Ctx) error {
		stationID, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
		}

		doc, err := service.Document(stationID)
		if err != nil {
			return mapStoreError(err, "no data for requested station")
		}

		sensors := make([]fiber.Map, 0, len(doc))
		for _, rec := range doc {
			sensors = append(sensors, fiber.Map{
				"id":          rec.ID,
				"param":       rec.Param,
				"hasReadings": rec.HasReadings(),
			})
		}
		return c.JSON(fiber.Map{"station": stationID, "sensors": sensors})
	})

	v1.Post("/stations/:id/update", func(c *fiber.Ctx) error {
		stationID, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
		}

		doc, err := service.UpdateStation(c.Context(), stationID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to update station data")
		}
		return c.JSON(fiber.Map{"station": stationID, "sensors": len(doc)})
	})

	v1.Post("/stations/:id/sensors/:sensorId/update", func(c *fiber.Ctx) error {
		stationID, sensorID, err := pathIDs(c)
		if err != nil {
			return err
		}

		doc, err := service.UpdateSensor(c.Context(), stationID, sensorID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to update sensor data")
		}
		return c.JSON(fiber.Map{"station": stationID, "sensor": sensorID, "sensors": len(doc)})
	})

	v1.Get("/stations/:id/series", func(c *fiber.Ctx) error {
		stationID, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
		}

		dateRange, err := parseRangeQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, err := service.StationSeries(stationID, dateRange)
		if err != nil {
			return mapStoreError(err, "no data for requested station")
		}
		return c.JSON(fiber.Map{"station": stationID, "series": series})
	})

	v1.Get("/stations/:id/sensors/:sensorId/stats", func(c *fiber.Ctx) error {
		stationID, sensorID, err := pathIDs(c)
		if err != nil {
			return err
		}

		dateRange, err := parseRangeQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stats, err := service.Stats(stationID, sensorID, dateRange)
		if err != nil {
			if errors.Is(err, airquality.ErrNoReadings) {
				return fiber.NewError(fiber.StatusNotFound, "sensor has no readings in range")
			}
			return mapStoreError(err, "no data for requested sensor")
		}
		return c.JSON(stats)
	})

	v1.Get("/stations/:id/sensors/:sensorId/chart", func(c *fiber.Ctx) error {
		stationID, sensorID, err := pathIDs(c)
		if err != nil {
			return err
		}

		var req chartQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dateRange, err := parseRangeQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		model, err := service.Chart(stationID, sensorID, dateRange,
			airquality.Viewport{Width: req.Width, Height: req.Height},
			airquality.DefaultMargins)
		if err != nil {
			return mapStoreError(err, "no data for requested sensor")
		}
		return c.JSON(model)
	})
}

func pathIDs(c *fiber.Ctx) (stationID, sensorID int, err error) {
	stationID, err = c.ParamsInt("id")
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}
	sensorID, err = c.ParamsInt("sensorId")
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid sensor id")
	}
	return stationID, sensorID, nil
}

func mapStoreError(err error, notFoundMsg string) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, airquality.ErrSensorNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFoundMsg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "internal error")
}

// nearestQuery holds query parameters for the nearest-station endpoint.
type nearestQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (q *nearestQuery) bind(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat", -1000)
	lon := c.QueryFloat("lon", -1000)
	if lat == -1000 || lon == -1000 {
		return errors.New("lat and lon query parameters are required")
	}
	q.Lat = lat
	q.Lon = lon
	return validate.Struct(q)
}

// chartQuery holds the viewport parameters for the chart endpoint.
type chartQuery struct {
	Width  int `validate:"gt=0"`
	Height int `validate:"gt=0"`
}

func (q *chartQuery) bind(c *fiber.Ctx) error {
	q.Width = c.QueryInt("width", 1000)
	q.Height = c.QueryInt("height", 600)
	return validate.Struct(q)
}

// parseRangeQuery reads the optional from/to date pair. Both must be
// given together; an inverted range is legal and matches nothing.
func parseRangeQuery(c *fiber.Ctx) (*airquality.DateRange, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		return nil, nil
	}
	if fromStr == "" || toStr == "" {
		return nil, errors.New("from and to must be provided together")
	}

	from, err := time.Parse(airquality.DateLayout, fromStr)
	if err != nil {
		return nil, errors.New("invalid from date; use YYYY-MM-DD")
	}
	to, err := time.Parse(airquality.DateLayout, toStr)
	if err != nil {
		return nil, errors.New("invalid to date; use YYYY-MM-DD")
	}
	return &airquality.DateRange{Start: from, End: to}, nil
}

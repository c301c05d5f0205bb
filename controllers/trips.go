package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/packing"
	"wewearapi/services"
	"wewearapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type TripController struct {
	Planner    *packing.Planner
	Weather    services.WeatherProvider
	Thresholds laundry.Thresholds
}

func tripOut(trip models.Trip) models.TripOut {
	return models.TripOut{
		Trip:         trip,
		StartDate:    trip.Start().Format(models.TripDateLayout),
		EndDate:      trip.End().Format(models.TripDateLayout),
		DurationDays: trip.DurationDays(),
		Season:       packing.SeasonFor(trip.Start()),
		PackingList:  trip.PackingList,
	}
}

func parseTripDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(models.TripDateLayout, strings.TrimSpace(value))
	if err != nil {
		return datatypes.Date{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
	}
	return datatypes.Date(t), nil
}

func checkTripDates(start, end datatypes.Date) error {
	if time.Time(start).After(time.Time(end)) {
		return echo.NewHTTPError(http.StatusBadRequest, "Start date must be before end date")
	}
	return nil
}

// tripWeather looks up the destination; a failed lookup leaves the planner without weather.
func (m TripController) tripWeather(ctx context.Context, destination string) string {
	if m.Weather == nil || destination == "" {
		return ""
	}
	w, err := m.Weather.Current(ctx, destination)
	if err != nil {
		logger.L().Warn("trip weather lookup failed", "destination", destination, "error", err)
		return ""
	}
	return w.Description()
}

func (m *TripController) TripRoutes(g *echo.Group) {
	g.POST("", func(c echo.Context) error {
		in := new(models.TripIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		start, err := parseTripDate(in.StartDate)
		if err != nil {
			return err
		}
		end, err := parseTripDate(in.EndDate)
		if err != nil {
			return err
		}
		if err := checkTripDates(start, end); err != nil {
			return err
		}
		user := currentUser(c)
		trip := models.Trip{
			OwnerID:     user.ID,
			Destination: strings.TrimSpace(in.Destination),
			StartDate:   start,
			EndDate:     end,
			TripType:    strings.TrimSpace(in.TripType),
			Notes:       in.Notes,
			Status:      models.TripPlanned,
		}
		if err := services.NewTripRepository(dbFrom(c)).CreateTrip(c.Request().Context(), &trip); err != nil {
			return serviceError(c, err, "trip")
		}
		return c.JSON(http.StatusCreated, tripOut(trip))
	})

	g.GET("", func(c echo.Context) error {
		trips, err := services.NewTripRepository(dbFrom(c)).ListTrips(c.Request().Context(), currentUser(c).ID)
		if err != nil {
			return serviceError(c, err, "trips")
		}
		out := make([]models.TripOut, 0, len(trips))
		for _, trip := range trips {
			out = append(out, tripOut(trip))
		}
		return c.JSON(http.StatusOK, echo.Map{"trips": out})
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		trip, err := services.NewTripRepository(dbFrom(c)).GetTrip(c.Request().Context(), currentUser(c).ID, id)
		if err != nil {
			return serviceError(c, err, "trip")
		}
		return c.JSON(http.StatusOK, tripOut(trip))
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		in := new(models.TripUpdateIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		trip, err := services.NewTripRepository(dbFrom(c)).UpdateTrip(c.Request().Context(), currentUser(c).ID, id, func(trip *models.Trip) (bool, error) {
			invalidate := false
			if in.Destination != nil && strings.TrimSpace(*in.Destination) != trip.Destination {
				trip.Destination = strings.TrimSpace(*in.Destination)
				invalidate = true
			}
			if in.StartDate != nil {
				start, err := parseTripDate(*in.StartDate)
				if err != nil {
					return false, err
				}
				invalidate = invalidate || !trip.Start().Equal(time.Time(start))
				trip.StartDate = start
			}
			if in.EndDate != nil {
				end, err := parseTripDate(*in.EndDate)
				if err != nil {
					return false, err
				}
				invalidate = invalidate || !trip.End().Equal(time.Time(end))
				trip.EndDate = end
			}
			if err := checkTripDates(trip.StartDate, trip.EndDate); err != nil {
				return false, err
			}
			if in.TripType != nil {
				trip.TripType = strings.TrimSpace(*in.TripType)
			}
			if in.Notes != nil {
				trip.Notes = *in.Notes
			}
			return invalidate, nil
		})
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				return he
			}
			return serviceError(c, err, "trip")
		}
		return c.JSON(http.StatusOK, tripOut(trip))
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		if err := services.NewTripRepository(dbFrom(c)).DeleteTrip(c.Request().Context(), currentUser(c).ID, id); err != nil {
			return serviceError(c, err, "trip")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Trip deleted successfully"})
	})

	g.GET("/:id/packing-list", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		trips := services.NewTripRepository(dbFrom(c))
		trip, err := trips.GetTrip(ctx, user.ID, id)
		if err != nil {
			return serviceError(c, err, "trip")
		}
		if trip.PackingList != nil {
			return c.JSON(http.StatusOK, trip.PackingList)
		}
		if trip.Completed() {
			return serviceError(c, services.ErrNoPackingList, "packing list")
		}

		wardrobe, err := services.NewWardrobeRepository(dbFrom(c)).ListItems(ctx, user.ID)
		if err != nil {
			return serviceError(c, err, "items")
		}
		list, source, err := m.Planner.Plan(ctx, packing.Input{
			Destination: trip.Destination,
			TripType:    trip.TripType,
			Notes:       trip.Notes,
			Start:       trip.Start(),
			End:         trip.End(),
			Weather:     m.tripWeather(ctx, trip.Destination),
			Wardrobe:    wardrobe,
		})
		if err != nil {
			return serviceError(c, err, "packing list")
		}

		record := models.PackingList{
			TripID:    trip.ID,
			OwnerID:   user.ID,
			Reasoning: list.Reasoning,
			Source:    string(source),
		}
		for _, entry := range list.Entries {
			record.Items = append(record.Items, models.PackingListItem{
				Category:       entry.Category,
				ItemName:       entry.Name,
				Quantity:       entry.Quantity,
				ClothingItemID: entry.ItemID,
			})
		}
		saved, err := trips.SavePackingList(ctx, &record)
		if err != nil {
			return serviceError(c, err, "packing list")
		}
		logger.L().Info("packing list generated", "user_id", user.ID, "trip_id", trip.ID, "source", source, "lines", len(saved.Items))
		return c.JSON(http.StatusOK, saved)
	})

	g.POST("/:id/complete", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		trip, transitions, err := services.NewTripRepository(dbFrom(c)).CompleteTrip(c.Request().Context(), user.ID, id, laundry.ForUser(m.Thresholds, user), time.Now())
		if err != nil {
			return serviceError(c, err, "trip")
		}
		if err := tasks.EnqueueUrgencyAlert(taskClient(c), user.ID, transitions); err != nil {
			logger.L().Error("failed to enqueue urgency alert", "user_id", user.ID, "error", err)
			sentry.CaptureException(err)
		}
		if transitions == nil {
			transitions = []laundry.Transition{}
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":       "Trip marked as completed and packed items added to laundry.",
			"trip":          tripOut(trip),
			"updated_count": len(transitions),
			"transitions":   transitions,
		})
	})
}

func (m *TripController) PackingItemRoutes(g *echo.Group) {
	g.POST("/:id/toggle", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		item, err := services.NewTripRepository(dbFrom(c)).TogglePackedItem(c.Request().Context(), currentUser(c).ID, id)
		if err != nil {
			return serviceError(c, err, "packing list item")
		}
		return c.JSON(http.StatusOK, item)
	})
}

package controllers

import (
	"context"
	"net/http"
	"time"

	"wewearapi/languageutil"
	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/outfit"
	"wewearapi/services"
	"wewearapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

const (
	defaultMood    = "casual"
	defaultWeather = "mild weather"
)

type OutfitController struct {
	Engine      *outfit.Engine
	Weather     services.WeatherProvider
	Items       ItemController
	Thresholds  laundry.Thresholds
	HistoryDays int
}

func (m OutfitController) historySince(now time.Time) time.Time {
	days := m.HistoryDays
	if days <= 0 {
		days = 7
	}
	return now.AddDate(0, 0, -days)
}

// resolveWeather prefers an explicit description, then a lookup for the location.
func (m OutfitController) resolveWeather(ctx context.Context, in *models.OutfitSuggestIn, user models.UserAccount) (string, *services.Weather, string) {
	if in.Weather != "" {
		return in.Weather, nil, ""
	}
	location := in.Location
	if location == "" {
		location = user.Location
	}
	if location == "" || m.Weather == nil {
		return defaultWeather, nil, ""
	}
	w, err := m.Weather.Current(ctx, location)
	if err != nil {
		logger.L().Warn("weather lookup failed", "location", location, "error", err)
		return defaultWeather, nil, ""
	}
	return w.Description(), &w, w.Advice()
}

func (m OutfitController) outfitOut(ctx context.Context, o models.Outfit, items map[uint]models.ClothingItem) models.OutfitOut {
	now := time.Now()
	out := models.OutfitOut{
		Outfit:         o,
		ItemIDs:        o.ItemIDs(),
		Items:          []models.ClothingItemOut{},
		MissingItemIDs: []uint{},
	}
	for _, id := range out.ItemIDs {
		item, ok := items[id]
		if !ok {
			out.MissingItemIDs = append(out.MissingItemIDs, id)
			continue
		}
		out.Items = append(out.Items, m.Items.out(ctx, item, now))
	}
	return out
}

func (m *OutfitController) OutfitRoutes(g *echo.Group) {
	g.POST("/suggest", func(c echo.Context) error {
		in := new(models.OutfitSuggestIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))

		mood := languageutil.Canonical(in.Mood)
		if mood == "" {
			mood = defaultMood
		}
		wardrobe, _, err := repo.RefreshUrgency(ctx, user.ID, laundry.ForUser(m.Thresholds, user))
		if err != nil {
			return serviceError(c, err, "items")
		}
		if len(wardrobe) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   "No clothes in wardrobe",
				"message": "Add some clothes to your wardrobe first!",
				"mood":    mood,
			})
		}

		weather, weatherData, advice := m.resolveWeather(ctx, in, user)
		now := time.Now()
		history, err := repo.RecentHistory(ctx, user.ID, m.historySince(now))
		if err != nil {
			return serviceError(c, err, "history")
		}

		result, err := m.Engine.GenerateSuggestion(ctx, outfit.Request{
			Wardrobe:   wardrobe,
			Weather:    weather,
			Mood:       mood,
			Season:     languageutil.Canonical(in.Season),
			History:    history,
			ExcludeIDs: in.ExcludeIDs,
		})
		if err != nil {
			return serviceError(c, err, "suggestion")
		}

		cleanCount := 0
		for _, item := range wardrobe {
			if item.IsClean {
				cleanCount++
			}
		}
		return c.JSON(http.StatusOK, echo.Map{
			"suggestion":        result.Suggestion,
			"source":            result.Source,
			"style_profile":     result.Profile,
			"skipped_filters":   result.SkippedFilters,
			"warnings":          result.Warnings,
			"items":             m.Items.outList(ctx, result.Items),
			"weather":           weather,
			"weather_data":      weatherData,
			"weather_advice":    advice,
			"mood":              mood,
			"wardrobe_count":    len(wardrobe),
			"clean_items_count": cleanCount,
		})
	})

	g.POST("", func(c echo.Context) error {
		in := new(models.OutfitSaveIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))

		worn := true
		if in.WasActuallyWorn != nil {
			worn = *in.WasActuallyWorn
		}
		record := models.Outfit{
			OwnerID:         user.ID,
			Weather:         in.Weather,
			Mood:            languageutil.Canonical(in.Mood),
			Season:          languageutil.Canonical(in.Season),
			Reasoning:       in.Reasoning,
			StyleNotes:      in.StyleNotes,
			Confidence:      in.Confidence,
			WasActuallyWorn: worn,
			Rating:          in.Rating,
			Notes:           in.Notes,
		}
		transitions, err := repo.SaveOutfit(ctx, &record, in.ItemIDs, laundry.ForUser(m.Thresholds, user), time.Now())
		if err != nil {
			return serviceError(c, err, "outfit")
		}
		if err := tasks.EnqueueUrgencyAlert(taskClient(c), user.ID, transitions); err != nil {
			logger.L().Error("failed to enqueue urgency alert", "user_id", user.ID, "error", err)
			sentry.CaptureException(err)
		}
		items, err := repo.ItemsForOutfits(ctx, user.ID, []models.Outfit{record})
		if err != nil {
			return serviceError(c, err, "items")
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message":     "Outfit saved successfully",
			"outfit":      m.outfitOut(ctx, record, items),
			"transitions": transitions,
		})
	})

	g.GET("", func(c echo.Context) error {
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))
		page := queryInt(c, "page", 1)
		perPage := queryInt(c, "per_page", 10)
		if page < 1 {
			page = 1
		}
		if perPage < 1 {
			perPage = 10
		}
		if perPage > services.MaxOutfitsPerPage {
			perPage = services.MaxOutfitsPerPage
		}
		outfits, total, err := repo.ListOutfits(ctx, user.ID, page, perPage)
		if err != nil {
			return serviceError(c, err, "outfits")
		}
		items, err := repo.ItemsForOutfits(ctx, user.ID, outfits)
		if err != nil {
			return serviceError(c, err, "items")
		}
		out := make([]models.OutfitOut, 0, len(outfits))
		for _, o := range outfits {
			out = append(out, m.outfitOut(ctx, o, items))
		}
		pages := (total + int64(perPage) - 1) / int64(perPage)
		return c.JSON(http.StatusOK, echo.Map{
			"outfits":      out,
			"total":        total,
			"pages":        pages,
			"current_page": page,
			"per_page":     perPage,
		})
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))
		record, err := repo.GetOutfit(ctx, user.ID, id)
		if err != nil {
			return serviceError(c, err, "outfit")
		}
		items, err := repo.ItemsForOutfits(ctx, user.ID, []models.Outfit{record})
		if err != nil {
			return serviceError(c, err, "items")
		}
		return c.JSON(http.StatusOK, echo.Map{"outfit": m.outfitOut(ctx, record, items)})
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		in := new(models.OutfitUpdateIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))
		record, err := repo.UpdateOutfit(ctx, user.ID, id, func(o *models.Outfit) {
			if in.Rating != nil {
				o.Rating = in.Rating
			}
			if in.Notes != nil {
				o.Notes = in.Notes
			}
			if in.WasActuallyWorn != nil {
				o.WasActuallyWorn = *in.WasActuallyWorn
			}
		})
		if err != nil {
			return serviceError(c, err, "outfit")
		}
		items, err := repo.ItemsForOutfits(ctx, user.ID, []models.Outfit{record})
		if err != nil {
			return serviceError(c, err, "items")
		}
		return c.JSON(http.StatusOK, echo.Map{"outfit": m.outfitOut(ctx, record, items)})
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		if err := services.NewWardrobeRepository(dbFrom(c)).DeleteOutfit(c.Request().Context(), user.ID, id); err != nil {
			return serviceError(c, err, "outfit")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Outfit deleted successfully"})
	})
}

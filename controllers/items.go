package controllers

import (
	"context"
	"net/http"
	"time"

	"wewearapi/languageutil"
	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type ItemController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Thresholds laundry.Thresholds
	BucketName string
}

// readURL resolves an image key through the cache, presigning directly when the cache fails.
func (m ItemController) readURL(ctx context.Context, key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	if m.URLCache != nil {
		url, err := m.URLCache.GetReadURL(ctx, *key)
		if err == nil {
			return url
		}
		logger.L().Warn("url cache failed, presigning directly", "key", *key, "error", err)
	}
	if m.AWSService == nil {
		return ""
	}
	url, err := m.AWSService.GetPresignedR2FileReadURL(ctx, m.BucketName, *key)
	if err != nil {
		logger.L().Error("could not presign image", "key", *key, "error", err)
		sentry.CaptureException(err)
		return ""
	}
	return url
}

func (m ItemController) out(ctx context.Context, item models.ClothingItem, now time.Time) models.ClothingItemOut {
	if item.MoodTags == nil {
		item.MoodTags = datatypes.JSONSlice[string]{}
	}
	if item.CustomTags == nil {
		item.CustomTags = datatypes.JSONSlice[string]{}
	}
	return models.ClothingItemOut{
		ClothingItem:  item,
		ImageURL:      m.readURL(ctx, item.ImageURL),
		DaysSinceWash: item.DaysSinceWash(now),
		CostPerWear:   item.CostPerWear(),
	}
}

func (m ItemController) outList(ctx context.Context, items []models.ClothingItem) []models.ClothingItemOut {
	now := time.Now()
	out := make([]models.ClothingItemOut, 0, len(items))
	for _, item := range items {
		out = append(out, m.out(ctx, item, now))
	}
	return out
}

func canonicalSeason(season string) string {
	season = languageutil.Canonical(season)
	if season == "" {
		return models.SeasonAll
	}
	return season
}

func (m *ItemController) ItemRoutes(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))
		items, _, err := repo.RefreshUrgency(ctx, user.ID, laundry.ForUser(m.Thresholds, user))
		if err != nil {
			return serviceError(c, err, "items")
		}
		itemType := languageutil.Canonical(c.QueryParam("type"))
		cleanFilter := c.QueryParam("clean")
		filtered := items[:0]
		for _, item := range items {
			if itemType != "" && item.Type != itemType {
				continue
			}
			if cleanFilter == "true" && !item.IsClean || cleanFilter == "false" && item.IsClean {
				continue
			}
			filtered = append(filtered, item)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": m.outList(ctx, filtered)})
	})

	g.POST("", func(c echo.Context) error {
		user := currentUser(c)
		in := new(models.ClothingItemIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		item := models.ClothingItem{
			OwnerID:      user.ID,
			Name:         in.Name,
			Type:         languageutil.Canonical(in.Type),
			Style:        languageutil.Canonical(in.Style),
			Color:        languageutil.Canonical(in.Color),
			Season:       canonicalSeason(in.Season),
			Fabric:       languageutil.Canonical(in.Fabric),
			Brand:        in.Brand,
			MoodTags:     languageutil.CanonicalTags(in.MoodTags),
			CustomTags:   languageutil.CanonicalTags(in.CustomTags),
			PurchaseCost: in.PurchaseCost,
			DryCleanOnly: in.DryCleanOnly,
			IsClean:      true,
			WashUrgency:  models.UrgencyNone,
			LaundryState: models.LaundryClean,
			ImageStatus:  models.ImageStatusDraft,
		}
		ctx := c.Request().Context()
		if err := services.NewWardrobeRepository(dbFrom(c)).CreateItem(ctx, &item); err != nil {
			return serviceError(c, err, "item")
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message": "Item added successfully",
			"item":    m.out(ctx, item, time.Now()),
		})
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		item, err := services.NewWardrobeRepository(dbFrom(c)).GetItem(ctx, user.ID, id)
		if err != nil {
			return serviceError(c, err, "item")
		}
		laundry.Recompute(&item, laundry.ForUser(m.Thresholds, user))
		return c.JSON(http.StatusOK, echo.Map{"item": m.out(ctx, item, time.Now())})
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		in := new(models.ClothingItemUpdateIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		th := laundry.ForUser(m.Thresholds, user)
		ctx := c.Request().Context()
		item, err := services.NewWardrobeRepository(dbFrom(c)).UpdateItem(ctx, user.ID, id, func(item *models.ClothingItem) error {
			applyItemUpdate(item, in)
			// a type or fabric change moves the threshold
			laundry.Recompute(item, th)
			return nil
		})
		if err != nil {
			return serviceError(c, err, "item")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Item updated successfully",
			"item":    m.out(ctx, item, time.Now()),
		})
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		if err := services.NewWardrobeRepository(dbFrom(c)).DeleteItem(c.Request().Context(), user.ID, id); err != nil {
			return serviceError(c, err, "item")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted successfully"})
	})

	g.POST("/:id/toggle-status", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		item, err := services.NewWardrobeRepository(dbFrom(c)).ToggleItem(ctx, user.ID, id, time.Now())
		if err != nil {
			return serviceError(c, err, "item")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Item status changed to " + string(item.LaundryState),
			"item":    m.out(ctx, item, time.Now()),
		})
	})

	g.GET("/:id/wash-recommendation", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		item, err := services.NewWardrobeRepository(dbFrom(c)).GetItem(c.Request().Context(), user.ID, id)
		if err != nil {
			return serviceError(c, err, "item")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"item_id":        item.ID,
			"recommendation": laundry.Recommend(item, laundry.ForUser(m.Thresholds, user)),
		})
	})

	g.POST("/:id/image-upload-url", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		in := new(models.ImageUploadIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))
		if _, err := repo.GetItem(ctx, user.ID, id); err != nil {
			return serviceError(c, err, "item")
		}
		key, err := services.ItemImageKey(user.ID, in.FileName)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		uploadURL, err := m.AWSService.PresignLink(ctx, m.BucketName, key)
		if err != nil {
			return serviceError(c, err, "upload url")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"upload_url": uploadURL,
			"object_key": key,
		})
	})

	g.PUT("/:id/image-uploaded", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		type uploadedIn struct {
			ObjectKey string `json:"object_key" validate:"required,max=1000"`
		}
		in := new(uploadedIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		item, err := services.NewWardrobeRepository(dbFrom(c)).UpdateItem(ctx, user.ID, id, func(item *models.ClothingItem) error {
			item.ImageURL = services.StrPointer(in.ObjectKey)
			item.ImageStatus = models.ImageStatusUploaded
			return nil
		})
		if err != nil {
			return serviceError(c, err, "item")
		}
		if client := taskClient(c); client != nil {
			task, err := tasks.NewProcessImageTask(user.ID, item.ID)
			if err == nil {
				_, err = client.Enqueue(task, asynq.MaxRetry(3), asynq.Queue(tasks.QueueImages))
			}
			if err != nil {
				logger.L().Error("failed to enqueue image processing", "item_id", item.ID, "error", err)
				sentry.CaptureException(err)
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"item": m.out(ctx, item, time.Now())})
	})
}

func applyItemUpdate(item *models.ClothingItem, in *models.ClothingItemUpdateIn) {
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Type != nil {
		item.Type = languageutil.Canonical(*in.Type)
	}
	if in.Style != nil {
		item.Style = languageutil.Canonical(*in.Style)
	}
	if in.Color != nil {
		item.Color = languageutil.Canonical(*in.Color)
	}
	if in.Season != nil {
		item.Season = canonicalSeason(*in.Season)
	}
	if in.Fabric != nil {
		item.Fabric = languageutil.Canonical(*in.Fabric)
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.MoodTags != nil {
		item.MoodTags = languageutil.CanonicalTags(*in.MoodTags)
	}
	if in.CustomTags != nil {
		item.CustomTags = languageutil.CanonicalTags(*in.CustomTags)
	}
	if in.PurchaseCost != nil {
		item.PurchaseCost = in.PurchaseCost
	}
	if in.DryCleanOnly != nil {
		item.DryCleanOnly = *in.DryCleanOnly
	}
}

package controllers

import (
	"net/http"

	"wewearapi/languageutil"
	"wewearapi/services"
	"wewearapi/style"

	"github.com/labstack/echo/v4"
)

type StyleController struct {
	Palette style.Palette
}

func (m *StyleController) StyleRoutes(g *echo.Group) {
	// Style DNA over the whole wardrobe and every saved outfit.
	g.GET("/dna", func(c echo.Context) error {
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))

		items, err := repo.ListItems(ctx, user.ID)
		if err != nil {
			return serviceError(c, err, "items")
		}
		outfits, err := repo.AllOutfits(ctx, user.ID)
		if err != nil {
			return serviceError(c, err, "outfits")
		}
		history, err := repo.HistoryEntries(ctx, user.ID, outfits)
		if err != nil {
			return serviceError(c, err, "history")
		}
		mood := languageutil.Canonical(c.QueryParam("mood"))
		return c.JSON(http.StatusOK, echo.Map{
			"style_profile": m.Palette.BuildProfile(items, history, mood),
			"total_items":   len(items),
			"total_outfits":  len(outfits),
		})
	})
}

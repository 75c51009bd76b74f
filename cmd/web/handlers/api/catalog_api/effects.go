package catalog_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/internal/effects"
)

type effectsResponse struct {
	Effects          []effects.Spec            `json:"effects"`
	SketchVariations []effects.SketchVariation `json:"sketch_variations"`
}

// HandleEffects lists the effects and sketch variation presets.
func HandleEffects() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, effectsResponse{
			Effects:          effects.Specs(),
			SketchVariations: effects.SketchVariations,
		})
	}
}

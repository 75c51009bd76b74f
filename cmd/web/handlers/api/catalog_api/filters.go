// package catalog_api serves the static editor catalogues: filter controls,
// effects and keyboard shortcuts.
package catalog_api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
)

type filtersResponse struct {
	Filters     []filters.FilterParam `json:"filters"`
	Defaults    filters.State         `json:"defaults"`
	CropPresets []string              `json:"crop_presets"`
}

// HandleFilters returns the slider definitions of every adjustment filter.
func HandleFilters() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, filtersResponse{
			Filters:     filters.Defs(),
			Defaults:    filters.Defaults(),
			CropPresets: crops.Presets,
		})
	}
}

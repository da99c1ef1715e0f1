package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tripwise/internal/models/request_models"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

type MapController struct {
	mapService services.MapServiceInterface
}

func NewMapController(mapService services.MapServiceInterface) *MapController {
	return &MapController{mapService: mapService}
}

// Geocode godoc
// @Summary Address to coordinates
// @Tags Map
// @Produce json
// @Param address query string true "Address or place name"
// @Param city query string false "City to search in"
// @Success 200 {object} utils.APIResponse{data=response_models.GeocodeResult}
// @Failure 502 {object} utils.APIResponse
// @Router /map/geocode [get]
func (m *MapController) Geocode(c *gin.Context) {
	var query request_models.GeocodeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "address is required")
		return
	}

	result, err := m.mapService.Geocode(c.Request.Context(), query.Address, query.City)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

// Search godoc
// @Summary Search points of interest
// @Tags Map
// @Produce json
// @Param keywords query string true "Keywords"
// @Param city query string false "City"
// @Success 200 {object} utils.APIResponse{data=[]response_models.Place}
// @Router /map/search [get]
func (m *MapController) Search(c *gin.Context) {
	var query request_models.PlaceSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "keywords are required")
		return
	}

	places, err := m.mapService.SearchPlaces(c.Request.Context(), query.Keywords, query.City)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, places, "")
}

// Route godoc
// @Summary Plan a route
// @Tags Map
// @Produce json
// @Param origin query string true "lng,lat or address"
// @Param destination query string true "lng,lat or address"
// @Param mode query string false "driving, walking or transit" default(driving)
// @Param city query string false "City; required for transit"
// @Success 200 {object} utils.APIResponse{data=response_models.Route}
// @Router /map/route [get]
func (m *MapController) Route(c *gin.Context) {
	var query request_models.RouteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "origin and destination are required; mode must be driving, walking or transit")
		return
	}

	route, err := m.mapService.Route(c.Request.Context(), query.Origin, query.Destination, query.Mode, query.City)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, route, "")
}

// Weather godoc
// @Summary Current weather
// @Tags Map
// @Produce json
// @Param city query string true "City name or adcode"
// @Success 200 {object} utils.APIResponse{data=response_models.Weather}
// @Router /map/weather [get]
func (m *MapController) Weather(c *gin.Context) {
	var query request_models.WeatherQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "city is required")
		return
	}

	weather, err := m.mapService.Weather(c.Request.Context(), query.City)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, weather, "")
}

// StaticMap godoc
// @Summary Static map image
// @Tags Map
// @Produce image/png
// @Param location query string true "Center as lng,lat or address"
// @Param markers query string false "Amap markers expression"
// @Param zoom query int false "1-17" default(13)
// @Param size query string false "width*height" default(750*400)
// @Success 200 {file} file
// @Router /map/staticmap [get]
func (m *MapController) StaticMap(c *gin.Context) {
	var query request_models.StaticMapQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "location is required; zoom must be 1-17")
		return
	}

	data, contentType, err := m.mapService.StaticMap(c.Request.Context(), query.Location, query.Markers, query.Zoom, query.Size)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}

package controllers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"tripwise/internal/models/request_models"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

type ItineraryController struct {
	itineraryService services.ItineraryServiceInterface
	exportService    services.ExportServiceInterface
}

func NewItineraryController(itineraryService services.ItineraryServiceInterface, exportService services.ExportServiceInterface) *ItineraryController {
	return &ItineraryController{
		itineraryService: itineraryService,
		exportService:    exportService,
	}
}

// Generate godoc
// @Summary Generate an itinerary
// @Description Ask the language model for a day-by-day plan. Anonymous callers are allowed; the route is rate limited.
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.GenerateItineraryRequest true "Trip form"
// @Success 200 {object} utils.APIResponse{data=itinerary.Document}
// @Failure 400 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /itinerary/generate [post]
func (i *ItineraryController) Generate(c *gin.Context) {
	var req request_models.GenerateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	doc, err := i.itineraryService.Generate(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, doc, "Itinerary generated")
}

// Save godoc
// @Summary Save an itinerary
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.SaveItineraryRequest true "Itinerary envelope"
// @Success 201 {object} utils.APIResponse{data=itinerary.Record}
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itinerary/save [post]
func (i *ItineraryController) Save(c *gin.Context) {
	var req request_models.SaveItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	record, err := i.itineraryService.Save(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, record, "Itinerary saved")
}

// List godoc
// @Summary List my itineraries
// @Description Newest first
// @Tags Itinerary
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]itinerary.Record}
// @Security BearerAuth
// @Router /itinerary/list [get]
func (i *ItineraryController) List(c *gin.Context) {
	records, err := i.itineraryService.List(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, records, "")
}

// Get godoc
// @Summary Get an itinerary
// @Description Anyone holding the id can read it; this is the share link.
// @Tags Itinerary
// @Produce json
// @Param id path string true "Itinerary ID"
// @Success 200 {object} utils.APIResponse{data=itinerary.Record}
// @Failure 404 {object} utils.APIResponse
// @Router /itinerary/{id} [get]
func (i *ItineraryController) Get(c *gin.Context) {
	record, err := i.itineraryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, record, "")
}

// Update godoc
// @Summary Replace an itinerary
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID"
// @Param request body request_models.SaveItineraryRequest true "Itinerary envelope"
// @Success 200 {object} utils.APIResponse{data=itinerary.Record}
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itinerary/{id} [put]
func (i *ItineraryController) Update(c *gin.Context) {
	var req request_models.SaveItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	record, err := i.itineraryService.Update(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, record, "Itinerary updated")
}

// Delete godoc
// @Summary Delete an itinerary
// @Tags Itinerary
// @Produce json
// @Param id path string true "Itinerary ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itinerary/{id} [delete]
func (i *ItineraryController) Delete(c *gin.Context) {
	if err := i.itineraryService.Delete(c.Request.Context(), utils.CurrentUserID(c), c.Param("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Itinerary deleted")
}

// Similar godoc
// @Summary Similar itineraries
// @Description The caller's other itineraries ranked by embedding similarity
// @Tags Itinerary
// @Produce json
// @Param id path string true "Itinerary ID"
// @Param limit query int false "Maximum results" default(5)
// @Success 200 {object} utils.APIResponse{data=[]response_models.SimilarItinerary}
// @Security BearerAuth
// @Router /itinerary/{id}/similar [get]
func (i *ItineraryController) Similar(c *gin.Context) {
	var query request_models.SimilarItineraryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "limit must be between 1 and 20")
		return
	}

	similar, err := i.itineraryService.Similar(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), query.Limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, similar, "")
}

// ExportPDF godoc
// @Summary Download an itinerary as PDF
// @Tags Itinerary
// @Produce application/pdf
// @Param id path string true "Itinerary ID"
// @Success 200 {file} file
// @Failure 404 {object} utils.APIResponse
// @Router /itinerary/{id}/pdf [get]
func (i *ItineraryController) ExportPDF(c *gin.Context) {
	data, filename, err := i.exportService.ItineraryPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(http.StatusOK, "application/pdf", data)
}

package handler

import (
	"net/http"

	"contable/internal/middleware"
	"contable/internal/service"
	"contable/pkg/pagination"
	"contable/pkg/response"

	"github.com/gin-gonic/gin"
)

type ParameterHandler struct {
	paramService service.ParameterService
}

func NewParameterHandler(paramService service.ParameterService) *ParameterHandler {
	return &ParameterHandler{paramService: paramService}
}

// RegisterRoutes binds the fiscal parameter admin endpoints. Parameter tables
// drive everyone's calculations, so all routes are admin only.
func (h *ParameterHandler) RegisterRoutes(router *gin.RouterGroup) {
	params := router.Group("/fiscal-parameters")
	params.Use(middleware.RequireRole("admin"))
	{
		params.GET("", h.ListParameters)
		params.POST("", h.CreateParameter)
		params.PUT("/:id", h.UpdateParameter)
		params.DELETE("/:id", h.DeleteParameter)
	}
}

// ListParameters returns parameter versions ordered by effective_from DESC
// @Summary      List fiscal parameters
// @Tags         fiscal-parameters
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /fiscal-parameters [get]
func (h *ParameterHandler) ListParameters(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.paramService.ListParameters(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"parameters": items,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}

// CreateParameter registers a new versioned parameter table
// @Summary      Create fiscal parameter
// @Description  Registers a bracket table with an effective date range; the payload is validated before it is accepted
// @Tags         fiscal-parameters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateParameterRequest  true  "Parameter Payload"
// @Success      201      {object}  response.Response{data=service.ParameterResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /fiscal-parameters [post]
func (h *ParameterHandler) CreateParameter(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req service.CreateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	param, err := h.paramService.CreateParameter(c.Request.Context(), req, userID.String())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, param))
}

// UpdateParameter rewrites a parameter version
// @Summary      Update fiscal parameter
// @Tags         fiscal-parameters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Parameter ID"
// @Param        payload  body      service.UpdateParameterRequest  true  "Parameter Payload"
// @Success      200      {object}  response.Response{data=service.ParameterResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /fiscal-parameters/{id} [put]
func (h *ParameterHandler) UpdateParameter(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req service.UpdateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	param, err := h.paramService.UpdateParameter(c.Request.Context(), c.Param("id"), req, userID.String())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, param))
}

// DeleteParameter removes a parameter version
// @Summary      Delete fiscal parameter
// @Tags         fiscal-parameters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Parameter ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /fiscal-parameters/{id} [delete]
func (h *ParameterHandler) DeleteParameter(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.paramService.DeleteParameter(c.Request.Context(), c.Param("id"), userID.String()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Parameter deleted successfully"))
}

package handler

import (
	"net/http"
	"strconv"

	"contable/internal/middleware"
	"contable/internal/service"
	"contable/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeclarationHandler struct {
	reconService service.ReconciliationService
}

func NewDeclarationHandler(reconService service.ReconciliationService) *DeclarationHandler {
	return &DeclarationHandler{reconService: reconService}
}

func (h *DeclarationHandler) RegisterRoutes(router *gin.RouterGroup) {
	sat := router.Group("/sat-declarations")
	sat.Use(middleware.RequireRole("admin", "user"))
	{
		sat.POST("", h.UpsertSatDeclaration)
		sat.GET("", h.ListSatDeclarations)
	}

	router.GET("/reconciliation", middleware.RequireRole("admin", "user"), h.Reconcile)
}

// UpsertSatDeclaration records what was actually filed with SAT for a month
// @Summary      Enter SAT declaration
// @Description  Saves the figures filed with SAT for a period; re-entry replaces the previous figures
// @Tags         sat-declarations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SatDeclarationRequest  true  "Declared figures"
// @Success      200      {object}  response.Response{data=service.SatDeclarationResponse}
// @Failure      400      {object}  response.Response
// @Router       /sat-declarations [post]
func (h *DeclarationHandler) UpsertSatDeclaration(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.SatDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	decl, err := h.reconService.UpsertDeclaration(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, decl))
}

// ListSatDeclarations returns the SAT declarations entered for a year
// @Summary      List SAT declarations
// @Tags         sat-declarations
// @Produce      json
// @Security     BearerAuth
// @Param        year  query     int  false  "Fiscal year (default: current)"
// @Success      200   {object}  response.Response{data=[]service.SatDeclarationResponse}
// @Failure      400   {object}  response.Response
// @Router       /sat-declarations [get]
func (h *DeclarationHandler) ListSatDeclarations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	year, err := yearQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	decls, err := h.reconService.ListDeclarations(c.Request.Context(), userID, year)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, decls))
}

// Reconcile diffs the engine's figures against the filed SAT figures
// @Summary      Reconcile a period
// @Description  Compares stored calculation results against the SAT declaration for the month and classifies each discrepancy
// @Tags         sat-declarations
// @Produce      json
// @Security     BearerAuth
// @Param        year   query     int  true  "Fiscal year"
// @Param        month  query     int  true  "Month (1-12)"
// @Success      200    {object}  response.Response{data=service.ReconciliationReport}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /reconciliation [get]
func (h *DeclarationHandler) Reconcile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "year query param is required"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "month query param is required"))
		return
	}

	report, err := h.reconService.Reconcile(c.Request.Context(), userID, year, month)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"contable/internal/middleware"
	"contable/internal/service"
	"contable/pkg/response"

	"github.com/gin-gonic/gin"
)

type FiscalHandler struct {
	fiscalService service.FiscalService
	annualService service.AnnualService
}

func NewFiscalHandler(fiscalService service.FiscalService, annualService service.AnnualService) *FiscalHandler {
	return &FiscalHandler{fiscalService: fiscalService, annualService: annualService}
}

func (h *FiscalHandler) RegisterRoutes(router *gin.RouterGroup) {
	calcs := router.Group("/calculations")
	calcs.Use(middleware.RequireRole("admin", "user"))
	{
		calcs.POST("/monthly", h.CalculateMonthly)
		calcs.GET("", h.ListCalculations)
		calcs.PATCH("/:id/status", h.UpdateCalculationStatus)
		calcs.DELETE("/:id", h.DeleteCalculation)
	}

	annual := router.Group("/declarations/annual")
	annual.Use(middleware.RequireRole("admin", "user"))
	{
		annual.POST("", h.CalculateAnnual)
		annual.GET("", h.ListAnnualDeclarations)
		annual.POST("/:id/submit", h.SubmitAnnualDeclaration)
	}
}

// CalculateMonthly runs the monthly provisional ISR and definitive IVA for a period
// @Summary      Run monthly calculation
// @Description  Aggregates the ledger for the period and computes provisional ISR and definitive IVA, persisting both records
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.MonthlyCalculationRequest  true  "Period"
// @Success      200      {object}  response.Response{data=service.MonthlyCalculationResponse}
// @Failure      400      {object}  response.Response
// @Failure      412      {object}  response.Response
// @Router       /calculations/monthly [post]
func (h *FiscalHandler) CalculateMonthly(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.MonthlyCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.fiscalService.CalculateMonthly(c.Request.Context(), userID, req.Year, req.Month)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListCalculations returns the stored calculation records for a year
// @Summary      List calculation records
// @Tags         calculations
// @Produce      json
// @Security     BearerAuth
// @Param        year  query     int  false  "Fiscal year (default: current)"
// @Success      200   {object}  response.Response{data=[]service.CalculationRecordResponse}
// @Failure      400   {object}  response.Response
// @Router       /calculations [get]
func (h *FiscalHandler) ListCalculations(c *gin.Context) {
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

	records, err := h.fiscalService.ListCalculations(c.Request.Context(), userID, year)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, records))
}

// UpdateCalculationStatus moves a calculation record through its payment lifecycle
// @Summary      Update calculation status
// @Description  Transitions a record between calculated, pending, paid and overdue. Paid is terminal.
// @Tags         calculations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                  true  "Record ID"
// @Param        payload  body      service.UpdateCalculationStatusRequest  true  "New Status"
// @Success      200      {object}  response.Response{data=service.CalculationRecordResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /calculations/{id}/status [patch]
func (h *FiscalHandler) UpdateCalculationStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.UpdateCalculationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.fiscalService.UpdateCalculationStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// DeleteCalculation removes a stored calculation record
// @Summary      Delete calculation record
// @Tags         calculations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Record ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /calculations/{id} [delete]
func (h *FiscalHandler) DeleteCalculation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	if err := h.fiscalService.DeleteCalculation(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Calculation deleted successfully"))
}

// CalculateAnnual runs the annual ISR settlement
// @Summary      Run annual declaration
// @Description  Settles the year against the annual tariff, applying personal deductions and netting provisional payments
// @Tags         declarations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AnnualDeclarationRequest  true  "Year and personal deductions"
// @Success      200      {object}  response.Response{data=service.AnnualDeclarationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /declarations/annual [post]
func (h *FiscalHandler) CalculateAnnual(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.AnnualDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	decl, err := h.annualService.Calculate(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, decl))
}

// ListAnnualDeclarations returns the caller's annual declarations
// @Summary      List annual declarations
// @Tags         declarations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AnnualDeclarationResponse}
// @Router       /declarations/annual [get]
func (h *FiscalHandler) ListAnnualDeclarations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	decls, err := h.annualService.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, decls))
}

// SubmitAnnualDeclaration marks a declaration as filed
// @Summary      Submit annual declaration
// @Description  One-way transition to submitted; the declaration locks against recalculation
// @Tags         declarations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Declaration ID"
// @Success      200  {object}  response.Response{data=service.AnnualDeclarationResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /declarations/annual/{id}/submit [post]
func (h *FiscalHandler) SubmitAnnualDeclaration(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	decl, err := h.annualService.Submit(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, decl))
}

// yearQuery parses the year query param, defaulting to the current year.
func yearQuery(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return year, nil
}

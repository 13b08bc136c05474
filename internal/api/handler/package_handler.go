package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

// PackageHandler handles HTTP requests for tracked packages.
type PackageHandler struct {
	packages ports.PackageService
	refresh  ports.RefreshService
}

func NewPackageHandler(packages ports.PackageService, refresh ports.RefreshService) *PackageHandler {
	return &PackageHandler{packages: packages, refresh: refresh}
}

// --- Request / Response types ---

type createPackageRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,min=6,max=32"`
	Description    string `json:"description" validate:"max=200"`
}

type packageResponse struct {
	TrackingNumber    string `json:"tracking_number"`
	CourierService    string `json:"courier_service,omitempty"`
	Description       string `json:"description,omitempty"`
	CurrentStatus     string `json:"current_status"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type eventResponse struct {
	Location   string `json:"location,omitempty"`
	Details    string `json:"details"`
	OccurredAt string `json:"occurred_at,omitempty"`
}

type packageDetailResponse struct {
	packageResponse
	Events []eventResponse `json:"events"`
}

func toPackageResponse(p *domain.TrackedPackage) packageResponse {
	resp := packageResponse{
		TrackingNumber: p.TrackingNumber,
		CourierService: p.CourierService,
		Description:    p.Description,
		CurrentStatus:  p.CurrentStatus,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.EstimatedDelivery != nil {
		resp.EstimatedDelivery = p.EstimatedDelivery.UTC().Format(time.RFC3339)
	}
	return resp
}

// Create handles POST /v1/track.
//
// @Summary      Start tracking a shipment
// @Tags         packages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPackageRequest  true  "Tracking number and optional description"
// @Success      201   {object}  packageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/track [post]
func (h *PackageHandler) Create(c echo.Context) error {
	var req createPackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pkg, err := h.packages.CreatePackage(c.Request().Context(), ports.CreatePackageInput{
		TrackingNumber: req.TrackingNumber,
		Description:    req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toPackageResponse(pkg))
}

// Refresh handles GET /v1/track/:tracking_number, an on-demand refresh that
// polls every courier and returns the updated package with its history.
//
// @Summary      Refresh and fetch one package
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string  true  "Courier tracking number"
// @Success      200              {object}  packageDetailResponse
// @Failure      404              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Router       /v1/track/{tracking_number} [get]
func (h *PackageHandler) Refresh(c echo.Context) error {
	trackingNumber := c.Param("tracking_number")

	if _, err := h.refresh.RefreshPackage(c.Request().Context(), trackingNumber); err != nil {
		return err
	}

	pkg, history, err := h.packages.GetPackage(c.Request().Context(), trackingNumber)
	if err != nil {
		return err
	}

	events := make([]eventResponse, 0, len(history))
	for _, e := range history {
		ev := eventResponse{Location: e.Location, Details: e.Details}
		if e.OccurredAt != nil {
			ev.OccurredAt = e.OccurredAt.UTC().Format(time.RFC3339)
		}
		events = append(events, ev)
	}

	return c.JSON(http.StatusOK, packageDetailResponse{
		packageResponse: toPackageResponse(pkg),
		Events:          events,
	})
}

// List handles GET /v1/track.
//
// @Summary      List tracked packages
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        offset  query     int  false  "Rows to skip"     default(0)
// @Param        limit   query     int  false  "Max rows (≤100)"  default(10)
// @Success      200     {array}   packageResponse
// @Failure      500     {object}  map[string]string
// @Router       /v1/track [get]
func (h *PackageHandler) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	packages, err := h.packages.ListPackages(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	resp := make([]packageResponse, 0, len(packages))
	for _, p := range packages {
		resp = append(resp, toPackageResponse(p))
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /v1/track/:tracking_number.
//
// @Summary      Stop tracking a shipment
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string  true  "Courier tracking number"
// @Success      200              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Router       /v1/track/{tracking_number} [delete]
func (h *PackageHandler) Delete(c echo.Context) error {
	trackingNumber := c.Param("tracking_number")

	if err := h.packages.DeletePackage(c.Request().Context(), trackingNumber); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "package deleted"})
}

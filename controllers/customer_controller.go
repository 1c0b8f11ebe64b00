package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/services"
	"github.com/lexora/lexora_backend/utils"
)

type CustomerController struct {
	commission *services.CommissionService
	store      repositories.Store
	log        *zap.Logger
}

func NewCustomerController(commission *services.CommissionService, store repositories.Store, log *zap.Logger) *CustomerController {
	return &CustomerController{commission: commission, store: store, log: log.Named("customers")}
}

// RegisterCustomer handles POST /api/customers. The authenticated user is the salesman.
func (cc *CustomerController) RegisterCustomer(c echo.Context) error {
	var input models.CustomerInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := cc.commission.RegisterCustomer(c.Request().Context(), input, middleware.GetUserIDFromToken(c))
	if err != nil {
		return respondError(c, cc.log, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Customer registered and commissions distributed",
		Data:    result,
	})
}

// GetTokenBarcode handles GET /api/customers/:id/token-barcode?format=code128|qr.
// Only the selling salesman and back-office roles may fetch it.
func (cc *CustomerController) GetTokenBarcode(c echo.Context) error {
	customer, err := cc.store.GetCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, cc.log, err)
	}
	if customer.SalesmanID != middleware.GetUserIDFromToken(c) && !isDashboardRole(middleware.ExtractRole(c)) {
		return forbidden(c)
	}

	var png []byte
	switch c.QueryParam("format") {
	case "", "code128":
		width := 400
		if w, err := strconv.Atoi(c.QueryParam("width")); err == nil && w > 0 && w <= 2000 {
			width = w
		}
		png, err = utils.TokenBarcodePNG(customer.TokenSerial, width, width/4)
	case "qr":
		png, err = utils.TokenQRCodePNG(customer.TokenSerial, 300)
	default:
		return badRequest(c, "format must be code128 or qr")
	}
	if err != nil {
		return respondError(c, cc.log, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

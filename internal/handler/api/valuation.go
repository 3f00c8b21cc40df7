package api

import (
	"net/http"

	"FundVal/internal/domain/models"
	"FundVal/internal/usecase"
	pkghttp "FundVal/pkg/http"
	"FundVal/pkg/logger"
	"FundVal/pkg/util"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ValuationHandler exposes the valuation queries over HTTP.
type ValuationHandler struct {
	svc *usecase.ValuationService
	log *logger.Logger
}

func NewValuationHandler(svc *usecase.ValuationService, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{svc: svc, log: log}
}

// RegisterRoutes registers API routes.
func (h *ValuationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/api/pe", h.AveragePE)
	e.GET("/api/asset-valuation", h.AssetValuation)
}

func (h *ValuationHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// AveragePE handles GET /api/pe.
func (h *ValuationHandler) AveragePE(c echo.Context) error {
	var req models.PERequest
	if errs := pkghttp.ReadAndValidateRequest(c, &req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	opts, err := queryOptions(req.MarketCap, req.FilingDate)
	if err != nil {
		return pkghttp.BadRequestResponse(c, err.Error())
	}

	result, err := h.svc.AveragePE(c.Request().Context(), req.Ticker, opts...)
	if err != nil {
		h.log.Error("average pe query failed",
			logger.String("ticker", req.Ticker), logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	resp := models.PEResponse{Ticker: usecase.NormalizeTicker(req.Ticker)}
	if result != nil {
		resp.Available = true
		resp.PERatio = &result.PERatio
		resp.AverageIncome = &result.AverageIncome
	}
	return pkghttp.SuccessResponse(c, resp)
}

// AssetValuation handles GET /api/asset-valuation.
func (h *ValuationHandler) AssetValuation(c echo.Context) error {
	var req models.AssetValuationRequest
	if errs := pkghttp.ReadAndValidateRequest(c, &req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	opts, err := queryOptions(req.MarketCap, req.FilingDate)
	if err != nil {
		return pkghttp.BadRequestResponse(c, err.Error())
	}

	result, err := h.svc.AssetValuation(c.Request().Context(), req.Ticker, opts...)
	if err != nil {
		h.log.Error("asset valuation query failed",
			logger.String("ticker", req.Ticker), logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}

	resp := models.AssetValuationResponse{Ticker: usecase.NormalizeTicker(req.Ticker)}
	if result != nil {
		resp.Available = true
		resp.NTA = &result.NTA
		resp.NCAV = &result.NCAV
		resp.PNTA = result.PNTA
		resp.PNCAV = result.PNCAV
	}
	return pkghttp.SuccessResponse(c, resp)
}

func queryOptions(marketCap, filingDate string) ([]usecase.QueryOption, error) {
	var opts []usecase.QueryOption

	if marketCap != "" {
		cap, err := decimal.NewFromString(marketCap)
		if err != nil {
			return nil, pkghttp.BadRequestError("market_cap must be a number")
		}
		opts = append(opts, usecase.WithMarketCap(cap))
	}
	if filingDate != "" {
		d, ok := util.ParseISODate(filingDate)
		if !ok {
			return nil, pkghttp.BadRequestError("filing_date must be YYYY-MM-DD")
		}
		opts = append(opts, usecase.WithFilingDate(d))
	}
	return opts, nil
}

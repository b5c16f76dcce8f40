package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core/fee"
)

type feeApi struct {
	app *apps.App
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, app *apps.App) {
	api := feeApi{app: app}

	fg := g.Group("/fees", jwt)
	fg.GET("", api.retrieve)
	fg.PUT("", api.update, adminMiddleware())
	fg.GET("/bus-stops", api.busStops)
	fg.GET("/suggest/:studentId", api.suggest)
}

// Handlers

func (api *feeApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.app.Fees.Config())
}

func (api *feeApi) update(ctx echo.Context) error {
	var data fee.ConfigUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfigUpdate")
	}
	if err := api.app.Fees.Update(data); err != nil {
		return errors.Wrap(err, "updating fees")
	}
	return ctx.JSON(http.StatusOK, api.app.Fees.Config())
}

func (api *feeApi) busStops(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.app.Fees.BusStopNames())
}

func (api *feeApi) suggest(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	stu, err := api.app.Students.Get(ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	if !usr.CanAccess(stu.Class, stu.Division) {
		return errHttpNotFound
	}

	devFee, busFee, err := api.app.SuggestFees(stu.ID)
	if err != nil {
		return errors.Wrap(err, "suggesting fees")
	}
	return ctx.JSON(http.StatusOK, FeeSuggestion{DevelopmentFee: devFee, BusFee: busFee})
}

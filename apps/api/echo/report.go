package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core/report"
)

type reportApi struct {
	app *apps.App
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, app *apps.App) {
	api := reportApi{app: app}

	rg := g.Group("/reports", jwt)
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/"+report.ClassWiseReport, api.classWise, adminMiddleware())
	rg.GET("/"+report.BusStopReport, api.busStop, adminMiddleware())
	rg.GET("/"+report.MonthlyReport, api.monthly, adminMiddleware())
}

// Handlers

func (api *reportApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, api.app.Dashboard(usr))
}

func (api *reportApi) classWise(ctx echo.Context) error {
	rep := report.ByClassDivision(api.app.Students.All(), api.app.Payments.All())
	if wantsCSV(ctx) {
		return csvAttachment(ctx, report.ReportFileName(report.ClassWiseReport, api.app.Now()), report.ClassDivisionCSV(rep))
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) busStop(ctx echo.Context) error {
	rep := report.ByBusStop(api.app.Students.All())
	if wantsCSV(ctx) {
		return csvAttachment(ctx, report.ReportFileName(report.BusStopReport, api.app.Now()), report.BusStopCSV(rep))
	}
	return ctx.JSON(http.StatusOK, rep)
}

// monthly reports on `?month=YYYY-MM`, the current month by default.
func (api *reportApi) monthly(ctx echo.Context) error {
	now := api.app.Now()
	month := strings.TrimSpace(ctx.QueryParam("month"))
	if month == "" {
		month = now.Format("2006-01")
	}

	rep, err := report.ByMonth(api.app.Payments.All(), month, api.app.Conf.Location)
	if err != nil {
		return err
	}
	if wantsCSV(ctx) {
		return csvAttachment(ctx, report.MonthlyReportFileName(rep.Month, now), report.MonthlyCSV(rep))
	}
	return ctx.JSON(http.StatusOK, rep)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core/payment"
	"github.com/sarvodaya/feedesk/core/report"
	"github.com/sarvodaya/feedesk/core/student"
	"github.com/sarvodaya/feedesk/services/metrics"
)

var errPmtNotFoundInCtx = errors.New("payment object not found in echo.Context")

type paymentApi struct {
	app     *apps.App
	metrics *metricsvc.Metrics
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, app *apps.App, metrics *metricsvc.Metrics) {
	api := paymentApi{app: app, metrics: metrics}

	pg := g.Group("/payments", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.GET("/export.csv", api.export, adminMiddleware())

	// detail endpoints
	dg := pg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

// objectMiddleware loads the payment of the `id` path param into the context.
// Payments out of reach of the context user are reported as not found.
func (api *paymentApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		pmt, err := api.app.Payments.Get(ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == payment.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding payment by ID")
		}
		if !usr.CanAccess(pmt.Class, pmt.Division) {
			return errHttpNotFound
		}
		ctx.Set(objectContextKey, pmt)
		return next(ctx)
	}
}

// Handlers

func (api *paymentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}
	filter.Clean()
	return ctx.JSON(http.StatusOK, api.app.VisiblePayments(usr, *filter))
}

func (api *paymentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	data.AddedBy = usr.Username
	if err := data.Validate(); err != nil {
		return err
	}

	if !usr.IsAdmin() {
		// teachers only collect fees of known students of their class-division,
		// whose class & division are then copied from the student record
		stu, err := api.app.Students.Get(data.StudentID)
		if err != nil && errors.Cause(err) != student.ErrNotFound {
			return errors.Wrap(err, "finding student by ID")
		}
		if err != nil || !usr.CanAccess(stu.Class, stu.Division) {
			return errHttpForbidden
		}
		data.Class, data.Division = "", ""
	}

	pmt, err := api.app.Payments.Add(data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	if api.metrics != nil {
		api.metrics.PaymentRecorded(pmt.TotalAmount)
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *paymentApi) export(ctx echo.Context) error {
	payments := api.app.Payments.All()
	return csvAttachment(
		ctx,
		report.AllPaymentsFileName(api.app.Now()),
		report.PaymentsCSV(payments, api.app.Conf.Location),
	)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	pmt, ok := ctx.Get(objectContextKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errPmtNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) update(ctx echo.Context) error {
	pmt, ok := ctx.Get(objectContextKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errPmtNotFoundInCtx, "retrieving object from context")
	}

	var data payment.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := api.app.Payments.Update(pmt.ID, data); err != nil {
		return errors.Wrap(err, "updating payment")
	}

	pmt, err := api.app.Payments.Get(pmt.ID)
	if err != nil {
		return errors.Wrap(err, "finding payment by ID")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	pmt, ok := ctx.Get(objectContextKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errPmtNotFoundInCtx, "retrieving object from context")
	}
	if err := api.app.Payments.Delete(pmt.ID); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

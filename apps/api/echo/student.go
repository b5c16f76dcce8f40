package echoapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core/report"
	"github.com/sarvodaya/feedesk/core/student"
)

const objectContextKey = "object"

var errStuNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	app *apps.App
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, app *apps.App) {
	api := studentApi{app: app}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/import", api.importStudents, adminMiddleware())
	sg.GET("/export.csv", api.export, adminMiddleware())
	sg.GET("/sample.csv", api.sample)

	// detail endpoints
	dg := sg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// objectMiddleware loads the student of the `id` path param into the context.
// Students out of reach of the context user are reported as not found.
func (api *studentApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		stu, err := api.app.Students.Get(ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding student by ID")
		}
		if !usr.CanAccess(stu.Class, stu.Division) {
			return errHttpNotFound
		}
		ctx.Set(objectContextKey, stu)
		return next(ctx)
	}
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	return ctx.JSON(http.StatusOK, api.app.VisibleStudents(usr, *filter))
}

func (api *studentApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	// teachers only enroll into their own class-division
	if !usr.CanAccess(data.Class, data.Division) {
		return errHttpForbidden
	}

	stu, err := api.app.Students.Add(data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

// importStudents accepts either an import CSV file (Content-Type: text/csv) or a JSON list of students.
func (api *studentApi) importStudents(ctx echo.Context) error {
	var students []student.Student

	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), "text/csv") {
		content, err := io.ReadAll(ctx.Request().Body)
		if err != nil {
			return errors.Wrap(err, "reading import file")
		}
		if students, err = api.app.ImportStudentsCSV(string(content)); err != nil {
			return errors.Wrap(err, "importing students")
		}
	} else {
		var data []student.NewStudent
		if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "a list of students is expected").SetInternal(err)
		}
		var err error
		if students, err = api.app.Students.Import(data); err != nil {
			return errors.Wrap(err, "importing students")
		}
	}
	return ctx.JSON(http.StatusCreated, students)
}

func (api *studentApi) export(ctx echo.Context) error {
	class := strings.TrimSpace(ctx.QueryParam("class"))
	now := api.app.Now()

	fileName := report.AllStudentsFileName(now)
	if class != "" {
		fileName = report.ClassStudentsFileName(class, now)
	}
	students := api.app.Students.Filter(student.QueryFilter{Class: class})
	return csvAttachment(ctx, fileName, report.StudentsCSV(students))
}

func (api *studentApi) sample(ctx echo.Context) error {
	return csvAttachment(ctx, report.SampleFileName, report.SampleCSV())
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, ok := ctx.Get(objectContextKey).(student.Student)
	if !ok {
		return errors.Wrap(errStuNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	stu, ok := ctx.Get(objectContextKey).(student.Student)
	if !ok {
		return errors.Wrap(errStuNotFoundInCtx, "retrieving object from context")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	// teachers cannot move a student out of their class-division
	class, division := stu.Class, stu.Division
	if data.Class != nil {
		class = *data.Class
	}
	if data.Division != nil {
		division = *data.Division
	}
	if !usr.CanAccess(class, division) {
		return errHttpForbidden
	}

	if err := api.app.Students.Update(stu.ID, data); err != nil {
		return errors.Wrap(err, "updating student")
	}
	stu, err = api.app.Students.Get(stu.ID)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	stu, ok := ctx.Get(objectContextKey).(student.Student)
	if !ok {
		return errors.Wrap(errStuNotFoundInCtx, "retrieving object from context")
	}
	if err := api.app.Students.Delete(stu.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

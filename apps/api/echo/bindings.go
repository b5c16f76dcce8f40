package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sarvodaya/feedesk/core/user"
)

const (
	formatParam = "format"
	formatCSV   = "csv"
	mimeTextCSV = "text/csv; charset=UTF-8"
)

type (
	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	FeeSuggestion struct {
		DevelopmentFee int `json:"developmentFee"`
		BusFee         int `json:"busFee"`
	}
)

// wantsCSV reports whether the client asked for a CSV download, ie. `?format=csv`.
func wantsCSV(ctx echo.Context) bool {
	return ctx.QueryParam(formatParam) == formatCSV
}

// csvAttachment sends content as a CSV file download.
func csvAttachment(ctx echo.Context, fileName, content string) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return ctx.Blob(http.StatusOK, mimeTextCSV, []byte(content))
}

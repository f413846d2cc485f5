package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse returns a 200 response with the given payload.
func DataResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  http.StatusOK,
		Message: "OK",
		Data:    data,
	})
}

// SuccessResponse returns a 200 response with a message only.
func SuccessResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  http.StatusOK,
		Message: message,
	})
}

// CreatedResponse returns a 201 response with the given payload.
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, APIResponse{
		Status:  http.StatusCreated,
		Message: "Created",
		Data:    data,
	})
}

// BadRequestResponse returns a 400 response with validation errors.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return c.JSON(http.StatusBadRequest, APIResponse{
		Status:  http.StatusBadRequest,
		Message: "validation failed",
		Data:    errs,
	})
}

// NotFoundResponse returns a 404 response.
func NotFoundResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, APIResponse{
		Status:  http.StatusNotFound,
		Message: message,
	})
}

// ConflictResponse returns a 409 response.
func ConflictResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, APIResponse{
		Status:  http.StatusConflict,
		Message: message,
	})
}

// AppErrorResponse maps an AppError to its HTTP status.
func AppErrorResponse(c echo.Context, err *AppError) error {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: err.Message,
		Data: []ValidationError{{
			Code:    err.Code,
			Field:   err.Field,
			Message: err.Message,
			Params:  err.Params,
		}},
	})
}

// InternalServerErrorResponse returns a 500 response.
func InternalServerErrorResponse(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, APIResponse{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
	})
}

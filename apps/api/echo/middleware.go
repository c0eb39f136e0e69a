package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const objectKey = "object"

// objectMiddleware loads the object designated by the `:id` path param into the context,
// answering 404 when it does not exist.
func objectMiddleware(name string, get func(ctx context.Context, id string) (interface{}, error), notFound error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			obj, err := get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == notFound {
					return errHTTPNotFound
				}
				return errors.Wrap(err, "finding "+name+" by ID")
			}
			ctx.Set(objectKey, obj)
			return next(ctx)
		}
	}
}

package echoapi

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}

// parseDateParam parses an optional "YYYY-MM-DD" query param; an invalid value is a field error.
func parseDateParam(ctx echo.Context, name string) (civil.Date, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(val)
	if err != nil {
		return civil.Date{}, core.NewFieldError(name, "invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

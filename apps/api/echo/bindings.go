package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/hrms/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

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

// bindListOptions reads the ordering and paging query params. Bad numbers are ignored.
func bindListOptions(ctx echo.Context) core.ListOptions {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	var page core.Pagination
	page.Page, _ = strconv.Atoi(ctx.QueryParam(pageParam))
	page.PageSize, _ = strconv.Atoi(ctx.QueryParam(pageSizeParam))
	page.Clean()

	return core.ListOptions{Orderings: ordering.Orderings, Page: page}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	QRResponse struct {
		EmployeeID string `json:"employee_id"`
		Token      string `json:"token"`
		ExpiresIn  int    `json:"expires_in"` // seconds
	}

	SweepRequest struct {
		Date core.Date `json:"date"`
	}
)

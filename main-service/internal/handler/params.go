package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/pkg/datetime"
	"github.com/labstack/echo/v4"
)

const defaultPageSize = 10

type validatable interface {
	Validate() error
}

// bindValid decodes the body into req and runs its Validate method.
func bindValid(c echo.Context, req validatable) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(id), nil
}

func queryID(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", name))
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(id), nil
}

// pagination reads from (default 0) and size (default 10).
func pagination(c echo.Context) (from, size int, err error) {
	from, size = 0, defaultPageSize
	if raw := c.QueryParam("from"); raw != "" {
		if from, err = strconv.Atoi(raw); err != nil || from < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "from must be a non-negative integer")
		}
	}
	if raw := c.QueryParam("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size <= 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "size must be a positive integer")
		}
	}
	return from, size, nil
}

// queryValues accepts both repeated parameters and comma separated lists.
func queryValues(c echo.Context, name string) []string {
	var out []string
	for _, v := range c.QueryParams()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryIDs(c echo.Context, name string) ([]uint, error) {
	values := queryValues(c, name)
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s value %q", name, v))
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := datetime.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must match %q", name, datetime.Layout))
	}
	return &t, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return &b, nil
}

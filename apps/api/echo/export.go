package echoapi

import (
	"bytes"
	"mime"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	exportsvc "github.com/trezcool/hrms/services/export"
)

const formatParam = "format"

func bindExportFormat(ctx echo.Context) (exportsvc.Format, error) {
	return exportsvc.ParseFormat(ctx.QueryParam(formatParam))
}

// sendTable writes tbl as an attachment in format f and records the export.
func (d *Deps) sendTable(ctx echo.Context, tbl core.Table, f exportsvc.Format) error {
	var buf bytes.Buffer
	if err := exportsvc.Write(&buf, tbl, f); err != nil {
		return errors.Wrap(err, "writing export")
	}

	name := exportsvc.Filename(tbl, f, time.Now().In(d.Conf.Location()))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	d.record(ctx, activity.ActionExport, tbl.Name, "", name)
	return ctx.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}

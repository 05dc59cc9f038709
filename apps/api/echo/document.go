package echoapi

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/document"
)

const fileField = "file"

var errDocNotFoundInCtx = errors.New("document not found in echo.Context")

type documentApi struct {
	*Deps
}

func registerDocumentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := documentApi{Deps: deps}

	dg := g.Group("/documents", jwt)
	dg.GET("", api.query)
	dg.POST("", api.upload)

	// detail endpoints
	og := dg.Group("/:id", api.visibleDocumentMiddleware())
	og.GET("", api.retrieve)
	og.GET("/download", api.download)
	og.DELETE("", api.destroy, staffMiddleware())
}

func (api *documentApi) visibleDocumentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			doc, err := api.DocumentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "getting document")
			}
			vis, err := api.ownVisibility(ctx)
			if err != nil {
				return err
			}
			if !vis.Allows(doc.EmployeeID, nil) {
				return errHttpNotFound
			}
			ctx.Set(contextObjectKey, doc)
			return next(ctx)
		}
	}
}

func contextDocument(ctx echo.Context) (document.Document, error) {
	doc, ok := ctx.Get(contextObjectKey).(document.Document)
	if !ok {
		return document.Document{}, errors.Wrap(errDocNotFoundInCtx, "retrieving object from context")
	}
	return doc, nil
}

func (api *documentApi) query(ctx echo.Context) error {
	var filter document.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return core.NewValidationError(err)
	}
	vis, err := api.ownVisibility(ctx)
	if err != nil {
		return err
	}
	filter.Visibility = vis

	docs, err := api.DocumentSvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

// upload stores a multipart `file` for `employee_id`.
// Non-staff may only upload for themselves, and it is the default employee.
func (api *documentApi) upload(ctx echo.Context) error {
	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	usr, err := api.currentUser(ctx)
	if err != nil {
		return err
	}

	if !usr.IsStaff() || data.EmployeeID == "" {
		emp, ok, err := api.currentEmployee(ctx)
		if err != nil {
			return err
		}
		switch {
		case data.EmployeeID == "" && ok:
			data.EmployeeID = emp.ID
		case data.EmployeeID == "" && !usr.IsStaff():
			return errNoEmployeeRecord
		case data.EmployeeID != "" && (!ok || data.EmployeeID != emp.ID):
			return errHttpForbidden
		}
	}

	up := document.Upload{Size: -1}
	fh, err := ctx.FormFile(fileField)
	switch err {
	case nil:
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer f.Close()
		up.Filename, up.Size, up.Content = fh.Filename, fh.Size, f
	case http.ErrMissingFile:
	default:
		return core.NewValidationError(err, core.FieldError{Field: fileField, Error: err.Error()})
	}

	doc, err := api.DocumentSvc.Upload(ctx.Request().Context(), data, up, usr.ID)
	if err != nil {
		return errors.Wrap(err, "uploading document")
	}
	api.record(ctx, activity.ActionUpload, "document", doc.ID, doc.FileName)
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentApi) retrieve(ctx echo.Context) error {
	doc, err := contextDocument(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) download(ctx echo.Context) error {
	doc, err := contextDocument(ctx)
	if err != nil {
		return err
	}
	rc, err := api.DocumentSvc.Open(ctx.Request().Context(), doc)
	if err != nil {
		return errors.Wrap(err, "opening document")
	}
	defer rc.Close()

	api.record(ctx, activity.ActionDownload, "document", doc.ID, doc.FileName)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	return ctx.Stream(http.StatusOK, doc.ContentType, rc)
}

func (api *documentApi) destroy(ctx echo.Context) error {
	doc, err := contextDocument(ctx)
	if err != nil {
		return err
	}
	if err := api.DocumentSvc.Delete(ctx.Request().Context(), doc); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	api.record(ctx, activity.ActionDelete, "document", doc.ID, doc.FileName)
	return ctx.NoContent(http.StatusNoContent)
}

package document

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
)

var (
	// errors
	ErrNotFound        = errors.New("document not found")
	ErrFileRequired    = errors.New("a file is required")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrFileTypeRefused = errors.New("file type is not allowed")
)

type (
	Repository interface {
		CreateDocument(ctx context.Context, doc Document) (Document, error)
		GetDocumentByID(ctx context.Context, id string) (Document, error)
		FilterDocuments(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Document, error)
		DeleteDocument(ctx context.Context, id string) error
	}

	// FileStore keeps the uploaded files.
	FileStore interface {
		// Save writes r to dir/name and returns the stored path and the number of bytes written.
		Save(ctx context.Context, dir, name string, r io.Reader) (string, int64, error)
		Open(ctx context.Context, path string) (io.ReadCloser, error)
		Remove(ctx context.Context, path string) error
	}

	EmployeeGetter interface {
		GetByID(ctx context.Context, id string) (employee.Employee, error)
	}

	Service struct {
		repo      Repository
		store     FileStore
		employees EmployeeGetter
		validate  *validator.Validate
		logger    core.Logger
		maxSize   int64
	}
)

func NewService(repo Repository, store FileStore, employees EmployeeGetter, validate *validator.Validate, logger core.Logger, maxSize int64) *Service {
	return &Service{repo: repo, store: store, employees: employees, validate: validate, logger: logger, maxSize: maxSize}
}

// Upload is an uploaded file.
type Upload struct {
	Filename string
	Size     int64 // as announced by the client, -1 if unknown
	Content  io.Reader
}

// Upload checks and stores a file for an employee, then records it.
func (svc *Service) Upload(ctx context.Context, nd NewDocument, up Upload, uploadedBy string) (Document, error) {
	nd.Clean()
	if err := svc.validate.Struct(nd); err != nil {
		return Document{}, err
	}
	if up.Content == nil {
		return Document{}, core.NewValidationError(ErrFileRequired, core.FieldError{Field: "file", Error: ErrFileRequired.Error()})
	}
	if up.Size > svc.maxSize {
		return Document{}, svc.tooLarge()
	}
	if _, err := svc.employees.GetByID(ctx, nd.EmployeeID); err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return Document{}, core.NewValidationError(err, core.FieldError{Field: "employee_id", Error: err.Error()})
		}
		return Document{}, errors.Wrap(err, "getting employee")
	}

	reader := bufio.NewReaderSize(io.LimitReader(up.Content, svc.maxSize+1), sniffLen)
	head, err := reader.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Document{}, errors.Wrap(err, "reading upload")
	}
	if len(head) == 0 {
		return Document{}, core.NewValidationError(ErrFileRequired, core.FieldError{Field: "file", Error: ErrFileRequired.Error()})
	}
	contentType, ext, ok := detectContentType(head, up.Filename)
	if !ok {
		return Document{}, core.NewValidationError(ErrFileTypeRefused, core.FieldError{Field: "file", Error: ErrFileTypeRefused.Error()})
	}

	path, size, err := svc.store.Save(ctx, nd.EmployeeID, uuid.NewString()+ext, reader)
	if err != nil {
		return Document{}, errors.Wrap(err, "storing file")
	}
	if size > svc.maxSize {
		svc.removeFile(ctx, path)
		return Document{}, svc.tooLarge()
	}

	doc, err := svc.repo.CreateDocument(ctx, Document{
		ID:          uuid.NewString(),
		EmployeeID:  nd.EmployeeID,
		Title:       nd.Title,
		Category:    Category(nd.Category),
		FileName:    filepath.Base(up.Filename),
		ContentType: contentType,
		Size:        size,
		StoragePath: path,
		UploadedBy:  core.StringPtr(uploadedBy),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		svc.removeFile(ctx, path)
		return Document{}, err
	}
	return doc, nil
}

func (svc *Service) tooLarge() error {
	msg := fmt.Sprintf("%s (max %d bytes)", ErrFileTooLarge, svc.maxSize)
	return core.NewValidationError(ErrFileTooLarge, core.FieldError{Field: "file", Error: msg})
}

func (svc *Service) removeFile(ctx context.Context, path string) {
	if err := svc.store.Remove(ctx, path); err != nil {
		svc.logger.Error(fmt.Sprintf("document: removing %s: %v", path, err), err)
	}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Document, error) {
	return svc.repo.GetDocumentByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Document, error) {
	filter.Clean()
	if filter.Visibility.IsEmpty() {
		return []Document{}, nil
	}
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterDocuments(ctx, filter, opts)
}

// Open returns the content of a document. The caller closes it.
func (svc *Service) Open(ctx context.Context, doc Document) (io.ReadCloser, error) {
	return svc.store.Open(ctx, doc.StoragePath)
}

// Delete removes the document row, then its file.
func (svc *Service) Delete(ctx context.Context, doc Document) error {
	if err := svc.repo.DeleteDocument(ctx, doc.ID); err != nil {
		return err
	}
	svc.removeFile(ctx, doc.StoragePath)
	return nil
}

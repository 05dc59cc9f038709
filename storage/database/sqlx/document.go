package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/document"
)

const documentColumns = "d.id, d.employee_id, d.title, d.category, d.file_name, d.content_type, d.size, d.storage_path, d.uploaded_by, d.created_at"

type documentRepository struct {
	exec sqlx.ExtContext
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(exec sqlx.ExtContext) *documentRepository {
	return &documentRepository{exec: exec}
}

func (repo documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO documents (id, employee_id, title, category, file_name, content_type, size, storage_path, uploaded_by, created_at)
		VALUES (:id, :employee_id, :title, :category, :file_name, :content_type, :size, :storage_path, :uploaded_by, :created_at)`, doc)
	if err != nil {
		return document.Document{}, errors.Wrap(err, "inserting document")
	}
	return doc, nil
}

func (repo documentRepository) GetDocumentByID(ctx context.Context, id string) (document.Document, error) {
	var doc document.Document
	err := sqlx.GetContext(ctx, repo.exec, &doc, `SELECT `+documentColumns+` FROM documents d WHERE d.id = $1`, id)
	if err != nil {
		return document.Document{}, trapNoRowsErr(err, document.ErrNotFound, "getting document")
	}
	return doc, nil
}

func (repo documentRepository) FilterDocuments(ctx context.Context, filter document.QueryFilter, opts core.ListOptions) ([]document.Document, error) {
	var w where
	w.visibility(filter.Visibility, "d.employee_id", "e.department_id")
	if filter.EmployeeID != "" {
		w.add("d.employee_id = ?", filter.EmployeeID)
	}
	if filter.Category != "" {
		w.add("d.category = ?", filter.Category)
	}
	for i, ord := range opts.Orderings {
		opts.Orderings[i].Field = "d." + ord.Field
	}
	var docs []document.Document
	err := selectList(ctx, repo.exec, &docs,
		"SELECT "+documentColumns+" FROM documents d JOIN employees e ON e.id = d.employee_id", w, opts, "d.created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "filtering documents")
	}
	return docs, nil
}

func (repo documentRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return mustAffect(res, err, document.ErrNotFound)
}

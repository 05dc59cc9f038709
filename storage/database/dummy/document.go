package dummydb

import (
	"context"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/document"
)

type documentRepository struct {
	db *DB
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) *documentRepository {
	return &documentRepository{db: db}
}

var documentComparers = comparers[document.Document]{
	"title":      func(a, b document.Document) int { return cmpStrings(a.Title, b.Title) },
	"category":   func(a, b document.Document) int { return cmpStrings(string(a.Category), string(b.Category)) },
	"size":       func(a, b document.Document) int { return cmpInts(int(a.Size), int(b.Size)) },
	"created_at": func(a, b document.Document) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func (repo *documentRepository) CreateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.documents[doc.ID] = doc
	return doc, nil
}

func (repo *documentRepository) GetDocumentByID(_ context.Context, id string) (document.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.documents[id]; ok {
		return doc, nil
	}
	return document.Document{}, document.ErrNotFound
}

func (repo *documentRepository) FilterDocuments(_ context.Context, qf document.QueryFilter, opts core.ListOptions) ([]document.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	docs := filter(values(repo.db.documents), func(doc document.Document) bool {
		_, _, deptID := repo.db.employeeInfo(doc.EmployeeID)
		if !qf.Visibility.Allows(doc.EmployeeID, deptID) {
			return false
		}
		if qf.EmployeeID != "" && doc.EmployeeID != qf.EmployeeID {
			return false
		}
		return qf.Category == "" || string(doc.Category) == qf.Category
	})
	return list(docs, opts, documentComparers, desc("created_at")), nil
}

func (repo *documentRepository) DeleteDocument(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.documents[id]; !ok {
		return document.ErrNotFound
	}
	delete(repo.db.documents, id)
	return nil
}

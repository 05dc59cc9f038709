package dummydb

import (
	"context"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/holiday"
)

type holidayRepository struct {
	db *DB
}

var _ holiday.Repository = (*holidayRepository)(nil) // interface compliance check

func NewHolidayRepository(db *DB) *holidayRepository {
	return &holidayRepository{db: db}
}

var holidayComparers = comparers[holiday.Holiday]{
	"date":       func(a, b holiday.Holiday) int { return cmpDates(a.Date, b.Date) },
	"name":       func(a, b holiday.Holiday) int { return cmpStrings(a.Name, b.Name) },
	"created_at": func(a, b holiday.Holiday) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func (repo *holidayRepository) dateTaken(h holiday.Holiday) bool {
	for _, o := range repo.db.holidays {
		if o.ID != h.ID && o.Date.Equal(h.Date) {
			return true
		}
	}
	return false
}

func (repo *holidayRepository) CreateHoliday(_ context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.dateTaken(h) {
		return holiday.Holiday{}, holiday.ErrDateExists
	}
	repo.db.holidays[h.ID] = h
	return h, nil
}

func (repo *holidayRepository) GetHolidayByID(_ context.Context, id string) (holiday.Holiday, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if h, ok := repo.db.holidays[id]; ok {
		return h, nil
	}
	return holiday.Holiday{}, holiday.ErrNotFound
}

func (repo *holidayRepository) GetHolidayByDate(_ context.Context, date core.Date) (holiday.Holiday, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, h := range repo.db.holidays {
		if h.Date.Equal(date) {
			return h, nil
		}
	}
	return holiday.Holiday{}, holiday.ErrNotFound
}

func (repo *holidayRepository) FilterHolidays(_ context.Context, qf holiday.QueryFilter, opts core.ListOptions) ([]holiday.Holiday, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	holidays := filter(values(repo.db.holidays), func(h holiday.Holiday) bool {
		return h.Date.Between(qf.DateFrom, qf.DateTo)
	})
	return list(holidays, opts, holidayComparers, asc("date")), nil
}

func (repo *holidayRepository) UpdateHoliday(_ context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.holidays[h.ID]; !ok {
		return holiday.Holiday{}, holiday.ErrNotFound
	}
	if repo.dateTaken(h) {
		return holiday.Holiday{}, holiday.ErrDateExists
	}
	repo.db.holidays[h.ID] = h
	return h, nil
}

func (repo *holidayRepository) DeleteHoliday(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.holidays[id]; !ok {
		return holiday.ErrNotFound
	}
	delete(repo.db.holidays, id)
	return nil
}

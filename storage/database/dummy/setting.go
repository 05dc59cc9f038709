package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/hrms/core/setting"
)

type settingRepository struct {
	db *DB
}

var _ setting.Repository = (*settingRepository)(nil) // interface compliance check

func NewSettingRepository(db *DB) *settingRepository {
	return &settingRepository{db: db}
}

func (repo *settingRepository) ListSettings(_ context.Context) ([]setting.Setting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	settings := values(repo.db.settings)
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

func (repo *settingRepository) GetSetting(_ context.Context, key string) (setting.Setting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.settings[key]; ok {
		return s, nil
	}
	return setting.Setting{}, setting.ErrNotFound
}

func (repo *settingRepository) UpsertSettings(_ context.Context, settings ...setting.Setting) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range settings {
		repo.db.settings[s.Key] = setting.Setting{Key: s.Key, Value: s.Value, UpdatedAt: s.UpdatedAt}
	}
	return nil
}

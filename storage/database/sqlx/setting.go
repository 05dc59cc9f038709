package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core/setting"
)

type settingRepository struct {
	exec sqlx.ExtContext
}

var _ setting.Repository = (*settingRepository)(nil) // interface compliance check

func NewSettingRepository(exec sqlx.ExtContext) *settingRepository {
	return &settingRepository{exec: exec}
}

func (repo settingRepository) ListSettings(ctx context.Context) ([]setting.Setting, error) {
	var settings []setting.Setting
	err := sqlx.SelectContext(ctx, repo.exec, &settings, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	return settings, errors.Wrap(err, "listing settings")
}

func (repo settingRepository) GetSetting(ctx context.Context, key string) (setting.Setting, error) {
	var s setting.Setting
	err := sqlx.GetContext(ctx, repo.exec, &s, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key)
	if err != nil {
		return setting.Setting{}, trapNoRowsErr(err, setting.ErrNotFound, "getting setting")
	}
	return s, nil
}

func (repo settingRepository) UpsertSettings(ctx context.Context, settings ...setting.Setting) error {
	for _, s := range settings {
		_, err := repo.exec.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			s.Key, s.Value, s.UpdatedAt,
		)
		if err != nil {
			return errors.Wrapf(err, "saving setting %s", s.Key)
		}
	}
	return nil
}

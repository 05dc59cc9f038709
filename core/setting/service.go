package setting

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
)

var (
	// errors
	ErrNotFound   = errors.New("setting not found")
	ErrUnknownKey = errors.New("unknown setting")
	ErrReadOnly   = errors.New("setting is read only")
)

type (
	Repository interface {
		ListSettings(ctx context.Context) ([]Setting, error)
		GetSetting(ctx context.Context, key string) (Setting, error)
		UpsertSettings(ctx context.Context, settings ...Setting) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every known setting, stored values overriding the defaults.
func (svc *Service) List(ctx context.Context) ([]Setting, error) {
	stored, err := svc.repo.ListSettings(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing settings")
	}
	byKey := make(map[string]Setting, len(stored))
	for _, s := range stored {
		byKey[s.Key] = s
	}

	settings := make([]Setting, 0, len(definitions))
	for _, def := range definitions {
		s := fromDefinition(def)
		if st, ok := byKey[def.Key]; ok {
			s.Value = st.Value
			s.UpdatedAt = st.UpdatedAt
		}
		settings = append(settings, s)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

func (svc *Service) Get(ctx context.Context, key string) (Setting, error) {
	def, ok := lookup(key)
	if !ok {
		return Setting{}, ErrNotFound
	}
	s := fromDefinition(def)
	st, err := svc.repo.GetSetting(ctx, key)
	switch errors.Cause(err) {
	case nil:
		s.Value = st.Value
		s.UpdatedAt = st.UpdatedAt
	case ErrNotFound:
	default:
		return Setting{}, errors.Wrap(err, "getting setting")
	}
	return s, nil
}

// Update validates and stores values keyed by setting key. Read only keys are rejected.
func (svc *Service) Update(ctx context.Context, values map[string]string) ([]Setting, error) {
	if len(values) == 0 {
		return svc.List(ctx)
	}

	now := time.Now().UTC()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var fldErrs []core.FieldError
	toSave := make([]Setting, 0, len(values))
	for _, key := range keys {
		def, ok := lookup(key)
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: key, Error: ErrUnknownKey.Error()})
			continue
		}
		if def.ReadOnly {
			fldErrs = append(fldErrs, core.FieldError{Field: key, Error: ErrReadOnly.Error()})
			continue
		}
		val, ok := normalize(def.Kind, values[key])
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: key, Error: kindErrors[def.Kind]})
			continue
		}
		toSave = append(toSave, Setting{Key: key, Value: val, UpdatedAt: now})
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}

	if err := svc.repo.UpsertSettings(ctx, toSave...); err != nil {
		return nil, errors.Wrap(err, "saving settings")
	}
	return svc.List(ctx)
}

// SetValue stores a value without the read only guard. It is meant for internal bookkeeping.
func (svc *Service) SetValue(ctx context.Context, key, value string) error {
	def, ok := lookup(key)
	if !ok {
		return ErrUnknownKey
	}
	val, ok := normalize(def.Kind, value)
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: key, Error: kindErrors[def.Kind]})
	}
	return svc.repo.UpsertSettings(ctx, Setting{Key: key, Value: val, UpdatedAt: time.Now().UTC()})
}

func (svc *Service) String(ctx context.Context, key string) (string, error) {
	s, err := svc.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

func (svc *Service) Int(ctx context.Context, key string) (int, error) {
	s, err := svc.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(s.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing setting %s", key)
	}
	return i, nil
}

func (svc *Service) Clock(ctx context.Context, key string) (hour, min int, err error) {
	s, err := svc.Get(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	hour, min, ok := core.ParseClock(s.Value)
	if !ok {
		return 0, 0, errors.Errorf("setting %s: invalid clock %q", key, s.Value)
	}
	return hour, min, nil
}

func (svc *Service) Weekdays(ctx context.Context, key string) ([]time.Weekday, error) {
	s, err := svc.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	days, ok := parseWeekdays(s.Value)
	if !ok {
		return nil, errors.Errorf("setting %s: invalid weekdays %q", key, s.Value)
	}
	return days, nil
}

func (svc *Service) IntList(ctx context.Context, key string) ([]int, error) {
	s, err := svc.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	ints, ok := parseIntList(s.Value)
	if !ok {
		return nil, errors.Errorf("setting %s: invalid list %q", key, s.Value)
	}
	return ints, nil
}

// Date returns the stored date, the zero Date when unset.
func (svc *Service) Date(ctx context.Context, key string) (core.Date, error) {
	s, err := svc.Get(ctx, key)
	if err != nil {
		return core.Date{}, err
	}
	if s.Value == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s.Value)
}

// IsWeekend reports whether date falls on one of the configured weekend days.
func (svc *Service) IsWeekend(ctx context.Context, date core.Date) (bool, error) {
	days, err := svc.Weekdays(ctx, WeekendDays)
	if err != nil {
		return false, err
	}
	for _, day := range days {
		if date.Weekday() == day {
			return true, nil
		}
	}
	return false, nil
}

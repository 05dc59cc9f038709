package setting

import (
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/hrms/core"
)

// Keys
const (
	InstitutionName   = "institution.name"
	WorkStart         = "attendance.work_start"
	WorkEnd           = "attendance.work_end"
	LateGraceMinutes  = "attendance.late_grace_minutes"
	HalfDayHours      = "attendance.half_day_hours"
	AbsentSweepTime   = "attendance.absent_sweep_time"
	WeekendDays       = "attendance.weekend_days"
	LastSweepDate     = "attendance.last_sweep_date"
	AnnualLeaveDays   = "leave.annual_days"
	SickLeaveDays     = "leave.sick_days"
	CasualLeaveDays   = "leave.casual_days"
	LoyaltyMilestones = "loyalty.milestones"
)

type Kind string

const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindClock    Kind = "clock"    // HH:MM
	KindWeekdays Kind = "weekdays" // comma separated weekday names
	KindIntList  Kind = "int_list" // comma separated positive integers
	KindDate     Kind = "date"     // YYYY-MM-DD
)

type Definition struct {
	Key         string
	Default     string
	Kind        Kind
	Description string
	ReadOnly    bool // not editable over the API
}

var definitions = []Definition{
	{Key: InstitutionName, Default: "", Kind: KindString, Description: "Name of the institution"},
	{Key: WorkStart, Default: "08:00", Kind: KindClock, Description: "Start of the working day"},
	{Key: WorkEnd, Default: "16:00", Kind: KindClock, Description: "End of the working day"},
	{Key: LateGraceMinutes, Default: "15", Kind: KindInt, Description: "Minutes after work start before a check-in counts as late"},
	{Key: HalfDayHours, Default: "4", Kind: KindInt, Description: "Worked hours under which a day counts as a half day"},
	{Key: AbsentSweepTime, Default: "18:00", Kind: KindClock, Description: "Time of day after which unmarked employees are marked absent"},
	{Key: WeekendDays, Default: "saturday,sunday", Kind: KindWeekdays, Description: "Non working days of the week"},
	{Key: LastSweepDate, Default: "", Kind: KindDate, Description: "Last day swept for absentees", ReadOnly: true},
	{Key: AnnualLeaveDays, Default: "20", Kind: KindInt, Description: "Annual leave allowance in working days per year"},
	{Key: SickLeaveDays, Default: "10", Kind: KindInt, Description: "Sick leave allowance in working days per year"},
	{Key: CasualLeaveDays, Default: "5", Kind: KindInt, Description: "Casual leave allowance in working days per year"},
	{Key: LoyaltyMilestones, Default: "5,10,15,20,25,30", Kind: KindIntList, Description: "Years of service that earn a loyalty award"},
}

// Definitions returns the known settings.
func Definitions() []Definition {
	defs := make([]Definition, len(definitions))
	copy(defs, definitions)
	return defs
}

func lookup(key string) (Definition, bool) {
	for _, def := range definitions {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}

type Setting struct {
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	Kind        Kind      `json:"kind" db:"-"`
	Description string    `json:"description" db:"-"`
	ReadOnly    bool      `json:"read_only" db:"-"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // zero for defaults
}

func fromDefinition(def Definition) Setting {
	return Setting{
		Key:         def.Key,
		Value:       def.Default,
		Kind:        def.Kind,
		Description: def.Description,
		ReadOnly:    def.ReadOnly,
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func splitList(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if part = core.CleanString(part, true /* lower */); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func parseWeekdays(s string) ([]time.Weekday, bool) {
	days := make([]time.Weekday, 0, 2)
	for _, part := range splitList(s) {
		day, ok := weekdays[part]
		if !ok {
			return nil, false
		}
		days = append(days, day)
	}
	return days, true
}

func parseIntList(s string) ([]int, bool) {
	ints := make([]int, 0, 6)
	for _, part := range splitList(s) {
		i, err := strconv.Atoi(part)
		if err != nil || i <= 0 {
			return nil, false
		}
		ints = append(ints, i)
	}
	return ints, true
}

// normalize validates value against kind and returns its canonical form.
func normalize(kind Kind, value string) (string, bool) {
	value = core.CleanString(value)
	switch kind {
	case KindInt:
		i, err := strconv.Atoi(value)
		if err != nil || i < 0 {
			return "", false
		}
		return strconv.Itoa(i), true
	case KindClock:
		if _, _, ok := core.ParseClock(value); !ok {
			return "", false
		}
		return value, true
	case KindWeekdays:
		if _, ok := parseWeekdays(value); !ok {
			return "", false
		}
		return strings.Join(splitList(value), ","), true
	case KindIntList:
		ints, ok := parseIntList(value)
		if !ok {
			return "", false
		}
		parts := make([]string, 0, len(ints))
		for _, i := range ints {
			parts = append(parts, strconv.Itoa(i))
		}
		return strings.Join(parts, ","), true
	case KindDate:
		if value == "" {
			return "", true
		}
		if _, err := core.ParseDate(value); err != nil {
			return "", false
		}
		return value, true
	default:
		return value, true
	}
}

var kindErrors = map[Kind]string{
	KindInt:      "must be a non-negative integer",
	KindClock:    "must be a time of day formatted as HH:MM",
	KindWeekdays: "must be a comma separated list of weekday names",
	KindIntList:  "must be a comma separated list of positive integers",
	KindDate:     "must be a date formatted as YYYY-MM-DD",
}

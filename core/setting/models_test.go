package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_normalize(t *testing.T) {
	tests := []struct {
		kind   Kind
		value  string
		want   string
		wantOk bool
	}{
		{kind: KindInt, value: " 15 ", want: "15", wantOk: true},
		{kind: KindInt, value: "007", want: "7", wantOk: true},
		{kind: KindInt, value: "0", want: "0", wantOk: true},
		{kind: KindInt, value: "-1"},
		{kind: KindInt, value: "1.5"},
		{kind: KindClock, value: "08:30", want: "08:30", wantOk: true},
		{kind: KindClock, value: "23:59", want: "23:59", wantOk: true},
		{kind: KindClock, value: "8:30"},
		{kind: KindClock, value: "24:00"},
		{kind: KindWeekdays, value: "Friday, saturday", want: "friday,saturday", wantOk: true},
		{kind: KindWeekdays, value: "sunday,,", want: "sunday", wantOk: true},
		{kind: KindWeekdays, value: "", want: "", wantOk: true},
		{kind: KindWeekdays, value: "funday"},
		{kind: KindIntList, value: "5, 10,15", want: "5,10,15", wantOk: true},
		{kind: KindIntList, value: "05,10", want: "5,10", wantOk: true},
		{kind: KindIntList, value: "5,0"},
		{kind: KindIntList, value: "five"},
		{kind: KindDate, value: "2024-03-04", want: "2024-03-04", wantOk: true},
		{kind: KindDate, value: "", want: "", wantOk: true},
		{kind: KindDate, value: "04/03/2024"},
		{kind: KindString, value: "  Accra Academy ", want: "Accra Academy", wantOk: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.value, func(t *testing.T) {
			got, ok := normalize(tt.kind, tt.value)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_definitions(t *testing.T) {
	for _, def := range Definitions() {
		t.Run(def.Key, func(t *testing.T) {
			got, ok := normalize(def.Kind, def.Default)
			assert.True(t, ok, "default must be valid")
			assert.Equal(t, def.Default, got, "default must be canonical")

			found, ok := lookup(def.Key)
			assert.True(t, ok)
			assert.Equal(t, def, found)
		})
	}
}

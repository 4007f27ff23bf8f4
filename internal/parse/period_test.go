package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is a Thursday mid-month, mid-afternoon.
var fixedNow = time.Date(2025, time.March, 13, 15, 30, 0, 0, time.UTC)

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart time.Time
		wantEnd   time.Time
		wantLabel string
	}{
		{
			name:      "current month",
			input:     "quanto gastei com mercado esse mês",
			wantStart: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "este mês",
		},
		{
			name:      "previous month",
			input:     "gastos de paiol mês passado",
			wantStart: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "mês passado",
		},
		{
			name:      "current year",
			input:     "total deste ano",
			wantStart: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "este ano",
		},
		{
			name:      "previous year",
			input:     "quanto foi no ano passado",
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantLabel: "ano passado",
		},
		{
			name:      "today",
			input:     "gastos de hoje",
			wantStart: time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
			wantLabel: "hoje",
		},
		{
			name:      "yesterday",
			input:     "quanto gastei ontem",
			wantStart: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC),
			wantLabel: "ontem",
		},
		{
			name:      "current week starts monday",
			input:     "gastos dessa semana",
			wantStart: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC),
			wantLabel: "esta semana",
		},
		{
			name:      "previous week",
			input:     "gastos da semana passada",
			wantStart: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantLabel: "semana passada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, ok := ResolvePeriod(tt.input, fixedNow)
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, period.Start)
			assert.Equal(t, tt.wantEnd, period.End)
			assert.Equal(t, tt.wantLabel, period.Label)
		})
	}
}

func TestResolvePeriodNoKeyword(t *testing.T) {
	// A bare "mes" is not a period phrase; neither is unrelated text.
	for _, input := range []string{"", "quanto gastei com mercado", "gastos do mes"} {
		_, ok := ResolvePeriod(input, fixedNow)
		assert.False(t, ok, "input %q", input)
	}
}

func TestCurrentMonthHalfOpen(t *testing.T) {
	// December rolls into January of the next year.
	dec := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)
	period := CurrentMonth(dec)

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), period.End)
	assert.True(t, period.Contains(dec))
	assert.False(t, period.Contains(period.End), "end bound is exclusive")
	assert.True(t, period.Contains(period.Start), "start bound is inclusive")
}

func TestStartOfWeekOnMonday(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), startOfWeek(monday))

	sunday := time.Date(2025, time.March, 16, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))
}

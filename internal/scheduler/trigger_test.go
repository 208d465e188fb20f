package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store/schema"
)

func TestTriggerProjectionClearsOtherVariants(t *testing.T) {
	interval := uint(500)
	readingType := domain.ReadingTypeKM
	last := uint(4500)
	nextDue := uint(5000)

	sched := &schema.MaintenanceSchedule{
		TriggerType:      domain.TriggerUsage,
		UsageInterval:    &interval,
		UsageReadingType: &readingType,
		LastUsageValue:   &last,
		NextDueUsage:     &nextDue,
	}

	// Switching to a time trigger must clear every usage column
	TimeTrigger{Period: domain.PeriodWeekly, NextDue: date(2024, 6, 1)}.project(sched)

	assert.Equal(t, domain.TriggerTime, sched.TriggerType)
	require.NotNil(t, sched.Period)
	assert.Equal(t, domain.PeriodWeekly, *sched.Period)
	require.NotNil(t, sched.NextDueDate)
	assert.Nil(t, sched.UsageInterval)
	assert.Nil(t, sched.UsageReadingType)
	assert.Nil(t, sched.LastUsageValue)
	assert.Nil(t, sched.NextDueUsage)

	// ...and back again clears the time columns
	UsageTrigger{Interval: 250, ReadingType: domain.ReadingTypeHour, NextDue: 1000}.project(sched)

	assert.Equal(t, domain.TriggerUsage, sched.TriggerType)
	assert.Nil(t, sched.Period)
	assert.Nil(t, sched.NextDueDate)
	require.NotNil(t, sched.UsageInterval)
	assert.Equal(t, uint(250), *sched.UsageInterval)

	// Manual triggers carry no automation columns at all
	ManualTrigger{Kind: domain.TriggerCondition}.project(sched)

	assert.Equal(t, domain.TriggerCondition, sched.TriggerType)
	assert.Nil(t, sched.Period)
	assert.Nil(t, sched.NextDueDate)
	assert.Nil(t, sched.UsageInterval)
	assert.Nil(t, sched.UsageReadingType)
	assert.Nil(t, sched.LastUsageValue)
	assert.Nil(t, sched.NextDueUsage)
}

func TestTriggerFromSchedule(t *testing.T) {
	period := domain.PeriodMonthly
	due := date(2024, 4, 1)
	interval := uint(500)
	readingType := domain.ReadingTypeKM
	nextDueUsage := uint(5000)

	tests := []struct {
		name      string
		sched     schema.MaintenanceSchedule
		expectErr bool
		check     func(*testing.T, Trigger)
	}{
		{
			name: "valid time trigger",
			sched: schema.MaintenanceSchedule{
				TriggerType: domain.TriggerTime,
				Period:      &period,
				NextDueDate: &due,
			},
			check: func(t *testing.T, trig Trigger) {
				tt, ok := trig.(TimeTrigger)
				require.True(t, ok)
				assert.Equal(t, domain.PeriodMonthly, tt.Period)
				assert.True(t, tt.NextDue.Equal(due))
			},
		},
		{
			name: "time trigger without period",
			sched: schema.MaintenanceSchedule{
				TriggerType: domain.TriggerTime,
				NextDueDate: &due,
			},
			expectErr: true,
		},
		{
			name: "valid usage trigger",
			sched: schema.MaintenanceSchedule{
				TriggerType:      domain.TriggerUsage,
				UsageInterval:    &interval,
				UsageReadingType: &readingType,
				NextDueUsage:     &nextDueUsage,
			},
			check: func(t *testing.T, trig Trigger) {
				ut, ok := trig.(UsageTrigger)
				require.True(t, ok)
				assert.Equal(t, uint(500), ut.Interval)
				assert.Equal(t, domain.ReadingTypeKM, ut.ReadingType)
				assert.Nil(t, ut.LastValue)
			},
		},
		{
			name: "usage trigger without reading type",
			sched: schema.MaintenanceSchedule{
				TriggerType:   domain.TriggerUsage,
				UsageInterval: &interval,
				NextDueUsage:  &nextDueUsage,
			},
			expectErr: true,
		},
		{
			name:  "condition trigger",
			sched: schema.MaintenanceSchedule{TriggerType: domain.TriggerCondition},
			check: func(t *testing.T, trig Trigger) {
				assert.Equal(t, domain.TriggerCondition, trig.Type())
			},
		},
		{
			name:      "unknown trigger type",
			sched:     schema.MaintenanceSchedule{TriggerType: "lunar"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trig, err := TriggerFromSchedule(&tt.sched)
			if tt.expectErr {
				require.Error(t, err)

				var validationErr *domain.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, trig)
		})
	}
}

func TestScheduleState(t *testing.T) {
	overdueTrigger := TimeTrigger{Period: domain.PeriodDaily, NextDue: date(2024, 1, 1)}
	assert.Equal(t, domain.ScheduleOverdue, scheduleState(overdueTrigger, date(2024, 1, 2)))
	assert.Equal(t, domain.ScheduleOnTime, scheduleState(overdueTrigger, date(2024, 1, 1)))

	// Usage and manual triggers never mark the cached state overdue directly
	usage := UsageTrigger{Interval: 500, ReadingType: domain.ReadingTypeKM, NextDue: 5000}
	assert.Equal(t, domain.ScheduleOnTime, scheduleState(usage, time.Now()))
}

package scheduler

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/logger"
	"github.com/sarpras/inventaris/internal/registry"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

var testDB *gorm.DB

// TestMain starts a PostgreSQL container shared by all engine tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	var dsn string
	var pgContainer *postgres.PostgresContainer

	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		dsn = fmt.Sprintf("host=%s port=5432 user=postgres password=postgres dbname=test_db sslmode=disable", host)
	} else {
		var err error
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			os.Exit(1)
		}
	}

	var err error
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	if err := store.Migrate(testDB); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if pgContainer != nil {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}

	os.Exit(code)
}

// newTestEngine returns an engine and registry on a transaction-isolated store
func newTestEngine(t *testing.T) (*Engine, *registry.Registry, store.Store) {
	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	s := store.NewPGStore(tx)
	return NewEngine(s), registry.NewRegistry(s), s
}

func seedAsset(t *testing.T, r *registry.Registry) *schema.Asset {
	ctx := context.Background()

	cat, err := r.CreateCategory(ctx, registry.CreateCategoryParams{
		Code:     fmt.Sprintf("CAT-%d", time.Now().UnixNano()),
		Name:     "Machinery",
		IsActive: true,
	})
	require.NoError(t, err)

	loc, err := r.CreateLocation(ctx, registry.CreateLocationParams{
		Name:     "Plant floor",
		IsActive: true,
	})
	require.NoError(t, err)

	asset, err := r.CreateAsset(ctx, registry.CreateAssetParams{
		Name:         "Generator",
		CategoryID:   cat.ID,
		AcquiredDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Condition:    domain.ConditionGood,
		LocationID:   loc.ID,
	}, 9)
	require.NoError(t, err)
	return asset
}

func TestCreateScheduleValidation(t *testing.T) {
	e, r, _ := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)

	_, err := e.CreateSchedule(ctx, asset.ID, "Oil change", UsageTrigger{
		Interval:    0,
		ReadingType: domain.ReadingTypeKM,
	}, 9)
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// Manual triggers persist with no automation columns
	sched, err := e.CreateSchedule(ctx, asset.ID, "After accidents", ManualTrigger{Kind: domain.TriggerCondition}, 9)
	require.NoError(t, err)
	assert.Nil(t, sched.Period)
	assert.Nil(t, sched.UsageInterval)
	assert.Equal(t, domain.ScheduleOnTime, sched.Status)
}

func TestCompleteMaintenanceAdvancesTimeSchedule(t *testing.T) {
	e, r, _ := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)
	sched, err := e.CreateSchedule(ctx, asset.ID, "Monthly inspection", TimeTrigger{
		Period:  domain.PeriodMonthly,
		NextDue: date(2024, 1, 31),
	}, 9)
	require.NoError(t, err)

	event, err := e.CompleteMaintenance(ctx, CompleteMaintenanceParams{
		AssetID:        asset.ID,
		Type:           domain.MaintenanceRoutine,
		ScheduleID:     &sched.ID,
		ConditionAfter: domain.ConditionGood,
		Cost:           decimal.NewFromInt(150),
		PerformedAt:    date(2024, 1, 31),
	}, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionGood, event.ConditionBefore)

	advanced, err := e.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	require.NotNil(t, advanced.NextDueDate)
	assert.Equal(t, date(2024, 2, 29), truncateDay(*advanced.NextDueDate))
	require.NotNil(t, advanced.LastDoneAt)

	// Advancing again from the clamped date lands on the 29th
	event2, err := e.CompleteMaintenance(ctx, CompleteMaintenanceParams{
		AssetID:        asset.ID,
		Type:           domain.MaintenanceRoutine,
		ScheduleID:     &sched.ID,
		ConditionAfter: domain.ConditionGood,
		PerformedAt:    date(2024, 2, 29),
	}, 9)
	require.NoError(t, err)
	assert.NotNil(t, event2)

	advanced, err = e.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 29), truncateDay(*advanced.NextDueDate))
}

func TestCompleteMaintenanceAdvancesUsageSchedule(t *testing.T) {
	e, r, s := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)
	sched, err := e.CreateSchedule(ctx, asset.ID, "500km service", UsageTrigger{
		Interval:    500,
		ReadingType: domain.ReadingTypeKM,
		NextDue:     5000,
	}, 9)
	require.NoError(t, err)

	reading := uint(5100)
	performedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err = e.CompleteMaintenance(ctx, CompleteMaintenanceParams{
		AssetID:        asset.ID,
		Type:           domain.MaintenanceRoutine,
		ScheduleID:     &sched.ID,
		ConditionAfter: domain.ConditionGood,
		PerformedAt:    performedAt,
		ReadingValue:   &reading,
	}, 9)
	require.NoError(t, err)

	// The servicing reading is recorded against the schedule's meter
	latest, err := s.LatestMeterReading(ctx, asset.ID, domain.ReadingTypeKM)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint(5100), latest.ReadingValue)

	advanced, err := e.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	require.NotNil(t, advanced.LastUsageValue)
	assert.Equal(t, uint(5100), *advanced.LastUsageValue)
	require.NotNil(t, advanced.NextDueUsage)
	assert.Equal(t, uint(5600), *advanced.NextDueUsage)
	assert.Equal(t, domain.ScheduleOnTime, advanced.Status)
}

func TestCompleteMaintenanceUsageRequiresReading(t *testing.T) {
	e, r, s := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)
	sched, err := e.CreateSchedule(ctx, asset.ID, "500km service", UsageTrigger{
		Interval:    500,
		ReadingType: domain.ReadingTypeKM,
		NextDue:     5000,
	}, 9)
	require.NoError(t, err)

	_, err = e.CompleteMaintenance(ctx, CompleteMaintenanceParams{
		AssetID:        asset.ID,
		Type:           domain.MaintenanceRoutine,
		ScheduleID:     &sched.ID,
		ConditionAfter: domain.ConditionGood,
		PerformedAt:    time.Now(),
	}, 9)
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// Rejected before any mutation: no event, no advancement
	events, total, err := s.ListMaintenances(ctx, store.MaintenanceFilter{AssetID: &asset.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, events)

	unchanged, err := e.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5000), *unchanged.NextDueUsage)
}

func TestCompleteMaintenanceUnlinkedAdvancesNothing(t *testing.T) {
	e, r, _ := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)
	sched, err := e.CreateSchedule(ctx, asset.ID, "Monthly inspection", TimeTrigger{
		Period:  domain.PeriodMonthly,
		NextDue: date(2030, 1, 15),
	}, 9)
	require.NoError(t, err)

	event, err := e.CompleteMaintenance(ctx, CompleteMaintenanceParams{
		AssetID:        asset.ID,
		Type:           domain.MaintenanceIncidental,
		ConditionAfter: domain.ConditionLightDamage,
		Note:           "replaced belt after failure",
		PerformedAt:    time.Now(),
	}, 9)
	require.NoError(t, err)
	assert.Nil(t, event.ScheduleID)

	// The asset condition change is applied and audited
	updated, err := r.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionLightDamage, updated.Condition)

	// The schedule is untouched
	unchanged, err := e.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2030, 1, 15), truncateDay(*unchanged.NextDueDate))
	assert.Nil(t, unchanged.LastDoneAt)
}

func TestCompleteMaintenanceManualTriggerAdvancesNothing(t *testing.T) {
	e, r, _ := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)
	sched, err := e.CreateSchedule(ctx, asset.ID, "After accidents", ManualTrigger{Kind: domain.TriggerCondition}, 9)
	require.NoError(t, err)

	event, err := e.CompleteMaintenance(ctx, CompleteMaintenanceParams{
		AssetID:        asset.ID,
		Type:           domain.MaintenanceIncidental,
		ScheduleID:     &sched.ID,
		ConditionAfter: domain.ConditionGood,
		PerformedAt:    time.Now(),
	}, 9)
	require.NoError(t, err)
	assert.Equal(t, &sched.ID, event.ScheduleID)

	// Manual triggers carry no automation state; completion writes nothing
	// back to the schedule
	unchanged, err := e.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.LastDoneAt)
	assert.Nil(t, unchanged.NextDueDate)
	assert.Nil(t, unchanged.NextDueUsage)
	assert.Equal(t, domain.ScheduleOnTime, unchanged.Status)
}

func TestScheduleStatusBuckets(t *testing.T) {
	e, r, s := newTestEngine(t)
	ctx := context.Background()

	asset := seedAsset(t, r)

	// Usage schedules sharing one meter key
	warning, err := e.CreateSchedule(ctx, asset.ID, "Warning soon", UsageTrigger{
		Interval:    500,
		ReadingType: domain.ReadingTypeKM,
		NextDue:     5000,
	}, 9)
	require.NoError(t, err)

	overdueUsage, err := e.CreateSchedule(ctx, asset.ID, "Past due", UsageTrigger{
		Interval:    1000,
		ReadingType: domain.ReadingTypeKM,
		NextDue:     4000,
	}, 9)
	require.NoError(t, err)

	require.NoError(t, s.CreateMeterReading(ctx, &schema.MeterReading{
		AssetID:      asset.ID,
		ReadingType:  domain.ReadingTypeKM,
		ReadingValue: 4950,
		ReadingAt:    time.Now(),
	}))

	// An overdue time schedule and a manual one
	overdueTime, err := e.CreateSchedule(ctx, asset.ID, "Overdue inspection", TimeTrigger{
		Period:  domain.PeriodWeekly,
		NextDue: time.Now().AddDate(0, 0, -3),
	}, 9)
	require.NoError(t, err)

	_, err = e.CreateSchedule(ctx, asset.ID, "After accidents", ManualTrigger{Kind: domain.TriggerEvent}, 9)
	require.NoError(t, err)

	status, err := e.ScheduleStatus(ctx, &asset.ID)
	require.NoError(t, err)

	ids := func(scheds []*schema.MaintenanceSchedule) []int64 {
		var out []int64
		for _, s := range scheds {
			out = append(out, s.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []int64{warning.ID}, ids(status.Warning))
	assert.ElementsMatch(t, []int64{overdueUsage.ID, overdueTime.ID}, ids(status.Overdue))
	assert.Empty(t, status.Due)
}

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

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
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

var testDB *gorm.DB

// TestMain starts a PostgreSQL container shared by all registry tests
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

// newTestRegistry returns a registry on a transaction-isolated store
func newTestRegistry(t *testing.T) (*Registry, store.Store) {
	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	s := store.NewPGStore(tx)
	return NewRegistry(s), s
}

func seedCategory(t *testing.T, r *Registry, code string) *schema.Category {
	cat, err := r.CreateCategory(context.Background(), CreateCategoryParams{
		Code:     code,
		Name:     "Vehicles",
		IsActive: true,
	})
	require.NoError(t, err)
	return cat
}

func seedLocation(t *testing.T, r *Registry, name string, parentID *int64) *schema.Location {
	loc, err := r.CreateLocation(context.Background(), CreateLocationParams{
		Name:     name,
		ParentID: parentID,
		IsActive: true,
	})
	require.NoError(t, err)
	return loc
}

func seedRegisteredAsset(t *testing.T, r *Registry, actorID int64) *schema.Asset {
	cat := seedCategory(t, r, fmt.Sprintf("CAT-%d", time.Now().UnixNano()))
	loc := seedLocation(t, r, "Garage", nil)

	asset, err := r.CreateAsset(context.Background(), CreateAssetParams{
		Name:         "Forklift",
		CategoryID:   cat.ID,
		AcquiredDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Condition:    domain.ConditionGood,
		LocationID:   loc.ID,
	}, actorID)
	require.NoError(t, err)
	return asset
}

func auditEntries(t *testing.T, r *Registry, assetID int64) []*schema.AuditLog {
	entity := schema.AuditEntityAsset
	entries, _, err := r.AuditTrail(context.Background(), store.AuditLogFilter{Entity: &entity})
	require.NoError(t, err)

	var forAsset []*schema.AuditLog
	for _, e := range entries {
		if e.EntityID == assetID {
			forAsset = append(forAsset, e)
		}
	}
	return forAsset
}

func changedFields(t *testing.T, entry *schema.AuditLog) map[string]FieldChange {
	var changes map[string]FieldChange
	require.NoError(t, json.Unmarshal(entry.Changes, &changes))
	return changes
}

func TestCreateAsset(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	cat := seedCategory(t, r, "VHC")
	loc := seedLocation(t, r, "Garage", nil)

	asset, err := r.CreateAsset(ctx, CreateAssetParams{
		Name:               "Forklift",
		CategoryID:         cat.ID,
		AcquiredDate:       time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		Condition:          domain.ConditionGood,
		LocationID:         loc.ID,
		ResponsibleUserIDs: []int64{11, 12},
	}, 99)
	require.NoError(t, err)

	// Code derives from the acquisition period, not the creation time
	assert.Equal(t, "2025-02-0001", asset.Code)
	assert.Equal(t, domain.AssetStatusActive, asset.Status)
	require.NotNil(t, asset.CreatedBy)
	assert.Equal(t, int64(99), *asset.CreatedBy)

	// Initial placement is recorded with no origin
	histories, err := r.ListLocationHistory(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Nil(t, histories[0].FromLocationID)
	assert.Equal(t, loc.ID, histories[0].ToLocationID)

	// Creation itself is not audited
	assert.Empty(t, auditEntries(t, r, asset.ID))
}

func TestCreateAssetRejectsInactiveCategory(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	cat := &schema.Category{Code: "OLD", Name: "Obsolete", IsActive: false}
	require.NoError(t, s.CreateCategory(ctx, cat))
	loc := seedLocation(t, r, "Garage", nil)

	_, err := r.CreateAsset(ctx, CreateAssetParams{
		Name:         "Forklift",
		CategoryID:   cat.ID,
		AcquiredDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Condition:    domain.ConditionGood,
		LocationID:   loc.ID,
	}, 1)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestMoveAsset(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)
	target := seedLocation(t, r, "Workshop", nil)

	moved, err := r.MoveAsset(ctx, asset.ID, target.ID, "relocated", 5)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.CurrentLocationID)

	histories, err := r.ListLocationHistory(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	require.NotNil(t, histories[0].FromLocationID)
	assert.Equal(t, asset.CurrentLocationID, *histories[0].FromLocationID)

	entries := auditEntries(t, r, asset.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "move", entries[0].Action)

	changes := changedFields(t, entries[0])
	require.Contains(t, changes, "current_location")
	assert.Len(t, changes, 1)
}

func TestMoveAssetToSameLocationIsNoOp(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	moved, err := r.MoveAsset(ctx, asset.ID, asset.CurrentLocationID, "", 5)
	require.NoError(t, err)
	assert.Equal(t, asset.CurrentLocationID, moved.CurrentLocationID)

	// No new history row and no audit entry
	histories, err := r.ListLocationHistory(ctx, asset.ID)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
	assert.Empty(t, auditEntries(t, r, asset.ID))
}

func TestUpdateAssetConditionOnly(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	condition := domain.ConditionLightDamage
	_, err := r.UpdateAsset(ctx, asset.ID, UpdateAssetParams{Condition: &condition}, 5)
	require.NoError(t, err)

	entries := auditEntries(t, r, asset.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "update", entries[0].Action)
	assert.Equal(t, int64(5), entries[0].PerformedBy)

	changes := changedFields(t, entries[0])
	require.Len(t, changes, 1)
	require.Contains(t, changes, "condition")
	assert.Equal(t, "good", changes["condition"].Before)
	assert.Equal(t, "light_damage", changes["condition"].After)
}

func TestUpdateAssetNoChangeWritesNoAudit(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	// Renaming is not a tracked field
	name := "Forklift B"
	_, err := r.UpdateAsset(ctx, asset.ID, UpdateAssetParams{Name: &name}, 5)
	require.NoError(t, err)

	assert.Empty(t, auditEntries(t, r, asset.ID))
}

func TestUpdateAssetActorFallsBackToCreator(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 42)

	status := domain.AssetStatusDamaged
	_, err := r.UpdateAsset(ctx, asset.ID, UpdateAssetParams{Status: &status}, 0)
	require.NoError(t, err)

	entries := auditEntries(t, r, asset.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].PerformedBy)
}

func TestRetireAssetIsIdempotent(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	require.NoError(t, r.RetireAsset(ctx, asset.ID, "written off", 5))
	require.NoError(t, r.RetireAsset(ctx, asset.ID, "written off again", 5))

	retired, err := r.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusRetired, retired.Status)
	assert.NotNil(t, retired.DeletedAt)

	// Only the first retire audits
	entries := auditEntries(t, r, asset.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "retire", entries[0].Action)

	// Retired assets drop out of default listings
	assets, _, err := s.ListAssets(ctx, store.AssetFilter{})
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestAssignResponsibleAuditsMembership(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	require.NoError(t, r.AssignResponsible(ctx, asset.ID, 31, 5))

	entries := auditEntries(t, r, asset.ID)
	require.Len(t, entries, 1)

	changes := changedFields(t, entries[0])
	require.Contains(t, changes, "responsible_users")
}

func TestLoanLifecycle(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	loan, err := r.BorrowAsset(ctx, asset.ID, BorrowParams{BorrowerID: 7, PlannedReturnAt: due}, 5)
	require.NoError(t, err)

	borrowed, err := r.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusOnLoan, borrowed.Status)

	// Second active loan is a conflict
	_, err = r.BorrowAsset(ctx, asset.ID, BorrowParams{BorrowerID: 8, PlannedReturnAt: due}, 5)
	require.Error(t, err)
	var conflictErr *domain.ConflictError
	assert.ErrorAs(t, err, &conflictErr)

	returned, err := r.ReturnLoan(ctx, loan.ID, 5)
	require.NoError(t, err)
	assert.NotNil(t, returned.ReturnedAt)

	restored, err := r.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusActive, restored.Status)

	// Returning twice is a conflict
	_, err = r.ReturnLoan(ctx, loan.ID, 5)
	require.Error(t, err)
	assert.ErrorAs(t, err, &conflictErr)

	entries := auditEntries(t, r, asset.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, "return", entries[0].Action)
	assert.Equal(t, "loan", entries[1].Action)
}

func TestLocationTree(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	root := seedLocation(t, r, "HQ", nil)
	assert.Equal(t, fmt.Sprintf("%d", root.ID), root.Path)
	assert.Equal(t, 0, root.Level)

	child := seedLocation(t, r, "Floor 2", &root.ID)
	assert.Equal(t, fmt.Sprintf("%d/%d", root.ID, child.ID), child.Path)
	assert.Equal(t, 1, child.Level)

	// Re-parenting recomputes the edited node
	other := seedLocation(t, r, "Annex", nil)
	updated, err := r.UpdateLocation(ctx, child.ID, UpdateLocationParams{SetParent: true, ParentID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d/%d", other.ID, child.ID), updated.Path)
	assert.Equal(t, 1, updated.Level)

	// Self-parenting and descendant cycles are rejected
	_, err = r.UpdateLocation(ctx, other.ID, UpdateLocationParams{SetParent: true, ParentID: &other.ID})
	require.Error(t, err)

	_, err = r.UpdateLocation(ctx, other.ID, UpdateLocationParams{SetParent: true, ParentID: &child.ID})
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestReparentRecomputesEditedNodeOnly(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	oldRoot := seedLocation(t, r, "Campus A", nil)
	mid := seedLocation(t, r, "Building 1", &oldRoot.ID)
	leaf := seedLocation(t, r, "Room 101", &mid.ID)
	require.Equal(t, fmt.Sprintf("%d/%d/%d", oldRoot.ID, mid.ID, leaf.ID), leaf.Path)
	require.Equal(t, 2, leaf.Level)

	newRoot := seedLocation(t, r, "Campus B", nil)
	moved, err := r.UpdateLocation(ctx, mid.ID, UpdateLocationParams{SetParent: true, ParentID: &newRoot.ID})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d/%d", newRoot.ID, mid.ID), moved.Path)
	assert.Equal(t, 1, moved.Level)

	// Descendants keep their stale path and level until they are themselves
	// edited; recomputation is scoped to the re-parented node
	stale, err := r.GetLocation(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d/%d/%d", oldRoot.ID, mid.ID, leaf.ID), stale.Path)
	assert.Equal(t, 2, stale.Level)
}

func TestDeleteLocationGuards(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	root := seedLocation(t, r, "HQ", nil)
	child := seedLocation(t, r, "Floor 2", &root.ID)

	// A node with children cannot be deleted
	err := r.DeleteLocation(ctx, root.ID)
	require.Error(t, err)
	var integrityErr *domain.IntegrityError
	assert.ErrorAs(t, err, &integrityErr)

	// A node holding assets cannot be deleted
	cat := seedCategory(t, r, "GRD")
	_, err = r.CreateAsset(ctx, CreateAssetParams{
		Name:         "Ladder",
		CategoryID:   cat.ID,
		AcquiredDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Condition:    domain.ConditionGood,
		LocationID:   child.ID,
	}, 1)
	require.NoError(t, err)

	err = r.DeleteLocation(ctx, child.ID)
	require.Error(t, err)
	assert.ErrorAs(t, err, &integrityErr)
}

func TestDeleteCategoryGuard(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	err := r.DeleteCategory(ctx, asset.CategoryID)
	require.Error(t, err)
	var integrityErr *domain.IntegrityError
	assert.ErrorAs(t, err, &integrityErr)

	empty := seedCategory(t, r, "EMP")
	require.NoError(t, r.DeleteCategory(ctx, empty.ID))
}

func TestRecordMeterReadingValidation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := seedRegisteredAsset(t, r, 5)

	_, err := r.RecordMeterReading(ctx, asset.ID, "furlong", 100, time.Now(), "", 5)
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	reading, err := r.RecordMeterReading(ctx, asset.ID, domain.ReadingTypeKM, 1200, time.Now(), "weekly check", 5)
	require.NoError(t, err)
	assert.Equal(t, uint(1200), reading.ReadingValue)

	readings, err := r.ListMeterReadings(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, readings, 1)
}

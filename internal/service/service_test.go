package service

import (
	"testing"

	"croppo/internal/database"
	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	ws "croppo/internal/websocket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the
	// same schema while staying isolated per test.
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// seedUser inserts a user with the given role and returns the matching
// identity the services authenticate as.
func seedUser(t *testing.T, db *gorm.DB, name string, role permission.Role) *permission.Identity {
	t.Helper()

	user := model.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@croppo.test",
		Name:     name,
		Password: "x",
		Role:     string(role),
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	return &permission.Identity{ID: user.ID, Name: user.Name, Role: role, Active: true}
}

type testEnv struct {
	db        *gorm.DB
	txManager repository.TransactionManager
	auditRepo repository.AuditRepository
	hub       *ws.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	return &testEnv{
		db:        db,
		txManager: repository.NewTransactionManager(db),
		auditRepo: repository.NewAuditRepository(db),
		hub:       ws.NewHub(),
	}
}

func (e *testEnv) approvalService() ApprovalService {
	return NewApprovalService(repository.NewApprovalRepository(e.db), e.auditRepo, e.txManager, e.hub)
}

func (e *testEnv) inventoryService() InventoryService {
	return NewInventoryService(repository.NewInventoryRepository(e.db), e.auditRepo, e.txManager, e.hub)
}

func (e *testEnv) queueService() RequestQueueService {
	return NewRequestQueueService(repository.NewRequestQueueRepository(e.db), repository.NewInventoryRepository(e.db), e.auditRepo, e.txManager, e.hub)
}

func (e *testEnv) farmService() FarmService {
	return NewFarmService(repository.NewFarmRepository(e.db))
}

func (e *testEnv) operationService(approvals ApprovalService) OperationService {
	return NewOperationService(repository.NewOperationRepository(e.db), repository.NewFarmRepository(e.db), e.auditRepo, e.txManager, approvals)
}

func (e *testEnv) userService() UserService {
	return NewUserService(repository.NewUserRepository(e.db))
}

func (e *testEnv) financeService() FinanceService {
	return NewFinanceService(repository.NewFinanceRepository(e.db))
}

func (e *testEnv) reportService() ReportService {
	return NewReportService(
		repository.NewOperationRepository(e.db),
		repository.NewApprovalRepository(e.db),
		repository.NewFinanceRepository(e.db),
		e.inventoryService(),
		e.financeService(),
	)
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(repository.NewUserRepository(e.db), repository.NewTokenRepository(e.db), e.auditRepo, e.txManager)
}

// countAudit returns how many audit rows exist for the given action.
func (e *testEnv) countAudit(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clickpaysolution/PaymentGateway/models"
	"github.com/clickpaysolution/PaymentGateway/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	payment := &models.Payment{
		ID:            uuid.New(),
		MerchantID:    "m1",
		TransactionID: "TXN1700000000000ABCDEF",
		Amount:        decimal.NewFromFloat(250.00),
		Currency:      "INR",
		Status:        models.StatusPending,
		PaymentMethod: models.MethodUPIQR,
		BankProvider:  "AXIS",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(payment.ID))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), payment)
	assert.NoError(t, err)
}

func TestFindByTransactionID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "merchant_id", "transaction_id", "amount", "currency", "status", "bank_provider", "created_at", "updated_at"}).
		AddRow(id, "m1", "TXN1", 250.00, "INR", models.StatusPending, "AXIS", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(rows)

	p, err := repo.FindByTransactionID(context.Background(), "TXN1")
	assert.NoError(t, err)
	assert.Equal(t, "TXN1", p.TransactionID)
	assert.Equal(t, models.StatusPending, p.Status)
}

func TestFindByTransactionID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	p, err := repo.FindByTransactionID(context.Background(), "TXN_MISSING")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, p)
}

func TestFindByBankTransactionID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "merchant_id", "transaction_id", "bank_transaction_id", "status", "created_at", "updated_at"}).
		AddRow(id, "m1", "TXN2", "AXIS_12345678", models.StatusPending, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(rows)

	p, err := repo.FindByBankTransactionID(context.Background(), "AXIS_12345678")
	assert.NoError(t, err)
	assert.Equal(t, "TXN2", p.TransactionID)
	assert.Equal(t, "AXIS_12345678", *p.BankTransactionID)
}

func TestUpdate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	payment := &models.Payment{
		ID:            uuid.New(),
		MerchantID:    "m1",
		TransactionID: "TXN3",
		Amount:        decimal.NewFromInt(100),
		Currency:      "INR",
		Status:        models.StatusSuccess,
		BankProvider:  "AXIS",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payments"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), payment)
	assert.NoError(t, err)
}

func TestFindByMerchantID_Paginates(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	id1, id2 := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "merchant_id", "transaction_id", "status", "created_at", "updated_at"}).
		AddRow(id1, "m1", "TXN4", models.StatusSuccess, now, now).
		AddRow(id2, "m1", "TXN5", models.StatusPending, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(rows)

	payments, total, err := repo.FindByMerchantID(context.Background(), "m1", 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, payments, 2)
}

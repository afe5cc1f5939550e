package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-api/internal/domains/orders/domain"
	"github.com/Apurer/canteen-api/internal/domains/orders/ports"
	pgplatform "github.com/Apurer/canteen-api/internal/platform/postgres"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

var _ ports.PaymentRepository = (*PaymentRepository)(nil)

// PaymentRepository persists payments in PostgreSQL using GORM.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	OrderID       int64           `gorm:"column:order_id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	Currency      string          `gorm:"column:currency"`
	PaymentMethod string          `gorm:"column:payment_method"`
	TransactionID string          `gorm:"column:transaction_id"`
	Status        string          `gorm:"column:status"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (paymentRecord) TableName() string { return "payments" }

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	record := paymentRecord{
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PaymentMethod: payment.PaymentMethod,
		TransactionID: payment.TransactionID,
		Status:        string(payment.Status),
	}
	if err := pgplatform.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrPaymentExists
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *PaymentRepository) Get(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.first(ctx, false, "id = ?", id)
}

func (r *PaymentRepository) GetByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	return r.first(ctx, false, "order_id = ?", orderID)
}

func (r *PaymentRepository) Lock(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.first(ctx, tx.Active(ctx), "id = ?", id)
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.New("payment is nil")
	}
	result := pgplatform.Conn(ctx, r.db).Model(&paymentRecord{}).Where("id = ?", payment.ID).Updates(map[string]any{
		"status":         string(payment.Status),
		"transaction_id": payment.TransactionID,
		"updated_at":     gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrPaymentNotFound
	}
	return r.Get(ctx, payment.ID)
}

func (r *PaymentRepository) first(ctx context.Context, forUpdate bool, cond string, arg any) (*domain.Payment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, r.db)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record paymentRecord
	if err := query.Where(cond, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPaymentNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *PaymentRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres payment repository not configured")
	}
	return nil
}

func (r paymentRecord) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:            r.ID,
		OrderID:       r.OrderID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		PaymentMethod: r.PaymentMethod,
		TransactionID: r.TransactionID,
		Status:        domain.PaymentStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

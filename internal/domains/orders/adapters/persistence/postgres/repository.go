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

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID                   int64           `gorm:"primaryKey;column:id"`
	UserID               int64           `gorm:"column:user_id"`
	TotalAmount          decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Status               string          `gorm:"column:status"`
	PaymentMethod        string          `gorm:"column:payment_method"`
	PaymentStatus        string          `gorm:"column:payment_status"`
	ShippingAddress      string          `gorm:"column:shipping_address"`
	TrackingNumber       string          `gorm:"column:tracking_number"`
	ExpectedDeliveryDate *time.Time      `gorm:"column:expected_delivery_date"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id"`
	ProductID int64           `gorm:"column:product_id"`
	Quantity  int             `gorm:"column:quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toOrderRecord(order)
	record.ID = 0
	err := r.within(ctx, func(conn *gorm.DB) error {
		if err := conn.Create(&record).Error; err != nil {
			return err
		}
		items := make([]orderItemRecord, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, orderItemRecord{
				OrderID:   record.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		if len(items) == 0 {
			return nil
		}
		return conn.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return r.load(pgplatform.Conn(ctx, r.db), record.ID, false)
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.load(pgplatform.Conn(ctx, r.db), id, false)
}

func (r *Repository) Lock(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.load(pgplatform.Conn(ctx, r.db), id, tx.Active(ctx))
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := pgplatform.Conn(ctx, r.db)
	query := conn.Order("id DESC")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Order{}, nil
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	var items []orderItemRecord
	if err := conn.Where("order_id IN ?", ids).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]orderItemRecord, len(records))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	orders := make([]*domain.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, rec.toDomain(byOrder[rec.ID]))
	}
	return orders, nil
}

func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	conn := pgplatform.Conn(ctx, r.db)
	result := conn.Model(&orderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":                 string(order.Status),
		"payment_status":         string(order.PaymentStatus),
		"shipping_address":       order.ShippingAddress,
		"tracking_number":        order.TrackingNumber,
		"expected_delivery_date": order.ExpectedDeliveryDate,
		"updated_at":             gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.load(conn, order.ID, false)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.within(ctx, func(conn *gorm.DB) error {
		if err := conn.Where("order_id = ?", id).Delete(&paymentRecord{}).Error; err != nil {
			return err
		}
		if err := conn.Where("order_id = ?", id).Delete(&orderItemRecord{}).Error; err != nil {
			return err
		}
		result := conn.Delete(&orderRecord{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// within reuses the caller's transaction or opens one for multi-statement writes.
func (r *Repository) within(ctx context.Context, fn func(conn *gorm.DB) error) error {
	if tx.Active(ctx) {
		return fn(pgplatform.Conn(ctx, r.db))
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) load(conn *gorm.DB, id int64, forUpdate bool) (*domain.Order, error) {
	query := conn
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record orderRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []orderItemRecord
	if err := conn.Where("order_id = ?", id).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return record.toDomain(items), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toOrderRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID:                   o.ID,
		UserID:               o.UserID,
		TotalAmount:          o.TotalAmount,
		Status:               string(o.Status),
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        string(o.PaymentStatus),
		ShippingAddress:      o.ShippingAddress,
		TrackingNumber:       o.TrackingNumber,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
	}
}

func (r orderRecord) toDomain(items []orderItemRecord) *domain.Order {
	order := &domain.Order{
		ID:                   r.ID,
		UserID:               r.UserID,
		TotalAmount:          r.TotalAmount,
		Status:               domain.Status(r.Status),
		PaymentMethod:        r.PaymentMethod,
		PaymentStatus:        domain.PaymentStatus(r.PaymentStatus),
		ShippingAddress:      r.ShippingAddress,
		TrackingNumber:       r.TrackingNumber,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		Items:                make([]domain.Item, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return order
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-api/internal/domains/cart/domain"
	"github.com/Apurer/canteen-api/internal/domains/cart/ports"
	pgplatform "github.com/Apurer/canteen-api/internal/platform/postgres"
	"github.com/Apurer/canteen-api/internal/shared/tx"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists carts in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type cartRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	UserID    int64     `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type cartItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	CartID    int64           `gorm:"column:cart_id"`
	ProductID int64           `gorm:"column:product_id"`
	Quantity  int             `gorm:"column:quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

func (r *Repository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := cartRecord{UserID: userID}
	if err := pgplatform.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.lockWhere(ctx, "user_id = ?", userID)
}

func (r *Repository) Lock(ctx context.Context, cartID int64) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.lockWhere(ctx, "id = ?", cartID)
}

func (r *Repository) UpsertItem(ctx context.Context, cartID, productID int64, quantity int, price decimal.Decimal) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := cartItemRecord{CartID: cartID, ProductID: productID, Quantity: quantity, Price: price}
	return pgplatform.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"price":      gorm.Expr("EXCLUDED.price"),
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

func (r *Repository) SetItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := pgplatform.Conn(ctx, r.db).Model(&cartItemRecord{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"quantity": quantity, "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrItemNotFound
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, itemID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := pgplatform.Conn(ctx, r.db).Delete(&cartItemRecord{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrItemNotFound
	}
	return nil
}

func (r *Repository) ClearItems(ctx context.Context, cartID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return pgplatform.Conn(ctx, r.db).Where("cart_id = ?", cartID).Delete(&cartItemRecord{}).Error
}

func (r *Repository) Touch(ctx context.Context, cartID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := pgplatform.Conn(ctx, r.db).Model(&cartRecord{}).
		Where("id = ?", cartID).
		UpdateColumn("updated_at", gorm.Expr("NOW()"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ListIdle(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, r.db).
		Where("updated_at < ?", cutoff).
		Where("EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id)").
		Order("updated_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []cartRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	carts := make([]*domain.Cart, 0, len(records))
	for _, rec := range records {
		carts = append(carts, rec.toDomain(nil))
	}
	return carts, nil
}

// lockWhere loads one cart plus items, taking FOR UPDATE when inside a transaction.
func (r *Repository) lockWhere(ctx context.Context, cond string, arg any) (*domain.Cart, error) {
	conn := pgplatform.Conn(ctx, r.db)
	query := conn
	if tx.Active(ctx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record cartRecord
	if err := query.Where(cond, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []cartItemRecord
	if err := conn.Where("cart_id = ?", record.ID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return record.toDomain(items), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func (r cartRecord) toDomain(items []cartItemRecord) *domain.Cart {
	cart := &domain.Cart{ID: r.ID, UserID: r.UserID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	for _, item := range items {
		cart.Items = append(cart.Items, domain.Item{
			ID:        item.ID,
			CartID:    item.CartID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
	}
	return cart
}

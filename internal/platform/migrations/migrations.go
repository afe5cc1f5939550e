// Package migrations owns the relational schema. Adapters never AutoMigrate;
// every table they touch is declared here.
package migrations

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&productRecord{},
		&userRecord{},
		&sessionRecord{},
		&cartRecord{},
		&cartItemRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&paymentRecord{},
		&idempotencyRecord{},
		&outboxRecord{},
	); err != nil {
		return err
	}
	return addForeignKeys(db)
}

type foreignKey struct {
	table, name, column, references, onDelete string
}

// Product references are deliberately loose: deleted products may still be
// named by cart and order lines.
var foreignKeys = []foreignKey{
	{table: "cart_items", name: "fk_cart_items_cart", column: "cart_id", references: "carts(id)", onDelete: "CASCADE"},
	{table: "order_items", name: "fk_order_items_order", column: "order_id", references: "orders(id)", onDelete: "CASCADE"},
	{table: "payments", name: "fk_payments_order", column: "order_id", references: "orders(id)", onDelete: "CASCADE"},
	{table: "user_sessions", name: "fk_user_sessions_user", column: "user_id", references: "users(id)", onDelete: "CASCADE"},
}

func addForeignKeys(db *gorm.DB) error {
	for _, fk := range foreignKeys {
		if db.Migrator().HasConstraint(fk.table, fk.name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s ON DELETE %s",
			fk.table, fk.name, fk.column, fk.references, fk.onDelete)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add %s: %w", fk.name, err)
		}
	}
	return nil
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID              int64               `gorm:"primaryKey;column:id"`
	Name            string              `gorm:"column:name;not null"`
	Description     string              `gorm:"column:description"`
	Price           decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountedPrice decimal.NullDecimal `gorm:"column:discounted_price;type:numeric(12,2)"`
	StockQuantity   int                 `gorm:"column:stock_quantity;not null;check:chk_products_stock_non_negative,stock_quantity >= 0"`
	ImageURL        string              `gorm:"column:image_url"`
	Size            string              `gorm:"column:size"`
	Color           string              `gorm:"column:color"`
	Tags            pq.StringArray      `gorm:"column:tags;type:text[]"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Phone        string    `gorm:"column:phone"`
	Role         string    `gorm:"column:role;type:varchar(16);not null;default:user"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	UserID    int64     `gorm:"column:user_id;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Cart schema mirrors the cart Postgres adapter.
type cartRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (cartRecord) TableName() string { return "carts" }

type cartItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	CartID    int64           `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID int64           `gorm:"column:product_id;not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_cart_items_quantity_positive,quantity > 0"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID                   int64           `gorm:"primaryKey;column:id"`
	UserID               int64           `gorm:"column:user_id;index;not null"`
	TotalAmount          decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status               string          `gorm:"column:status;type:varchar(32);index;not null"`
	PaymentMethod        string          `gorm:"column:payment_method;not null"`
	PaymentStatus        string          `gorm:"column:payment_status;type:varchar(32);not null"`
	ShippingAddress      string          `gorm:"column:shipping_address"`
	TrackingNumber       string          `gorm:"column:tracking_number"`
	ExpectedDeliveryDate *time.Time      `gorm:"column:expected_delivery_date"`
	CreatedAt            time.Time       `gorm:"column:created_at;index"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;index;not null"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_order_items_quantity_positive,quantity > 0"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type paymentRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	OrderID       int64           `gorm:"column:order_id;uniqueIndex;not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency      string          `gorm:"column:currency;type:varchar(3);not null"`
	PaymentMethod string          `gorm:"column:payment_method"`
	TransactionID string          `gorm:"column:transaction_id"`
	Status        string          `gorm:"column:status;type:varchar(32);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (paymentRecord) TableName() string { return "payments" }

// Idempotency schema mirrors the checkout Postgres adapter.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     int64     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "checkout_idempotency_keys" }

// Outbox schema mirrors the outbox Postgres store.
type outboxRecord struct {
	ID            string     `gorm:"primaryKey;column:id;type:uuid"`
	AggregateType string     `gorm:"column:aggregate_type;size:64"`
	AggregateID   string     `gorm:"column:aggregate_id;size:64;index"`
	EventType     string     `gorm:"column:event_type;size:128"`
	Payload       []byte     `gorm:"column:payload;type:jsonb"`
	OccurredAt    time.Time  `gorm:"column:occurred_at;index"`
	PublishedAt   *time.Time `gorm:"column:published_at;index"`
}

func (outboxRecord) TableName() string { return "outbox_events" }

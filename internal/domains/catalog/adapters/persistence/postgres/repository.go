package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-api/internal/domains/catalog/domain"
	"github.com/Apurer/canteen-api/internal/domains/catalog/ports"
	pgplatform "github.com/Apurer/canteen-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Schema is owned by platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type productRecord struct {
	ID              int64               `gorm:"primaryKey;column:id"`
	Name            string              `gorm:"column:name"`
	Description     string              `gorm:"column:description"`
	Price           decimal.Decimal     `gorm:"column:price;type:numeric(12,2)"`
	DiscountedPrice decimal.NullDecimal `gorm:"column:discounted_price;type:numeric(12,2)"`
	StockQuantity   int                 `gorm:"column:stock_quantity"`
	ImageURL        string              `gorm:"column:image_url"`
	Size            string              `gorm:"column:size"`
	Color           string              `gorm:"column:color"`
	Tags            pq.StringArray      `gorm:"column:tags;type:text[]"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := pgplatform.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, r.db).Model(&productRecord{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Tag != "" {
		query = query.Where("EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower(?))", filter.Tag)
	}
	if filter.InStockOnly {
		query = query.Where("stock_quantity > 0")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var records []productRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	conn := pgplatform.Conn(ctx, r.db)
	if record.ID == 0 {
		if err := conn.Create(&record).Error; err != nil {
			return nil, err
		}
		return record.toDomain(), nil
	}
	result := conn.Model(&productRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"name":             record.Name,
		"description":      record.Description,
		"price":            record.Price,
		"discounted_price": record.DiscountedPrice,
		"stock_quantity":   record.StockQuantity,
		"image_url":        record.ImageURL,
		"size":             record.Size,
		"color":            record.Color,
		"tags":             record.Tags,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.Get(ctx, record.ID)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := pgplatform.Conn(ctx, r.db).Delete(&productRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// AdjustStock applies delta in a single guarded UPDATE so concurrent
// reservations never observe or produce a negative counter.
func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	result := pgplatform.Conn(ctx, r.db).
		Model(&records).
		Clauses(clause.Returning{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		UpdateColumns(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || len(records) == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrInsufficientStock
	}
	return records[0].toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toRecord(p *domain.Product) productRecord {
	rec := productRecord{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Size:          p.Size,
		Color:         p.Color,
		Tags:          pq.StringArray(p.Tags),
	}
	if p.DiscountedPrice != nil {
		rec.DiscountedPrice = decimal.NewNullDecimal(*p.DiscountedPrice)
	}
	if rec.Tags == nil {
		rec.Tags = pq.StringArray{}
	}
	return rec
}

func (r productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		ImageURL:      r.ImageURL,
		Size:          r.Size,
		Color:         r.Color,
		Tags:          []string(r.Tags),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.DiscountedPrice.Valid {
		d := r.DiscountedPrice.Decimal
		p.DiscountedPrice = &d
	}
	return p
}

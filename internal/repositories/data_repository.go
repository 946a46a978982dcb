package repositories

import (
	"context"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"go.uber.org/zap"
)

// DataRepository defines the product catalogue, settings and backup operations
type DataRepository interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	SaveProducts(ctx context.Context, products []models.Product) error
	AddProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, productID string, update func(*models.Product)) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	GetSettings(ctx context.Context) (map[string]any, error)
	SaveSettings(ctx context.Context, settings map[string]any) error

	ExportData(ctx context.Context) (*models.Backup, error)
	ImportData(ctx context.Context, backup *models.Backup) error
	ClearAll(ctx context.Context) error
}

// KVDataRepository implements DataRepository on a key-value store
type KVDataRepository struct {
	base
}

// NewDataRepository creates a new data repository
func NewDataRepository(store kvstore.Store, opts ...Option) *KVDataRepository {
	return &KVDataRepository{base: newBase(store, opts)}
}

func (r *KVDataRepository) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if _, err := r.load(ctx, r.keys.Products(), &products); err != nil {
		return []models.Product{}, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (r *KVDataRepository) SaveProducts(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	return r.save(ctx, r.keys.Products(), products)
}

func (r *KVDataRepository) AddProduct(ctx context.Context, product *models.Product) error {
	products, err := r.productsLenient(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.ID == product.ID {
			return ErrAlreadyExists
		}
	}
	return r.SaveProducts(ctx, append(products, *product))
}

// UpdateProduct applies update to the product with productID.
func (r *KVDataRepository) UpdateProduct(ctx context.Context, productID string, update func(*models.Product)) (*models.Product, error) {
	products, err := r.productsLenient(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID != productID {
			continue
		}
		update(&products[i])
		products[i].ID = productID
		if err := r.SaveProducts(ctx, products); err != nil {
			return nil, err
		}
		updated := products[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

func (r *KVDataRepository) DeleteProduct(ctx context.Context, productID string) error {
	products, err := r.productsLenient(ctx)
	if err != nil {
		return err
	}
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.ID != productID {
			filtered = append(filtered, p)
		}
	}
	return r.SaveProducts(ctx, filtered)
}

func (r *KVDataRepository) GetSettings(ctx context.Context) (map[string]any, error) {
	settings := map[string]any{}
	if _, err := r.load(ctx, r.keys.Settings(), &settings); err != nil {
		return map[string]any{}, err
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func (r *KVDataRepository) SaveSettings(ctx context.Context, settings map[string]any) error {
	if settings == nil {
		settings = map[string]any{}
	}
	return r.save(ctx, r.keys.Settings(), settings)
}

// ExportData copies the raw stored user, products and settings values.
func (r *KVDataRepository) ExportData(ctx context.Context) (*models.Backup, error) {
	backup := &models.Backup{ExportDate: r.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")}
	for key, dst := range map[string]**string{
		r.keys.CurrentUser(): &backup.User,
		r.keys.Products():    &backup.Products,
		r.keys.Settings():    &backup.Settings,
	} {
		raw, ok, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			*dst = &raw
		}
	}
	return backup, nil
}

// ImportData writes back the non-empty values of backup verbatim.
func (r *KVDataRepository) ImportData(ctx context.Context, backup *models.Backup) error {
	for key, raw := range map[string]*string{
		r.keys.CurrentUser(): backup.User,
		r.keys.Products():    backup.Products,
		r.keys.Settings():    backup.Settings,
	} {
		if raw == nil || *raw == "" {
			continue
		}
		if err := r.store.Set(ctx, key, *raw); err != nil {
			return err
		}
	}
	r.logger.Info("backup imported", zap.String("export_date", backup.ExportDate))
	return nil
}

// ClearAll removes the current user, products, account registry and settings.
func (r *KVDataRepository) ClearAll(ctx context.Context) error {
	for _, key := range []string{r.keys.CurrentUser(), r.keys.Products(), r.keys.Accounts(), r.keys.Settings()} {
		if err := r.remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *KVDataRepository) productsLenient(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if _, err := r.loadLenient(ctx, r.keys.Products(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

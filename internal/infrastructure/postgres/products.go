package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/competitive-edge/backend/internal/domain"
)

// ProductRepository persists products with owner scoping on every query.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", product.ID, product.OwnerID).
		Select("SKU", "Name", "ProductType", "Schema", "Data", "UpdatedAt").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes a product together with its listings and their price
// history, in one transaction.
func (r *ProductRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listingIDs []uuid.UUID
		if err := tx.Model(&domain.CompetitorListing{}).
			Where("product_id = ? AND owner_id = ?", id, ownerID).
			Pluck("id", &listingIDs).Error; err != nil {
			return err
		}

		if len(listingIDs) > 0 {
			if err := tx.Where("listing_id IN ?", listingIDs).
				Delete(&domain.PriceHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", listingIDs).
				Delete(&domain.CompetitorListing{}).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).
			Delete(&domain.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	})
}

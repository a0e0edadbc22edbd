package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/competitive-edge/backend/internal/domain"
)

// ListingRepository persists competitor listings. The (owner_id, url) unique
// index on the table enforces one listing per URL per owner.
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.CompetitorListing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(listing).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateURL
	}
	return err
}

func (r *ListingRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.CompetitorListing, error) {
	var listing domain.CompetitorListing
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) ListByProduct(ctx context.Context, ownerID, productID uuid.UUID) ([]domain.CompetitorListing, error) {
	var listings []domain.CompetitorListing
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND owner_id = ?", productID, ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CompetitorListing, error) {
	var listings []domain.CompetitorListing
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.CompetitorListing) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", listing.ID, listing.OwnerID).
		Select("RetailerName", "ProductName", "Data", "ImageURL", "LastCrawledAt").
		Updates(listing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// Delete removes a listing and cascades its price history.
func (r *ListingRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).
			Delete(&domain.CompetitorListing{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrListingNotFound
		}
		return tx.Where("listing_id = ?", id).Delete(&domain.PriceHistory{}).Error
	})
}

// PriceHistoryRepository is append-only: snapshots are never updated or
// deleted individually.
type PriceHistoryRepository struct {
	db *gorm.DB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(db *gorm.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

func (r *PriceHistoryRepository) Append(ctx context.Context, record *domain.PriceHistory) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PriceHistoryRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.PriceHistory, error) {
	var records []domain.PriceHistory
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("recorded_at ASC").
		Find(&records).Error
	return records, err
}

func (r *PriceHistoryRepository) ListByListings(ctx context.Context, listingIDs []uuid.UUID) ([]domain.PriceHistory, error) {
	if len(listingIDs) == 0 {
		return []domain.PriceHistory{}, nil
	}
	var records []domain.PriceHistory
	err := r.db.WithContext(ctx).
		Where("listing_id IN ?", listingIDs).
		Order("recorded_at ASC").
		Find(&records).Error
	return records, err
}

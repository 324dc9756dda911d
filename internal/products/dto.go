package product

import (
	"time"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the public catalog projection of a product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount"`
	FinalPrice  decimal.Decimal `json:"final_price"`
	Stock       int             `json:"stock"`
	IsFeatured  bool            `json:"is_featured"`
	ImageURLs   []string        `json:"image_urls"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toDTO(p models.Product) ProductDTO {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return ProductDTO{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		FinalPrice:  p.FinalPrice(),
		Stock:       p.Stock,
		IsFeatured:  p.IsFeatured,
		ImageURLs:   urls,
		CreatedAt:   p.CreatedAt,
	}
}

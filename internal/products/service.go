package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarlabs/bazaar-backend/pkg/errors"
	"github.com/bazaarlabs/bazaar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the public catalog read surface.
type Service interface {
	ListProducts(ctx context.Context, filters ListFilters, page pagination.Params) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

// ProductPage is one page of catalog results. NextCursor is empty on the
// last page.
type ProductPage struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type catalogReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListApproved(ctx context.Context, filters ListFilters, limit int, cursor *pagination.Cursor) ([]models.Product, error)
}

type service struct {
	repo catalogReader
}

// NewService constructs a catalog service instance.
func NewService(repo catalogReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, filters ListFilters, page pagination.Params) (*ProductPage, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.ListApproved(ctx, filters, pagination.LimitWithBuffer(page.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return &ProductPage{Items: dtos, NextCursor: next}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	dto := toDTO(*row)
	return &dto, nil
}

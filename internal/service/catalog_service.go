package service

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the product data access used by CatalogService
type CatalogStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// CatalogService handles product management
type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest represents a new catalog entry
type CreateProductRequest struct {
	Name       *string     `json:"name"`
	Price      models.Flex `json:"price"`
	Image      string      `json:"image"`
	ModelImage string      `json:"model_image"`
	Desc       string      `json:"desc"`
	Color      string      `json:"color"`
	Sizes      string      `json:"sizes"`
	Season     string      `json:"season"`
	Type       string      `json:"type"`
	Status     string      `json:"status"`
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return p, nil
}

// CreateProduct validates and inserts a product, returning its id
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	var missing []string
	if req.Name == nil {
		missing = append(missing, "name")
	}
	if req.Price.Empty() {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return 0, newValidationError("name and price required", missing...)
	}
	price, ok := req.Price.Decimal()
	if !ok || price.IsNegative() {
		return 0, newValidationError("price must be a non-negative number", "price")
	}

	status := req.Status
	if status == "" {
		status = models.ProductStatusIn
	}

	p := &models.Product{
		Name:        *req.Name,
		Price:       price,
		Image:       req.Image,
		ModelImage:  req.ModelImage,
		Description: req.Desc,
		Color:       req.Color,
		Sizes:       req.Sizes,
		Season:      req.Season,
		Type:        req.Type,
		Status:      status,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return p.ID, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return translateStoreErr(err)
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ikkim/udonggeum-storefront/internal/app/mapper"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ImageResolver picks and resolves the display image of a product.
type ImageResolver interface {
	ProductImage(ctx context.Context, p model.Product) (string, bool)
}

type ProductListQuery struct {
	Page       int
	PageSize   int
	CategoryID *int64
	Search     string
	SortBy     string
}

func (q *ProductListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
}

func (q ProductListQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.CategoryID != nil {
		v.Set("categoryId", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	return v
}

type ProductService interface {
	ListProducts(ctx context.Context, token string, q ProductListQuery) (*model.Page[model.Product], error)
	GetProduct(ctx context.Context, token string, productID int64) (*model.Product, error)
	ListCategories(ctx context.Context, token string) ([]model.Category, error)
}

type productService struct {
	api    *upstream.Client
	images ImageResolver
}

func NewProductService(api *upstream.Client, images ImageResolver) ProductService {
	return &productService{
		api:    api,
		images: images,
	}
}

func (s *productService) ListProducts(ctx context.Context, token string, q ProductListQuery) (*model.Page[model.Product], error) {
	q.normalize()

	var raw interface{}
	if err := s.api.GetJSON(ctx, "/products", token, q.values(), &raw); err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"page":      q.Page,
			"page_size": q.PageSize,
		})
		return nil, err
	}

	products, total := mapper.ProductsFromRaw(raw)
	for i := range products {
		s.resolveImage(ctx, &products[i])
	}

	return &model.Page[model.Product]{
		Items:      products,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

// GetProduct fetches GET /products/{id}. The returned ImageURL is the
// resolved display image.
func (s *productService) GetProduct(ctx context.Context, token string, productID int64) (*model.Product, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}

	var raw interface{}
	path := fmt.Sprintf("/products/%d", productID)
	if err := s.api.GetJSON(ctx, path, token, nil, &raw); err != nil {
		return nil, err
	}
	fields, ok := mapper.AsFields(raw)
	if !ok {
		return nil, fmt.Errorf("%w: product %d is not an object", upstream.ErrMalformedBody, productID)
	}

	product := mapper.ProductFromRaw(fields)
	if product.ID == 0 {
		product.ID = productID
	}
	s.resolveImage(ctx, &product)
	return &product, nil
}

func (s *productService) ListCategories(ctx context.Context, token string) ([]model.Category, error) {
	var raw interface{}
	if err := s.api.GetJSON(ctx, "/categories", token, nil, &raw); err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return mapper.CategoriesFromRaw(raw), nil
}

func (s *productService) resolveImage(ctx context.Context, p *model.Product) {
	if s.images == nil {
		return
	}
	if img, ok := s.images.ProductImage(ctx, *p); ok {
		p.ImageURL = &img
	} else {
		p.ImageURL = nil
	}
}

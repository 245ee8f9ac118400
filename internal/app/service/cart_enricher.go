package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/udonggeum-storefront/internal/app/mapper"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/metrics"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var ErrMalformedCart = errors.New("malformed cart payload")

// CatalogReader looks up one product with display-ready fields: ImageURL
// holds the resolved public image when the product has one.
type CatalogReader interface {
	GetProduct(ctx context.Context, token string, productID int64) (*model.Product, error)
}

// CartEnricher normalizes raw carts and fills missing display fields from the
// catalog. It holds no per-request state and is safe for concurrent use.
type CartEnricher struct {
	catalog CatalogReader
	observe func(result string)
}

func NewCartEnricher(catalog CatalogReader, observe func(result string)) *CartEnricher {
	if observe == nil {
		observe = func(string) {}
	}
	return &CartEnricher{
		catalog: catalog,
		observe: observe,
	}
}

// NormalizeAndEnrich decodes the storefront API's cart body and returns the
// canonical cart. Only an undecodable body is an error; catalog failures
// leave the affected item as the API sent it.
func (e *CartEnricher) NormalizeAndEnrich(ctx context.Context, raw []byte, token string) (*model.Cart, error) {
	fields, err := mapper.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	cart := mapper.CartFromRaw(fields)
	cart.CartItems = e.Enrich(ctx, cart.CartItems, token)
	return cart, nil
}

// Enrich returns a new slice of the same length and order. Items that are
// complete or have no productId are copied unchanged; every other item gets
// its own catalog lookup, all lookups running concurrently.
func (e *CartEnricher) Enrich(ctx context.Context, items []model.CartItem, token string) []model.CartItem {
	out := make([]model.CartItem, len(items))
	copy(out, items)

	wanted := make([]*int64, len(out))
	for idx, item := range out {
		if item.Complete() {
			continue
		}
		if item.ProductID == nil {
			e.observe(metrics.EnrichSkipped)
			continue
		}
		wanted[idx] = item.ProductID
	}

	for idx, product := range lookupProducts(ctx, e.catalog, token, wanted, e.observe) {
		if product != nil {
			out[idx] = mergeProduct(out[idx], product)
		}
	}
	return out
}

// lookupProducts fetches every non-nil product id concurrently, one lookup
// per entry. The result is index-aligned with ids; a skipped or failed
// lookup leaves nil there. Failures are logged and never cancel siblings.
func lookupProducts(ctx context.Context, catalog CatalogReader, token string, ids []*int64, observe func(result string)) []*model.Product {
	products := make([]*model.Product, len(ids))
	if catalog == nil {
		return products
	}

	var g errgroup.Group
	for idx, id := range ids {
		if id == nil {
			continue
		}
		g.Go(func() error {
			product, err := catalog.GetProduct(ctx, token, *id)
			if err != nil {
				if observe != nil {
					observe(metrics.EnrichFailed)
				}
				logger.Warn("Catalog lookup failed", map[string]interface{}{
					"product_id": *id,
					"position":   idx,
					"error":      err.Error(),
				})
				return nil
			}
			if observe != nil {
				observe(metrics.EnrichOK)
			}
			products[idx] = product
			return nil
		})
	}
	// Lookups never return an error; a failed one already left its slot nil.
	_ = g.Wait()

	return products
}

// mergeProduct fills only the fields the cart item lacks. A value the
// storefront API already sent always wins.
func mergeProduct(item model.CartItem, p *model.Product) model.CartItem {
	if p == nil {
		return item
	}
	if (item.ProductName == nil || *item.ProductName == "") && p.Name != "" {
		item.ProductName = stringPtr(p.Name)
	}
	if item.Price == nil && p.Price != nil {
		item.Price = floatPtr(*p.Price)
	}
	if item.ImageURL == nil && p.ImageURL != nil && *p.ImageURL != "" {
		item.ImageURL = stringPtr(*p.ImageURL)
	}
	if item.CategoryID == nil && p.CategoryID != nil {
		item.CategoryID = intPtr(*p.CategoryID)
	}
	if item.CategoryName == nil && p.CategoryName != nil {
		item.CategoryName = stringPtr(*p.CategoryName)
	}
	return item
}

func stringPtr(s string) *string  { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(n int64) *int64       { return &n }

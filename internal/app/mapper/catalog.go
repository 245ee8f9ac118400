package mapper

import (
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
)

var (
	productIDKeys       = Keys("id", "productId")
	productNameKeys     = Keys("name", "productName", "title")
	productDescKeys     = Keys("description")
	productPriceKeys    = Keys("price", "unitPrice")
	productImageKeys    = Keys("imageUrl", "imageURL")
	productMediaKeys    = Keys("mediaFiles", "media", "images")
	productCategoryKeys = Keys("categoryId", "categoryID")
	productCatNameKeys  = Keys("categoryName")
	productStockKeys    = Keys("stockQuantity", "stock", "quantityInStock")
	mediaURLKeys        = Keys("url", "fileUrl", "path")
	mediaTypeKeys       = Keys("mediaTyp", "mediaType", "type")
	categoryIDKeys      = Keys("id", "categoryId")
	categoryNameKeys    = Keys("name", "categoryName")
	categoryParentKeys  = Keys("parentId", "parentCategoryId")
)

// ProductFromRaw maps a catalog product. The category may come flat
// (categoryId/categoryName) or nested under "category".
func ProductFromRaw(raw Fields) model.Product {
	p := model.Product{
		Price:         raw.FloatPtr(productPriceKeys...),
		ImageURL:      raw.StringPtr(productImageKeys...),
		CategoryID:    raw.IntPtr(productCategoryKeys...),
		CategoryName:  raw.StringPtr(productCatNameKeys...),
		StockQuantity: raw.IntPtr(productStockKeys...),
	}
	p.ID, _ = raw.Int(productIDKeys...)
	p.Name, _ = raw.Text(productNameKeys...)
	p.Description, _ = raw.String(productDescKeys...)

	if category, ok := raw.Object(Keys("category")...); ok {
		if p.CategoryID == nil {
			p.CategoryID = category.IntPtr(categoryIDKeys...)
		}
		if p.CategoryName == nil {
			p.CategoryName = category.StringPtr(categoryNameKeys...)
		}
	}

	if media, ok := raw.Array(productMediaKeys...); ok {
		p.MediaFiles = make([]model.MediaFile, 0, len(media))
		for _, el := range media {
			switch m := el.(type) {
			case string:
				p.MediaFiles = append(p.MediaFiles, model.MediaFile{URL: m})
			default:
				f, ok := AsFields(m)
				if !ok {
					continue
				}
				url, _ := f.String(mediaURLKeys...)
				typ, _ := f.String(mediaTypeKeys...)
				p.MediaFiles = append(p.MediaFiles, model.MediaFile{URL: url, MediaTyp: typ})
			}
		}
	}
	return p
}

func ProductsFromRaw(v interface{}) ([]model.Product, int64) {
	items, total := List(v)
	out := make([]model.Product, 0, len(items))
	for _, f := range items {
		out = append(out, ProductFromRaw(f))
	}
	return out, total
}

func CategoryFromRaw(raw Fields) model.Category {
	c := model.Category{ParentID: raw.IntPtr(categoryParentKeys...)}
	c.ID, _ = raw.Int(categoryIDKeys...)
	c.Name, _ = raw.Text(categoryNameKeys...)
	return c
}

func CategoriesFromRaw(v interface{}) []model.Category {
	items, _ := List(v)
	out := make([]model.Category, 0, len(items))
	for _, f := range items {
		out = append(out, CategoryFromRaw(f))
	}
	return out
}

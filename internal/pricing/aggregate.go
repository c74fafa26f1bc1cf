package pricing

import "github.com/clothify/shop-api/internal/model"

// Catalog is the in-memory product data Enrich joins cart lines against.
type Catalog struct {
	Products []model.Product
	Colors   []model.Color
	Sizes    []model.Size
}

// Enrich joins raw cart lines with the catalog. For each line it resolves
// the variant, its product, color and size, and the inventory record whose
// variant id matches; the inventory quantity becomes the line's MaxStock.
// A line whose variant has no inventory record gets a nil MaxStock,
// meaning unbounded.
//
// Lines whose variant cannot be resolved are not dropped: they come back
// with Unavailable set so callers can tell the user the item is no longer
// sold instead of silently shrinking the cart.
func Enrich(items []model.CartItem, catalog Catalog) []model.EnrichedCartItem {
	variants := make(map[int64]*model.ProductVariant)
	variantProduct := make(map[int64]*model.Product)
	for i := range catalog.Products {
		p := &catalog.Products[i]
		for j := range p.Variants {
			v := &p.Variants[j]
			variants[v.ID] = v
			variantProduct[v.ID] = p
		}
	}
	colors := make(map[int64]*model.Color, len(catalog.Colors))
	for i := range catalog.Colors {
		colors[catalog.Colors[i].ID] = &catalog.Colors[i]
	}
	sizes := make(map[int64]*model.Size, len(catalog.Sizes))
	for i := range catalog.Sizes {
		sizes[catalog.Sizes[i].ID] = &catalog.Sizes[i]
	}

	enriched := make([]model.EnrichedCartItem, 0, len(items))
	for _, item := range items {
		variant, ok := variants[item.VariantID]
		if !ok {
			enriched = append(enriched, model.EnrichedCartItem{
				CartItem:    item,
				Unavailable: true,
			})
			continue
		}

		product := variantProduct[item.VariantID]
		var maxStock *int
		for _, inv := range product.Inventories {
			if inv.VariantID == variant.ID {
				qty := inv.Quantity
				maxStock = &qty
				break
			}
		}

		enriched = append(enriched, model.EnrichedCartItem{
			CartItem: item,
			Product:  product,
			Variant:  variant,
			Color:    colors[variant.ColorID],
			Size:     sizes[variant.SizeID],
			MaxStock: maxStock,
		})
	}
	return enriched
}

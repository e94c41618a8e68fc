package model

// Vendor identifiers. These tag every product with its origin and key the
// persisted chunk documents, so they must stay stable across releases.
const (
	APIForpromo = "forpromo"
	APICdopromo = "cdopromo"
	APIDvela    = "dvela"
	APIInnova   = "innova"
)

// PlaceholderImage is served when a vendor ships a product with no usable
// image at all.
const PlaceholderImage = "/assets/img/no-image.png"

// VariantRow is one color row of a product's stock table. Quantity is always
// resolved from the vendor's stock source, never taken from the catalog
// payload.
type VariantRow struct {
	Color          string  `json:"color"`
	ColorName      string  `json:"colorName"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	SKU            string  `json:"sku,omitempty"`
	Type           string  `json:"type,omitempty"`
	InTracking     bool    `json:"inTracking,omitempty"`
	StatusTracking string  `json:"statusTracking,omitempty"`
}

// ImageSet groups the image URLs a vendor publishes for one color variant.
type ImageSet struct {
	URLImage []string `json:"urlImage"`
	Color    string   `json:"color,omitempty"`
	ID       string   `json:"id,omitempty"`
}

// Product is the normalized shape every vendor record is mapped into.
type Product struct {
	Api           string       `json:"api"`
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Material      string       `json:"material"`
	Printing      string       `json:"printing"`
	Size          string       `json:"size"`
	AreaPrinting  string       `json:"areaPrinting"`
	Category      []string     `json:"category"`
	Images        []ImageSet   `json:"images"`
	MainImage     string       `json:"mainImage"`
	Discount      *float64     `json:"discount"`
	TableQuantity []VariantRow `json:"tableQuantity"`
	TotalProducts int          `json:"totalProducts"`
}

// SumQuantities returns the stock total across all variant rows. Product
// construction must set TotalProducts to exactly this value.
func SumQuantities(rows []VariantRow) int {
	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}

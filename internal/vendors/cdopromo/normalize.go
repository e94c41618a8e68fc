package cdopromo

import (
	"promostore/internal/model"
	"promostore/internal/textutil"
)

type rawProduct struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Materials    string   `json:"materials"`
	Printing     string   `json:"printing_method"`
	Measures     string   `json:"measures"`
	PrintingArea string   `json:"printing_area"`
	Category     string   `json:"category"`
	Discount     *float64 `json:"discount"`
	MainImage    string   `json:"main_image"`
	Images       []string `json:"images"`
	Variants     []struct {
		Material  string  `json:"material"`
		Color     string  `json:"color"`
		ColorName string  `json:"color_name"`
		Price     float64 `json:"net_price"`
	} `json:"variants"`
}

// normalize joins one cdopromo record against the stock feed keyed by
// material code. A variant with no stock row is excluded outright rather
// than defaulted to zero; the storefront treats unknown stock as
// unsellable, and that policy predates this service.
func normalize(raw rawProduct, stockByMaterial map[string]int) model.Product {
	var categories []string
	if raw.Category != "" {
		categories = []string{textutil.TitleCase(raw.Category)}
	} else {
		categories = []string{}
	}

	images := make([]model.ImageSet, 0, len(raw.Images))
	for _, u := range raw.Images {
		if u == "" {
			continue
		}
		images = append(images, model.ImageSet{URLImage: []string{u}})
	}

	rows := make([]model.VariantRow, 0, len(raw.Variants))
	for _, v := range raw.Variants {
		stock, ok := stockByMaterial[v.Material]
		if !ok {
			continue
		}
		rows = append(rows, model.VariantRow{
			Color:     v.Color,
			ColorName: textutil.TitleCase(v.ColorName),
			Quantity:  stock,
			Price:     v.Price,
			SKU:       v.Material,
		})
	}

	main := raw.MainImage
	if main == "" && len(images) > 0 {
		main = images[0].URLImage[0]
	}
	if main == "" {
		main = model.PlaceholderImage
	}

	return model.Product{
		Api:           model.APICdopromo,
		ID:            raw.Code,
		Name:          textutil.TitleCase(raw.Name),
		Description:   textutil.StripHTML(raw.Description),
		Material:      textutil.Decode(raw.Materials),
		Printing:      textutil.Decode(raw.Printing),
		Size:          textutil.Decode(raw.Measures),
		AreaPrinting:  textutil.Decode(raw.PrintingArea),
		Category:      categories,
		Images:        images,
		MainImage:     main,
		Discount:      raw.Discount,
		TableQuantity: rows,
		TotalProducts: model.SumQuantities(rows),
	}
}

package forpromo

import (
	"promostore/internal/model"
	"promostore/internal/textutil"
)

type rawProduct struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Material    string   `json:"material"`
	Printing    string   `json:"printing_type"`
	Size        string   `json:"size"`
	PrintArea   string   `json:"print_area"`
	MainImage   string   `json:"main_image"`
	Discount    *float64 `json:"discount"`
	Categories  []struct {
		Name string `json:"name"`
	} `json:"categories"`
	Images []struct {
		URL   string `json:"url"`
		Color string `json:"color"`
	} `json:"images"`
	Variants []struct {
		ColorCode string  `json:"color_code"`
		ColorName string  `json:"color_name"`
		Stock     int     `json:"stock"`
		Price     float64 `json:"price"`
		SKU       string  `json:"sku"`
	} `json:"variants"`
}

// normalize maps one forpromo record into the common shape. Stock comes
// inline with each variant, so no auxiliary join is needed for this vendor.
func normalize(raw rawProduct) model.Product {
	categories := make([]string, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		if c.Name == "" {
			continue
		}
		categories = append(categories, textutil.TitleCase(c.Name))
	}

	images := make([]model.ImageSet, 0, len(raw.Images))
	for _, img := range raw.Images {
		if img.URL == "" {
			continue
		}
		images = append(images, model.ImageSet{
			URLImage: []string{img.URL},
			Color:    img.Color,
		})
	}

	rows := make([]model.VariantRow, 0, len(raw.Variants))
	for _, v := range raw.Variants {
		rows = append(rows, model.VariantRow{
			Color:     v.ColorCode,
			ColorName: textutil.TitleCase(v.ColorName),
			Quantity:  v.Stock,
			Price:     v.Price,
			SKU:       v.SKU,
		})
	}

	return model.Product{
		Api:           model.APIForpromo,
		ID:            raw.SKU,
		Name:          textutil.TitleCase(raw.Name),
		Description:   textutil.StripHTML(raw.Description),
		Material:      textutil.Decode(raw.Material),
		Printing:      textutil.Decode(raw.Printing),
		Size:          textutil.Decode(raw.Size),
		AreaPrinting:  textutil.Decode(raw.PrintArea),
		Category:      categories,
		Images:        images,
		MainImage:     mainImage(raw, images),
		Discount:      raw.Discount,
		TableQuantity: rows,
		TotalProducts: model.SumQuantities(rows),
	}
}

// mainImage precedence: vendor primary image, first normalized image,
// shared placeholder.
func mainImage(raw rawProduct, images []model.ImageSet) string {
	if raw.MainImage != "" {
		return raw.MainImage
	}
	if len(images) > 0 && len(images[0].URLImage) > 0 {
		return images[0].URLImage[0]
	}
	return model.PlaceholderImage
}

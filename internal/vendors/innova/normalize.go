package innova

import (
	"strings"

	"promostore/internal/model"
	"promostore/internal/textutil"
)

type rawProduct struct {
	IDProduct    string   `json:"idProduct"`
	NameProduct  string   `json:"nameProduct"`
	Description  string   `json:"descriptionProduct"`
	Materials    string   `json:"materials"`
	Printing     string   `json:"printing"`
	Size         string   `json:"size"`
	PrintingArea string   `json:"printingArea"`
	Categories   string   `json:"categories"`
	Images       []string `json:"images"`
	Discount     *float64 `json:"discount"`
	Colors       []struct {
		Color    string  `json:"color"`
		Name     string  `json:"name"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"colors"`
}

// normalize maps one innova record. Categories arrive as one
// comma-separated string; images as a flat URL list with no color grouping.
func normalize(raw rawProduct) model.Product {
	var categories []string
	for _, c := range strings.Split(raw.Categories, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		categories = append(categories, textutil.TitleCase(c))
	}
	if categories == nil {
		categories = []string{}
	}

	images := make([]model.ImageSet, 0, 1)
	if len(raw.Images) > 0 {
		images = append(images, model.ImageSet{URLImage: raw.Images})
	}

	rows := make([]model.VariantRow, 0, len(raw.Colors))
	for _, c := range raw.Colors {
		rows = append(rows, model.VariantRow{
			Color:     c.Color,
			ColorName: textutil.TitleCase(c.Name),
			Quantity:  c.Quantity,
			Price:     c.Price,
		})
	}

	main := model.PlaceholderImage
	if len(raw.Images) > 0 && raw.Images[0] != "" {
		main = raw.Images[0]
	}

	return model.Product{
		Api:           model.APIInnova,
		ID:            raw.IDProduct,
		Name:          textutil.TitleCase(raw.NameProduct),
		Description:   textutil.StripHTML(raw.Description),
		Material:      textutil.Decode(raw.Materials),
		Printing:      textutil.Decode(raw.Printing),
		Size:          textutil.Decode(raw.Size),
		AreaPrinting:  textutil.Decode(raw.PrintingArea),
		Category:      categories,
		Images:        images,
		MainImage:     main,
		Discount:      raw.Discount,
		TableQuantity: rows,
		TotalProducts: model.SumQuantities(rows),
	}
}

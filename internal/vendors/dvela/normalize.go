package dvela

import (
	"strconv"

	"promostore/internal/model"
	"promostore/internal/textutil"
)

type rawProduct struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Material     string   `json:"material"`
	Printing     string   `json:"printing"`
	Size         string   `json:"size"`
	PrintingArea string   `json:"printing_area"`
	CategoryIDs  []int    `json:"categories"`
	MainImage    string   `json:"main_image"`
	Discount     *float64 `json:"discount"`
	Skus         []struct {
		SKU       string   `json:"sku"`
		Color     string   `json:"color"`
		ColorName string   `json:"color_name"`
		Stock     int      `json:"stock"`
		Price     float64  `json:"price"`
		Images    []string `json:"images"`
	} `json:"skus"`
}

// normalize maps one dvela record, resolving category ids through the
// dictionary shipped in the same response. Unknown ids are dropped, not
// rendered as raw numbers.
func normalize(raw rawProduct, categoryNames map[int]string) model.Product {
	categories := make([]string, 0, len(raw.CategoryIDs))
	for _, id := range raw.CategoryIDs {
		name, ok := categoryNames[id]
		if !ok || name == "" {
			continue
		}
		categories = append(categories, textutil.TitleCase(name))
	}

	images := make([]model.ImageSet, 0, len(raw.Skus))
	rows := make([]model.VariantRow, 0, len(raw.Skus))
	for _, s := range raw.Skus {
		if len(s.Images) > 0 {
			images = append(images, model.ImageSet{
				URLImage: s.Images,
				Color:    s.Color,
				ID:       s.SKU,
			})
		}
		rows = append(rows, model.VariantRow{
			Color:     s.Color,
			ColorName: textutil.TitleCase(s.ColorName),
			Quantity:  s.Stock,
			Price:     s.Price,
			SKU:       s.SKU,
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
		Api:           model.APIDvela,
		ID:            strconv.Itoa(raw.ID),
		Name:          textutil.TitleCase(raw.Name),
		Description:   textutil.StripHTML(raw.Description),
		Material:      textutil.Decode(raw.Material),
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

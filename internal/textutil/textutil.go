package textutil

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// acronyms that must stay fully uppercase when a display name is title-cased.
// Matched case-insensitively per token.
var acronyms = map[string]string{
	"usb":   "USB",
	"usb-c": "USB-C",
	"led":   "LED",
	"lcd":   "LCD",
	"pvc":   "PVC",
	"abs":   "ABS",
	"eva":   "EVA",
	"pu":    "PU",
	"pp":    "PP",
	"tpu":   "TPU",
	"uv":    "UV",
	"xl":    "XL",
	"xxl":   "XXL",
	"gb":    "GB",
}

var titleCaser = cases.Title(language.Spanish)

// Decode resolves HTML named entities (accented Latin-1 letters included)
// left in vendor text fields.
func Decode(s string) string {
	return html.UnescapeString(s)
}

// TitleCase decodes entities and title-cases a display name, forcing known
// acronym tokens fully uppercase instead. Decoding happens first so entity
// sequences never leak into the casing pass.
func TitleCase(s string) string {
	s = Decode(s)
	if s == "" {
		return ""
	}
	words := strings.Fields(s)
	for i, w := range words {
		if up, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = up
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// StripHTML extracts the visible text of a vendor HTML description.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return Decode(strings.TrimSpace(s))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return Decode(strings.TrimSpace(s))
	}
	text := strings.TrimSpace(doc.Text())
	return Decode(text)
}

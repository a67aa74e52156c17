// Package export renders recipes as printable PDF documents.
package export

import (
	"bytes"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/tastybytes/backend/internal/models"
)

const (
	marginLeft = 14.0
	// content below this vertical position continues on a new page
	pageBottom = 270.0
	pageTop    = 20.0
	fontFamily = "Helvetica"
)

// Path separators are folded like whitespace so a title can never name a
// file outside the target directory or add segments to an object key.
var separatorRun = regexp.MustCompile(`[\s/\\]+`)

// Filename derives the download name of a recipe's PDF from its title.
func Filename(title string) string {
	return strings.ToLower(separatorRun.ReplaceAllString(title, "-")) + ".pdf"
}

// ContentDisposition returns the attachment header for a recipe's PDF.
// Non-ASCII names are encoded as RFC 2231 extended parameters.
func ContentDisposition(title string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": Filename(title)}); v != "" {
		return v
	}
	return "attachment"
}

// ContentType is the MIME type of exported documents.
const ContentType = "application/pdf"

// Export renders recipe as an A4 PDF. The output depends only on the
// recipe, so the same recipe always yields the same bytes.
func Export(recipe models.Recipe) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(recipe.CreatedAt)
	pdf.SetModificationDate(recipe.CreatedAt)
	pdf.SetTitle(recipe.Title, true)
	pdf.SetAuthor(recipe.AuthorName, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	w.render(recipe)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", recipe.Title, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write %q: %w", recipe.Title, err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (w *writer) pageWidth() float64 {
	width, _ := w.pdf.GetPageSize()
	return width
}

func (w *writer) centered(size float64, y float64, text string) {
	w.pdf.SetFont(fontFamily, "", size)
	text = w.tr(text)
	x := (w.pageWidth() - w.pdf.GetStringWidth(text)) / 2
	w.pdf.Text(x, y, text)
}

func (w *writer) heading(text string) {
	w.breakIfNeeded()
	w.pdf.SetFont(fontFamily, "", 12)
	w.pdf.Text(marginLeft, w.y, w.tr(text))
	w.y += 7
}

// line writes one 10pt line at the cursor and advances it by step.
func (w *writer) line(x float64, text string, step float64) {
	w.breakIfNeeded()
	w.pdf.SetFont(fontFamily, "", 10)
	w.pdf.Text(x, w.y, text)
	w.y += step
}

// wrapped writes text split to the printable width, with continuation lines
// indented by indent.
func (w *writer) wrapped(text string, indent, step float64) {
	w.pdf.SetFont(fontFamily, "", 10)
	width := w.pageWidth() - 2*marginLeft - indent
	// the translated text is cp1252, so it must be split as bytes
	lines := w.pdf.SplitLines([]byte(w.tr(text)), width)
	for i, l := range lines {
		x := marginLeft
		if i > 0 {
			x += indent
		}
		w.line(x, string(l), step)
	}
}

func (w *writer) breakIfNeeded() {
	if w.y > pageBottom {
		w.pdf.AddPage()
		w.y = pageTop
	}
}

func (w *writer) render(recipe models.Recipe) {
	w.centered(20, 20, recipe.Title)
	w.centered(10, 28, fmt.Sprintf("By: %s • Created: %s",
		recipe.AuthorName, recipe.CreatedAt.Format("1/2/2006")))

	dietary := "Non-Vegetarian"
	if recipe.IsVegetarian {
		dietary = "Vegetarian"
	}
	w.centered(12, 35, dietary+" Recipe")

	w.y = 45
	w.heading("Description:")
	w.wrapped(recipe.Description, 0, 5)
	w.y += 5

	w.heading("Cooking Information:")
	w.line(marginLeft, w.tr(fmt.Sprintf("Prep Time: %d minutes", recipe.PrepTime)), 5)
	w.line(marginLeft, w.tr(fmt.Sprintf("Cook Time: %d minutes", recipe.CookTime)), 5)
	w.line(marginLeft, w.tr(fmt.Sprintf("Total Time: %d minutes", recipe.TotalTime())), 5)
	w.line(marginLeft, w.tr(fmt.Sprintf("Servings: %d", recipe.Servings)), 10)

	w.heading("Ingredients:")
	for _, ingredient := range recipe.Ingredients {
		w.wrapped("• "+ingredient, 3, 6)
	}
	w.y += 5

	w.heading("Instructions:")
	for i, instruction := range recipe.Instructions {
		w.wrapped(fmt.Sprintf("%d. %s", i+1, instruction), 5, 7)
	}
}

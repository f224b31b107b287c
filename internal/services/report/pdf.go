package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/models"
)

// Layout constants (A4 portrait, point units). Column positions and the
// page-break bound match the application's established report layout.
const (
	marginLeft  = 50.0
	marginRight = 550.0
	colDate     = 50.0
	colCategory = 150.0
	colDesc     = 280.0
	colAmount   = 450.0
	amountWidth = 90.0
	descWidth   = 160.0
	tableTop    = 150.0
	rowStep     = 20.0
	pageBottom  = 700.0
	pageRestart = 50.0
)

// Palette
var (
	colorTitle   = rgb{30, 58, 138}   // #1e3a8a
	colorSub     = rgb{68, 68, 68}    // #444
	colorRule    = rgb{204, 204, 204} // #ccc
	colorBlack   = rgb{0, 0, 0}
	colorIncome  = rgb{16, 185, 129} // #10b981
	colorExpense = rgb{239, 68, 68}  // #ef4444
)

type rgb struct{ r, g, b int }

// spanishMonths indexes month names by time.Month-1. Go has no locale data
// for month names; the report is Spanish-facing.
var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// monthTitle returns the capitalized Spanish month name.
func monthTitle(month int) string {
	name := spanishMonths[month-1]
	return strings.ToUpper(name[:1]) + name[1:]
}

// document renders one monthly report.
type document struct {
	user   *models.UserProfile
	year   int
	month  int
	txs    []*models.Transaction
	totals Totals
	logger *common.Logger

	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func newDocument(user *models.UserProfile, year, month int, txs []*models.Transaction, totals Totals, logger *common.Logger) *document {
	return &document{
		user:   user,
		year:   year,
		month:  month,
		txs:    txs,
		totals: totals,
		logger: logger,
	}
}

// render draws the full document and streams it to w. fpdf buffers
// internally, so nothing reaches w unless rendering succeeds.
func (d *document) render(w io.Writer) error {
	d.pdf = fpdf.New("P", "pt", "A4", "")
	d.tr = d.pdf.UnicodeTranslatorFromDescriptor("")
	d.pdf.SetAutoPageBreak(false, 0)
	d.pdf.AddPage()

	d.header()
	d.columnHeaders()
	d.rows()
	d.footer()

	return d.pdf.Output(w)
}

func (d *document) setColor(c rgb) {
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

// text draws s with its top-left corner at (x, y), pdfkit-style.
func (d *document) text(x, y float64, s string) {
	_, size := d.pdf.GetFontSize()
	d.pdf.Text(x, y+size, d.tr(s))
}

// textRight draws s right-aligned inside [x, x+width].
func (d *document) textRight(x, width, y float64, s string) {
	t := d.tr(s)
	d.text(x+width-d.pdf.GetStringWidth(t), y, s)
}

func (d *document) centered(y float64, s string) {
	pageWidth, _ := d.pdf.GetPageSize()
	t := d.tr(s)
	d.text((pageWidth-d.pdf.GetStringWidth(t))/2, y, s)
}

func (d *document) rule(y float64) {
	d.pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	d.pdf.Line(marginLeft, y, marginRight, y)
}

func (d *document) header() {
	d.pdf.SetFont("Helvetica", "B", 20)
	d.setColor(colorTitle)
	d.centered(40, "MI BOLSILLO")

	d.pdf.SetFont("Helvetica", "", 12)
	d.setColor(colorSub)
	d.centered(68, fmt.Sprintf("Reporte de Movimientos - %s %d", monthTitle(d.month), d.year))

	d.pdf.SetFont("Helvetica", "", 10)
	d.textRight(colAmount, amountWidth, 95, "Generado: "+time.Now().Format("02/01/2006"))
	d.textRight(colAmount, amountWidth, 110, "Usuario: "+d.user.DisplayName())
}

func (d *document) columnHeaders() {
	d.y = tableTop

	d.pdf.SetFont("Helvetica", "B", 10)
	d.setColor(colorBlack)
	d.text(colDate, d.y, "Fecha")
	d.text(colCategory, d.y, "Categoría")
	d.text(colDesc, d.y, "Descripción")
	d.textRight(colAmount, amountWidth, d.y, "Monto")

	d.rule(d.y + 15)
	d.y += 25
	d.pdf.SetFont("Helvetica", "", 10)
}

func (d *document) rows() {
	for _, tx := range d.txs {
		if d.y > pageBottom {
			d.pdf.AddPage()
			d.y = pageRestart
		}

		categoryName := "Varios"
		if tx.Category != nil {
			categoryName = tx.Category.Name
		}
		description := tx.Description
		if description == "" {
			description = "-"
		}

		d.setColor(colorBlack)
		d.text(colDate, d.y, tx.Date.Local().Format("02/01/2006"))
		d.text(colCategory, d.y, categoryName)
		d.text(colDesc, d.y, d.ellipsize(description, descWidth))

		if tx.IsExpense() {
			d.setColor(colorExpense)
			d.textRight(colAmount, amountWidth, d.y, "-$"+tx.Amount.StringFixed(2))
		} else {
			d.setColor(colorIncome)
			d.textRight(colAmount, amountWidth, d.y, "+$"+tx.Amount.StringFixed(2))
		}

		d.y += rowStep
	}
}

func (d *document) footer() {
	d.rule(d.y)
	d.y += 10

	d.pdf.SetFont("Helvetica", "B", 10)

	d.setColor(colorBlack)
	d.text(350, d.y, "Total Ingresos:")
	d.setColor(colorIncome)
	d.textRight(colAmount, amountWidth, d.y, "+$"+d.totals.Income.StringFixed(2))
	d.y += 15

	d.setColor(colorBlack)
	d.text(350, d.y, "Total Gastos:")
	d.setColor(colorExpense)
	d.textRight(colAmount, amountWidth, d.y, "-$"+d.totals.Expense.StringFixed(2))
	d.y += 15

	balance := d.totals.Balance()
	d.setColor(colorBlack)
	d.text(350, d.y, "Balance:")
	if balance.Sign() >= 0 {
		d.setColor(colorIncome)
	} else {
		d.setColor(colorExpense)
	}
	d.textRight(colAmount, amountWidth, d.y, "$"+balance.StringFixed(2))
	d.y += 15

	d.summaryChart()
}

// summaryChart embeds the income/expense bar chart under the totals when the
// month had movements and the chart fits the current page. Chart failures
// are logged and skipped; the report is complete without it.
func (d *document) summaryChart() {
	if len(d.txs) == 0 {
		return
	}
	if d.totals.Income.Equal(decimal.Zero) && d.totals.Expense.Equal(decimal.Zero) {
		return
	}

	const chartW, chartH = 300.0, 190.0
	if d.y+chartH > pageBottom+90 {
		return
	}

	png, err := renderSummaryChart(d.totals)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Failed to render summary chart, skipping")
		return
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader("resumen", opts, bytes.NewReader(png))
	d.pdf.ImageOptions("resumen", marginLeft, d.y+20, chartW, chartH, false, opts, 0, "")
}

// ellipsize truncates s to fit width, appending "..." when shortened.
func (d *document) ellipsize(s string, width float64) string {
	t := d.tr(s)
	if d.pdf.GetStringWidth(t) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if d.pdf.GetStringWidth(d.tr(candidate)) <= width {
			return candidate
		}
	}
	return "..."
}

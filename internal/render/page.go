package render

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamilyCore = "Helvetica"
	fontFamilyUTF8 = "examgen"

	lineHeight = 6.0
	marginMM   = 18.0
)

// page wraps one PDF document with the text pipeline for its font.
type page struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	date   string
}

func (r *Renderer) newPage(doc Document) *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.config.Compress)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetCreator("examgen", false)
	pdf.SetCreationDate(r.now())

	p := &page{pdf: pdf, family: fontFamilyCore, date: r.now().Format("2006-01-02")}
	if len(r.font) > 0 {
		pdf.AddUTF8FontFromBytes(fontFamilyUTF8, "", r.font)
		pdf.AddUTF8FontFromBytes(fontFamilyUTF8, "B", r.font)
		pdf.AddUTF8FontFromBytes(fontFamilyUTF8, "I", r.font)
		p.family = fontFamilyUTF8
		p.tr = strings.TrimSpace
	} else {
		cp := pdf.UnicodeTranslatorFromDescriptor("")
		p.tr = func(s string) string { return cp(replaceMathSymbols(strings.TrimSpace(s))) }
	}

	pdf.SetTitle(doc.Metadata.Title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(p.family, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()
	return p
}

func (p *page) title(s string) {
	p.pdf.SetFont(p.family, "B", 16)
	p.pdf.MultiCell(0, 9, p.tr(s), "", "C", false)
	p.pdf.Ln(2)
}

func (p *page) centered(s string) {
	p.pdf.SetFont(p.family, "", 9)
	p.pdf.MultiCell(0, 5, p.tr(s), "", "C", false)
	p.pdf.Ln(3)
}

func (p *page) heading(s string) {
	p.pdf.Ln(2)
	p.pdf.SetFont(p.family, "B", 13)
	p.pdf.MultiCell(0, 8, p.tr(s), "", "L", false)
	p.rule()
}

func (p *page) subheading(s string) {
	p.pdf.Ln(1)
	p.pdf.SetFont(p.family, "B", 11)
	p.pdf.MultiCell(0, lineHeight, p.tr(s), "", "L", false)
}

func (p *page) para(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.pdf.SetFont(p.family, "", 10.5)
	p.pdf.MultiCell(0, lineHeight, p.tr(s), "", "L", false)
}

func (p *page) italic(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.pdf.SetFont(p.family, "I", 10)
	p.pdf.MultiCell(0, lineHeight, p.tr(s), "", "L", false)
}

// labelled writes "label: text" with a bold label.
func (p *page) labelled(label, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.pdf.SetFont(p.family, "B", 10.5)
	w := p.pdf.GetStringWidth(p.tr(label+": ")) + 1
	p.pdf.CellFormat(w, lineHeight, p.tr(label+":"), "", 0, "L", false, 0, "")
	p.pdf.SetFont(p.family, "", 10.5)
	p.pdf.MultiCell(0, lineHeight, p.tr(s), "", "L", false)
}

// indented writes s shifted right of the margin.
func (p *page) indented(s string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	p.pdf.SetFont(p.family, style, 10.5)
	p.pdf.SetX(marginMM + 6)
	p.pdf.MultiCell(0, lineHeight, p.tr(s), "", "L", false)
}

func (p *page) bullets(items []string) {
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			p.indented("- "+it, false)
		}
	}
}

func (p *page) numbered(items []string) {
	n := 0
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		n++
		p.indented(fmt.Sprintf("%d. %s", n, it), false)
	}
}

// answerLines leaves n ruled lines for a handwritten answer.
func (p *page) answerLines(n int) {
	w, _ := p.pdf.GetPageSize()
	p.pdf.SetDrawColor(170, 170, 170)
	for range n {
		p.pdf.Ln(lineHeight + 1)
		y := p.pdf.GetY()
		p.pdf.Line(marginMM+6, y, w-marginMM, y)
	}
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.Ln(2)
}

func (p *page) rule() {
	w, _ := p.pdf.GetPageSize()
	y := p.pdf.GetY() + 1
	p.pdf.SetDrawColor(200, 200, 200)
	p.pdf.Line(marginMM, y, w-marginMM, y)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.Ln(3)
}

func (p *page) gap(h float64) {
	p.pdf.Ln(h)
}

func (p *page) newPage() {
	p.pdf.AddPage()
}

// Package docutil 提供文档文本提取工具函数。
package docutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF 提取错误
var (
	ErrEncrypted = errors.New("pdf is password-protected")
	ErrEmpty     = errors.New("pdf has no pages")
	ErrNoText    = errors.New("no extractable text found, the pdf may be a scanned image")
	ErrCorrupt   = errors.New("pdf is corrupted or invalid")
	ErrTooLarge  = errors.New("file exceeds the upload size limit")
)

// Page is the text of one PDF page.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// pageSource 抽象 PDF 页访问，便于测试
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type pdfSource struct {
	r *pdf.Reader
}

func (s pdfSource) NumPage() int { return s.r.NumPage() }

func (s pdfSource) PageText(n int) (string, error) {
	page := s.r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// ReadAllLimit reads r fully, failing with ErrTooLarge past limit bytes.
func ReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ExtractPDFPages extracts the text of every page that has any.
// Pages that fail to decode are skipped.
func ExtractPDFPages(data []byte) (pages []Page, err error) {
	// ledongthuc/pdf 在畸形输入上可能 panic
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return extractPages(pdfSource{r: reader})
}

func extractPages(src pageSource) ([]Page, error) {
	count := src.NumPage()
	if count == 0 {
		return nil, ErrEmpty
	}

	pages := make([]Page, 0, count)
	for i := 1; i <= count; i++ {
		text, err := src.PageText(i)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, ErrNoText
	}
	return pages, nil
}

// JoinPages concatenates page texts separated by a blank line.
func JoinPages(pages []Page) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

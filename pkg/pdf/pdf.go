package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/feynman-ai/feynman-ai/pkg/safe"
)

// MinTextChars 页面文本少于该字符数视为扫描页，需要走视觉识别
const MinTextChars = 50

type Page struct {
	Number int
	Text   string
}

// NeedsOCR 判断该页是否为扫描页（文本层几乎为空）
func (p Page) NeedsOCR() bool {
	return len([]rune(strings.TrimSpace(p.Text))) < MinTextChars
}

type Image struct {
	Data []byte
	Ext  string
}

// MIME 根据扩展名推断图片类型，默认按 png 处理
func (i Image) MIME() string {
	switch strings.ToLower(i.Ext) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// ExtractPages 逐页提取 PDF 文本层
func ExtractPages(data []byte) ([]Page, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []Page
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: pageIndex})
			continue
		}
		// 单页文本提取失败不中断整个文件，留给视觉识别兜底。
		// 畸形字体表会让解析直接 panic，同样按空文本处理
		var text string
		safe.RunWithLog(func() {
			t, err := p.GetPlainText(nil)
			if err != nil {
				slog.Warn("pdf page text extraction failed", slog.Int("page", pageIndex), slog.Any("error", err))
				return
			}
			text = t
		}, "pdf.ExtractPages")
		pages = append(pages, Page{Number: pageIndex, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}

// ExtractPageImages 提取指定页内嵌的位图，用于扫描件 OCR。
// pdfcpu 只提供文件级接口，先落临时文件再读回。
func ExtractPageImages(data []byte, pageNumber int) ([]Image, error) {
	tmpFile, err := os.CreateTemp("", "tutor_pdf_*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp pdf: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err = tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp pdf: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "tutor_img_extract_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.EXTRACTIMAGES
	conf.ValidationMode = model.ValidationRelaxed

	selected := []string{strconv.Itoa(pageNumber)}
	if err = api.ExtractImagesFile(tmpFile.Name(), tmpDir, selected, conf); err != nil {
		return nil, fmt.Errorf("pdfcpu extraction failed: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, err
	}

	var images []Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		imgData, err := os.ReadFile(filepath.Join(tmpDir, entry.Name()))
		if err != nil {
			continue
		}
		images = append(images, Image{
			Data: imgData,
			Ext:  strings.TrimPrefix(filepath.Ext(entry.Name()), "."),
		})
	}

	// 扫描页通常是一张整页大图，按体积降序排在前面
	sort.Slice(images, func(i, j int) bool {
		return len(images[i].Data) > len(images[j].Data)
	})

	if len(images) > 0 {
		slog.Debug("pdf page images extracted", slog.Int("page", pageNumber), slog.Int("count", len(images)))
	}
	return images, nil
}

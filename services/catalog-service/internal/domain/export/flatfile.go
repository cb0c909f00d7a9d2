package export

import (
	"strconv"
	"strings"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
)

// Колонки плоского файла и их позиции, если в заголовке нет точного имени
const (
	ColumnHandle        = "Handle"
	ColumnTitle         = "Title"
	ColumnImageSrc      = "Image Src"
	ColumnImagePosition = "Image Position"

	fallbackHandle        = 0
	fallbackTitle         = 1
	fallbackImageSrc      = 28
	fallbackImagePosition = 29

	// flatFileRows число строк данных, которые переписывает генератор
	flatFileRows = 6
)

// FlatFileExporter заполняет шаблон плоского файла Shopify.
// Шаблон разделяется между запросами и не изменяется: каждый вызов работает с копией.
type FlatFileExporter struct {
	template *Table
	catalog  Catalog
}

// NewFlatFileExporter создает экспортер; nil-шаблон делает Generate недоступным
func NewFlatFileExporter(template *Table, catalog Catalog) *FlatFileExporter {
	return &FlatFileExporter{template: template, catalog: catalog}
}

// Available возвращает utils.ErrTemplateUnavailable, если шаблон не загружен
func (e *FlatFileExporter) Available() error {
	if e == nil || e.template == nil || e.template.Width() == 0 {
		return utils.ErrTemplateUnavailable
	}
	return nil
}

// Generate строит плоский файл для изображения base, загруженного по адресу imageURL
func (e *FlatFileExporter) Generate(base, imageURL string) (*Table, error) {
	if err := e.Available(); err != nil {
		return nil, err
	}

	handle := strings.ToLower(Handle(base)) + e.catalog.HandleSuffix
	title := Slug(base) + e.catalog.TitleSuffix

	t := e.template.Clone()
	handleCol := t.ColumnIndex(ColumnHandle, fallbackHandle)
	titleCol := t.ColumnIndex(ColumnTitle, fallbackTitle)
	srcCol := t.ColumnIndex(ColumnImageSrc, fallbackImageSrc)
	posCol := t.ColumnIndex(ColumnImagePosition, fallbackImagePosition)
	t.EnsureRows(flatFileRows)

	for i := 0; i < flatFileRows; i++ {
		t.Set(i, handleCol, handle)
		t.Set(i, titleCol, "")
	}
	t.Set(0, titleCol, title)

	t.Set(0, srcCol, imageURL)
	t.Set(0, posCol, "1")
	for i, url := range e.catalog.GalleryImages {
		if i >= galleryImagesCount {
			break
		}
		t.Set(i+1, srcCol, url)
		t.Set(i+1, posCol, strconv.Itoa(i+2))
	}

	return t, nil
}

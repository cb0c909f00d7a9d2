package export

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
)

//go:embed assets/shopify_flat_file_template.csv
var defaultFlatFileTemplate []byte

const utf8BOM = "\ufeff"

// LoadTemplate читает шаблон плоского файла Shopify.
// Пустой path означает встроенный шаблон. Любая ошибка чтения оборачивает utils.ErrTemplateUnavailable.
func LoadTemplate(path string) (*Table, error) {
	if path == "" {
		return ParseTemplate(bytes.NewReader(defaultFlatFileTemplate))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTemplateUnavailable, err)
	}
	defer f.Close()

	return ParseTemplate(f)
}

// ParseTemplate разбирает CSV шаблона; первая запись считается заголовком.
// Строки короче заголовка дополняются пустыми ячейками.
func ParseTemplate(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTemplateUnavailable, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("%w: template has no header", utils.ErrTemplateUnavailable)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	t := NewTable(header...)
	for _, rec := range records[1:] {
		t.AppendRow(rec...)
	}
	return t, nil
}

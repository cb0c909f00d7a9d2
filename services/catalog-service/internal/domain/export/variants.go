package export

import "strings"

// Колонки таблицы вариантов Amazon
const (
	ColumnItemSKU      = "item_sku"
	ColumnItemName     = "item_name"
	ColumnParentChild  = "parent_child"
	ColumnParentSKU    = "parent_sku"
	ColumnMainImageURL = "main_image_url"

	RoleParent = "Parent"
	RoleChild  = "Child"

	// imageSentinel временное значение main_image_url до подстановки адреса
	imageSentinel = "main_image"
)

// VariantTableExporter строит таблицу parent/child вариантов Amazon
type VariantTableExporter struct {
	catalog Catalog
}

func NewVariantTableExporter(catalog Catalog) *VariantTableExporter {
	return &VariantTableExporter{catalog: catalog}
}

// Generate возвращает строку Parent и по одной строке Child на каждый вариант каталога.
// Название в item_sku капитализируется только по первой букве, в отличие от Slug.
func (e *VariantTableExporter) Generate(base, imageURL string) *Table {
	stem := strings.ToLower(Stem(base))
	upper := strings.ToUpper(stem)
	title := upperFirst(stem)
	itemName := upper + e.catalog.ItemNameSuffix

	t := NewTable(ColumnItemSKU, ColumnItemName, ColumnParentChild, ColumnParentSKU, ColumnMainImageURL)
	parentSKU := title + "-Parent"
	t.AppendRow(parentSKU, itemName, RoleParent, "", imageSentinel)
	for _, variant := range e.catalog.Variants {
		t.AppendRow(title+"-"+removeSpaces(variant), itemName, RoleChild, parentSKU, imageSentinel)
	}

	imageCol := len(t.Columns) - 1
	for i := range t.Rows {
		if t.Rows[i][imageCol] == imageSentinel {
			t.Rows[i][imageCol] = imageURL
		}
	}
	return t
}

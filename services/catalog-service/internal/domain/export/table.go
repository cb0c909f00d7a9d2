package export

// Table таблица выгрузки: именованные колонки и строки данных.
// Каждая строка данных содержит ровно len(Columns) ячеек.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable создает пустую таблицу с копией заголовка
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Width число колонок
func (t *Table) Width() int {
	return len(t.Columns)
}

// Len число строк данных
func (t *Table) Len() int {
	return len(t.Rows)
}

// Clone глубокая копия таблицы
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// ColumnIndex индекс колонки по точному имени, иначе fallback.
// Если fallback выходит за ширину, заголовок расширяется безымянными колонками.
func (t *Table) ColumnIndex(name string, fallback int) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	t.growColumns(fallback + 1)
	return fallback
}

// AppendRow добавляет строку, выравнивая ее по ширине таблицы
func (t *Table) AppendRow(cells ...string) {
	t.Rows = append(t.Rows, t.fit(append([]string(nil), cells...)))
}

// EnsureRows дополняет таблицу пустыми строками до n
func (t *Table) EnsureRows(n int) {
	for len(t.Rows) < n {
		t.Rows = append(t.Rows, make([]string, t.Width()))
	}
}

// Cell значение ячейки; вне границ возвращается пустая строка
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set записывает ячейку существующей строки
func (t *Table) Set(row, col int, value string) {
	t.Rows[row][col] = value
}

// Column значения колонки по имени; nil, если колонки нет
func (t *Table) Column(name string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, idx)
	}
	return out
}

// Records заголовок и строки данных в одном срезе, как их пишет csv.Writer
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Columns)
	return append(records, t.Rows...)
}

func (t *Table) growColumns(width int) {
	for len(t.Columns) < width {
		t.Columns = append(t.Columns, "")
	}
	for i := range t.Rows {
		t.Rows[i] = t.fit(t.Rows[i])
	}
}

// fit дополняет строку пустыми ячейками или обрезает лишние
func (t *Table) fit(row []string) []string {
	w := t.Width()
	if len(row) > w {
		return row[:w]
	}
	for len(row) < w {
		row = append(row, "")
	}
	return row
}

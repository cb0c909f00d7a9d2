package models

import pkgmodels "github.com/farhyn/catalog-platform/pkg/models"

// ProductFilter параметры выборки списка карточек
type ProductFilter struct {
	// Label ограничивает выборку одной площадкой; пустое значение означает все
	Label pkgmodels.Marketplace `json:"label,omitempty"`
	// IncludeInactive включает мягко удаленные карточки
	IncludeInactive bool `json:"include_inactive,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Where условия и аргументы для SQL, нумерация плейсхолдеров с $1
func (f *ProductFilter) Where() (string, []interface{}) {
	clause := ""
	var args []interface{}

	if !f.IncludeInactive {
		clause = "is_active = TRUE"
	}
	if f.Label != "" {
		if clause != "" {
			clause += " AND "
		}
		args = append(args, string(f.Label))
		clause += "label = $1"
	}

	if clause == "" {
		return "", nil
	}
	return " WHERE " + clause, args
}

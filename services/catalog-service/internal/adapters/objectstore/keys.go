package objectstore

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Каталоги объектов в бакете
const (
	ProductImagesPrefix = "product_images"
	ProductCSVPrefix    = "product_csv_files"
	ProductExcelPrefix  = "product_excel_files"
	ProfilePicPrefix    = "profile_pics"
)

// UploadKey ключ для загруженного файла: prefix/{slug}_{uuid}{ext}.
// slug.Make сохраняет подчеркивания: "my_cool-shirt.png" -> "my_cool-shirt_<uuid>.png".
func UploadKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if name == "" {
		name = "file"
	}
	return prefix + "/" + name + "_" + uuid.New().String() + ext
}

// ArtifactKey ключ файла выгрузки: prefix/{stem в нижнем регистре}_{uuid}.{ext}
func ArtifactKey(prefix, stem, ext string) string {
	return prefix + "/" + strings.ToLower(stem) + "_" + uuid.New().String() + "." + ext
}

// Replace записывает новый объект, предварительно удалив прежний.
// Ошибка удаления прежнего объекта только логируется.
func Replace(ctx context.Context, store interfaces.ObjectStoragePort, logger interfaces.LoggerPort,
	previousKey *string, key string, data []byte, contentType string) error {
	if previousKey != nil && *previousKey != "" {
		if err := store.Delete(ctx, *previousKey); err != nil {
			logger.WarnWithContext(ctx, "Не удалось удалить прежний файл выгрузки",
				interfaces.LogField{Key: "key", Value: *previousKey},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}
	return store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

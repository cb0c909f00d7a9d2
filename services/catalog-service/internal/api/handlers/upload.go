package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
)

const multipartMemory = 8 << 20

// formUpload достает файл field из multipart формы.
// Отсутствующий файл возвращается как nil: проверку обязательности выполняет сервис.
func formUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*services.Upload, func(), error) {
	noop := func() {}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, utils.NewValidationError(field,
				fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit))
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, utils.NewValidationError(field, "The submitted data was not a file. Check the encoding type on the form.")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("failed to read form file %s: %w", field, err)
	}

	return &services.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

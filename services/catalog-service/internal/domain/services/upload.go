package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// Upload загруженный файл из multipart формы
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadPolicy ограничения на загружаемые изображения
type UploadPolicy struct {
	MaxSize           int64
	AllowedExtensions []string
}

// DefaultImageExtensions расширения, принимаемые как изображения
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// Validate возвращает *utils.ValidationError для поля field.
// Содержимое проверяется декодированием заголовка изображения; после проверки Body читается с начала.
func (p UploadPolicy) Validate(field string, u *Upload) error {
	if u == nil || u.Body == nil || u.Filename == "" {
		return utils.NewValidationError(field, "No file was submitted.")
	}
	if u.Size == 0 {
		return utils.NewValidationError(field, "The submitted file is empty.")
	}

	ext := strings.ToLower(path.Ext(u.Filename))
	allowed := false
	for _, a := range p.AllowedExtensions {
		if strings.EqualFold(a, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return utils.NewValidationError(field, fmt.Sprintf(
			"File extension %q is not allowed. Allowed extensions are: %s.",
			strings.TrimPrefix(ext, "."), joinExtensions(p.AllowedExtensions)))
	}

	if p.MaxSize > 0 && u.Size > p.MaxSize {
		return utils.NewValidationError(field, fmt.Sprintf(
			"File size must be no more than %d MB.", p.MaxSize/(1<<20)))
	}

	ok, err := decodesAsImage(u)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewValidationError(field, invalidImageMessage)
	}
	return nil
}

// decodesAsImage читает заголовок изображения и возвращает Body в начальное положение.
// Тело без Seek буферизуется в памяти.
func decodesAsImage(u *Upload) (bool, error) {
	rs, seekable := u.Body.(io.ReadSeeker)
	if !seekable {
		data, err := readUpload(u)
		if err != nil {
			return false, err
		}
		rs = bytes.NewReader(data)
		u.Body = rs
	}

	_, _, decodeErr := image.DecodeConfig(rs)
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return false, fmt.Errorf("failed to rewind upload %s: %w", u.Filename, err)
	}
	return decodeErr == nil, nil
}

func joinExtensions(exts []string) string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		out = append(out, strings.TrimPrefix(strings.ToLower(e), "."))
	}
	return strings.Join(out, ", ")
}

func readUpload(u *Upload) ([]byte, error) {
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", u.Filename, err)
	}
	return data, nil
}

func contentTypeOr(u *Upload, fallback string) string {
	if u.ContentType != "" {
		return u.ContentType
	}
	return fallback
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/go-chi/render"
)

// errorResponse ответ с внутренней ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// messageResponse ответ с единственным сообщением
type messageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// writeError переводит ошибку сервиса в HTTP ответ.
// notFound подставляется в тело 404 для отсутствующих карточек и профилей.
func writeError(w http.ResponseWriter, r *http.Request, logger interfaces.LoggerPort, err error, notFound string) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, utils.ErrTemplateUnavailable):
		writeJSON(w, r, http.StatusBadRequest, messageResponse{Error: err.Error()})
	case errors.Is(err, utils.ErrProductNotFound), errors.Is(err, utils.ErrProfileNotFound):
		writeJSON(w, r, http.StatusNotFound, messageResponse{Error: notFound})
	case errors.Is(err, utils.ErrInvalidCredentials):
		writeJSON(w, r, http.StatusUnauthorized, messageResponse{Error: "Invalid credentials"})
	case errors.Is(err, utils.ErrInvalidToken):
		writeJSON(w, r, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
	case errors.Is(err, utils.ErrForbidden):
		writeJSON(w, r, http.StatusForbidden, map[string]string{
			"detail": "You do not have permission to edit this profile",
		})
	default:
		logger.ErrorWithContext(r.Context(), "Ошибка обработки запроса",
			interfaces.LogField{Key: "path", Value: r.URL.Path},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Внутренняя ошибка сервера",
		})
	}
}

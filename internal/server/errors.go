package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonathan/sng-admin/internal/apperr"
)

// Fixed messages for failures whose detail stays in the log.
const (
	msgReadOnly          = "Запись недоступна в read-only окружении. Для serverless подключите KV (KV_URL или REDIS_URL) или внешнее хранилище."
	msgKVUnavailable     = "Хранилище KV недоступно. Проверьте переменные KV_URL или REDIS_URL и доступность Redis."
	msgKVInvalidPayload  = "Данные в KV повреждены или имеют неверный формат."
	msgBlobNotConfigured = "Хранилище файлов не настроено. Для serverless задайте S3_BUCKET и S3_REGION."
	msgBlobUploadFailed  = "Не удалось загрузить файл в S3. Проверьте настройки бакета и учетные данные."
	msgInternal          = "Внутренняя ошибка сервера"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string              `json:"message"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// HTTPStatus returns the status code for an error's kind.
func HTTPStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.UploadRejected:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.ReadOnlyStorage, apperr.KVUnavailable, apperr.BlobNotConfigured, apperr.BlobUploadFailed:
		return http.StatusServiceUnavailable
	case apperr.KVInvalidPayload, apperr.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorResponseBody builds the client-facing body for err.
func errorResponseBody(err error) errorBody {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return errorBody{Message: msgInternal}
	}

	switch appErr.Kind {
	case apperr.Validation:
		body := errorBody{Message: appErr.Message, Fields: appErr.Fields}
		if body.Message == "" {
			parts := make([]string, 0, len(appErr.Fields))
			for _, f := range appErr.Fields {
				parts = append(parts, f.Field+": "+f.Message)
			}
			body.Message = strings.Join(parts, "; ")
		}
		return body
	case apperr.ReadOnlyStorage:
		return errorBody{Message: msgReadOnly}
	case apperr.KVUnavailable:
		return errorBody{Message: msgKVUnavailable}
	case apperr.KVInvalidPayload:
		return errorBody{Message: msgKVInvalidPayload}
	case apperr.BlobNotConfigured:
		return errorBody{Message: msgBlobNotConfigured}
	case apperr.BlobUploadFailed:
		return errorBody{Message: msgBlobUploadFailed}
	case apperr.Internal:
		return errorBody{Message: msgInternal}
	default:
		return errorBody{Message: appErr.Message}
	}
}

// errorResponse logs err and writes its mapped status and body.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", apperr.KindOf(err).String(),
		"request_id", chimw.GetReqID(r.Context()),
		"error", err,
	)
	s.jsonResponse(w, status, errorResponseBody(err))
}

// messageResponse writes a plain {"message": ...} body.
func (s *Server) messageResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, errorBody{Message: message})
}

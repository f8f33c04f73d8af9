package apiutil

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/seasons"
)

const genericErrorMessage = "Something went wrong. Please try again."

func IsSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func IsSQLiteForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// Translate turns the error shapes handlers know about into a response.
// Anything unrecognized becomes a generic 500.
func Translate(err error) HandlerError {
	if handlerErr, ok := AsHandlerError(err); ok {
		return handlerErr
	}

	var maxBytesErr *http.MaxBytesError
	var validationErr *seasons.ValidationError
	switch {
	case err == nil:
		return HandlerError{Status: http.StatusInternalServerError, Message: genericErrorMessage}
	case errors.As(err, &validationErr):
		return HandlerError{
			Status:  http.StatusUnprocessableEntity,
			Message: "Please fix the highlighted fields",
			Fields:  validationErr.Errors.Map(),
			Err:     err,
		}
	case IsSQLiteUniqueViolation(err):
		message := "record already exists"
		field := ""
		switch {
		case strings.Contains(err.Error(), ".slug"):
			message, field = "slug already exists", "slug"
		case strings.Contains(err.Error(), ".rank"):
			message, field = "rank already taken", "rank"
		}
		handlerErr := HandlerError{Status: http.StatusConflict, Message: message, Err: err}
		if field != "" {
			handlerErr.Fields = map[string]string{field: message}
		}
		return handlerErr
	case IsSQLiteForeignKeyViolation(err):
		return HandlerError{Status: http.StatusNotFound, Message: "referenced record not found", Err: err}
	case errors.Is(err, sql.ErrNoRows):
		return HandlerError{Status: http.StatusNotFound, Message: "not found", Err: err}
	case errors.As(err, &maxBytesErr), errors.Is(err, media.ErrFileTooLarge):
		return HandlerError{Status: http.StatusRequestEntityTooLarge, Message: "file too large", Err: err}
	case errors.Is(err, media.ErrUnsupportedType):
		return HandlerError{Status: http.StatusUnsupportedMediaType, Message: "unsupported image type", Err: err}
	}
	return HandlerError{Status: http.StatusInternalServerError, Message: genericErrorMessage, Err: err}
}

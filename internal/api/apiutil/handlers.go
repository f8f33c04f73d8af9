package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

type HandlerError struct {
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteData writes a successful envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) error {
	return WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteError writes a failed envelope. fields carries per-field messages for
// validation failures.
func WriteError(w http.ResponseWriter, status int, message string, fields map[string]string) error {
	return WriteJSON(w, status, Envelope{Success: false, Message: message, Errors: fields})
}

// WriteValidationErrors answers 422 with the field map.
func WriteValidationErrors(w http.ResponseWriter, fields map[string]string) error {
	return WriteError(w, http.StatusUnprocessableEntity, "Please fix the highlighted fields", fields)
}

// WriteHandlerError maps err to a response. Known storage and upload errors
// get their own status; anything else is logged and hidden behind a generic
// message.
func WriteHandlerError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	handlerErr := Translate(err)
	if handlerErr.Status >= http.StatusInternalServerError {
		log.Ctx(ctx).Error().Err(err).Msg(logMsg)
	}
	if writeErr := WriteError(w, handlerErr.Status, handlerErr.Message, handlerErr.Fields); writeErr != nil {
		log.Ctx(ctx).Error().Err(writeErr).Msg("Failed to write error response")
	}
}

func IsJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func IsMultipartRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// RenderHTMLComponent renders into a buffer first so a render failure can
// still produce a clean 500. It reports whether the response was written.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMsg, userMsg string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMsg)
		http.Error(w, userMsg, http.StatusInternalServerError)
		return false
	}
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write HTML response")
		return false
	}
	return true
}

func WriteHTMLFeedback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `<div class="feedback" role="status">`+templ.EscapeString(message)+`</div>`)
}

// AsHandlerError unwraps a HandlerError from err.
func AsHandlerError(err error) (HandlerError, bool) {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		return handlerErr, true
	}
	return HandlerError{}, false
}

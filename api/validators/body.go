package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/retail-backend/internal/schema"
	pkgerrors "github.com/angelmondragon/retail-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// DecodeJSONBody decodes exactly one JSON object into dest, rejecting unknown fields,
// oversized bodies and trailing data, then runs dest's validate tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	if len(body) > maxBodyBytes {
		return pkgerrors.Validation("body", "must be at most 1 MiB")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return pkgerrors.Validation("body", "is required")
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return pkgerrors.Validation("body", "must contain a single JSON object")
	}
	return schema.Struct(dest)
}

func decodeError(err error) *pkgerrors.Error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return pkgerrors.Validation(typeErr.Field, "has an invalid type")
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
		WithDetails(map[string]any{"field": "body", "reason": err.Error()})
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
)

var validate = validator.New()

// DecodeRequest fills dst from a JSON body or, for form posts, from form
// values keyed by each field's `form` tag. dst must be a pointer to a struct
// of string fields. The decoded value is then checked against its `validate`
// tags.
func DecodeRequest(r *http.Request, dst any) error {
	if err := decodeBody(r, dst); err != nil {
		return commonerrors.ErrInvalidPayload.WithCause(err)
	}
	if err := validate.Struct(dst); err != nil {
		return commonerrors.ErrInvalidPayload.WithCause(err)
	}
	return nil
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	defer r.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		return fillFromForm(r, dst)
	default:
		err := json.NewDecoder(r.Body).Decode(dst)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode json: %w", err)
		}
		return nil
	}
}

func fillFromForm(r *http.Request, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("form"), ",")[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		if values, ok := r.Form[name]; ok && len(values) > 0 {
			v.Field(i).SetString(values[0])
		}
	}
	return nil
}

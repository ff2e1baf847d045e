package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

// ImageField is the multipart field that carries an uploaded image.
const ImageField = "image"

// MutationForm is a decoded create/edit body. A field missing from Fields was
// not sent; a field mapped to "" was sent empty.
type MutationForm struct {
	Fields map[string]string
	Image  *types.Blob
}

// Field returns a pointer to the sent value, or nil when the field was absent.
func (f *MutationForm) Field(name string) *string {
	v, ok := f.Fields[name]
	if !ok {
		return nil
	}
	return &v
}

// ReadMutationForm decodes multipart/form-data, urlencoded or JSON bodies into
// the allowed text fields plus an optional image of at most maxImageBytes.
// Any failure is wrapped in types.ErrValidation.
func ReadMutationForm(w http.ResponseWriter, r *http.Request, maxImageBytes int64, allowed ...string) (*MutationForm, error) {
	form := &MutationForm{Fields: make(map[string]string)}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			return nil, fmt.Errorf("%w: malformed multipart body", types.ErrValidation)
		}
		for _, name := range allowed {
			if vals, ok := r.MultipartForm.Value[name]; ok && len(vals) > 0 {
				form.Fields[name] = vals[0]
			}
		}
		img, err := readImage(r, maxImageBytes)
		if err != nil {
			return nil, err
		}
		form.Image = img

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: malformed form body", types.ErrValidation)
		}
		for _, name := range allowed {
			if vals, ok := r.PostForm[name]; ok && len(vals) > 0 {
				form.Fields[name] = vals[0]
			}
		}

	default:
		if r.Body == nil || r.ContentLength == 0 {
			return form, nil
		}
		var raw map[string]json.RawMessage
		if err := DecodeJSONBody(w, r, &raw); err != nil {
			if err.Error() == "body must not be empty" {
				return form, nil
			}
			return nil, fmt.Errorf("%w: %s", types.ErrValidation, err)
		}
		for key, val := range raw {
			if !slices.Contains(allowed, key) {
				return nil, fmt.Errorf("%w: body contains unknown key %q", types.ErrValidation, key)
			}
			if string(val) == "null" {
				continue
			}
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, fmt.Errorf("%w: field %q must be a string", types.ErrValidation, key)
			}
			form.Fields[key] = s
		}
	}

	return form, nil
}

func readImage(r *http.Request, maxImageBytes int64) (*types.Blob, error) {
	file, header, err := r.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image", types.ErrValidation)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image", types.ErrValidation)
	}
	if int64(len(data)) > maxImageBytes {
		return nil, fmt.Errorf("%w: image must not be larger than %d bytes", types.ErrValidation, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := http.DetectContentType(data)
	if !IsImageContentType(contentType) {
		return nil, fmt.Errorf("%w: image must be a jpeg, png, gif or webp file", types.ErrValidation)
	}

	return &types.Blob{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// IsImageContentType reports whether contentType is an accepted image format.
func IsImageContentType(contentType string) bool {
	_, ok := imageExtensions[contentType]
	return ok
}

// ImageExtension returns the file extension used for stored objects.
func ImageExtension(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	return ".bin"
}

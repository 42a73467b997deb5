package services

import (
	"encoding/base64"
	"net/http"
	"strings"

	"tastebud/internal/apperr"
)

const maxPhotoBytes = 5 << 20 // 5 MiB

// decodePhoto turns a base64-encoded image (optionally carrying a data-URI
// prefix) into raw bytes. It rejects oversized and non-image payloads before
// any row or blob is touched.
func decodePhoto(encoded string) ([]byte, error) {
	if i := strings.Index(encoded, ","); i != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.BadRequest("photo is not valid base64")
	}
	if len(data) > maxPhotoBytes {
		return nil, apperr.New(apperr.KindPayloadTooLarge, "photo exceeds the size limit")
	}
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return data, nil
	default:
		return nil, apperr.New(apperr.KindUnsupportedMedia, "photo must be a jpeg, png, gif or webp image")
	}
}

package recipe

import (
	"github.com/gabriel-vasile/mimetype"
)

// allowedImageTypes is the set of MIME types the recipe model accepts.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DetectImageMIME returns the detected MIME type and true if data is an
// accepted image format, or ("", false) otherwise.
func DetectImageMIME(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	mime := mimetype.Detect(data).String()
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

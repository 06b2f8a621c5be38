package client

import (
	"path/filepath"
	"strings"
)

// allowedContentTypes is the fixed allow-set of declared MIME types.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/heic": {},
}

// extensionTypes maps a lowercased filename extension to its canonical
// content type when the declared MIME type is absent or unrecognized.
var extensionTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"heic": "image/heic",
}

// ResolveContentType classifies an upload by its declared MIME type,
// falling back to the filename's lowercased extension. It returns false
// when neither resolves to a supported image type. Pure and total: empty
// or extension-less filenames simply fail to resolve.
func ResolveContentType(declaredType, filename string) (string, bool) {
	declared := strings.ToLower(strings.TrimSpace(declaredType))
	if _, ok := allowedContentTypes[declared]; ok {
		return declared, true
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if contentType, ok := extensionTypes[ext]; ok {
		return contentType, true
	}
	return "", false
}

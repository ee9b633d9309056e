// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// imageinfo.go sniffs metadata from generated image references for history
// records. It never alters a result; an undecodable reference simply yields
// no dimensions.
package imagegen

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	// Providers return png, jpeg or (spaces especially) webp.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// dataURIPrefix starts every inline image reference this package produces.
const dataURIPrefix = "data:"

// IsDataURI reports whether ref is an inline data URI rather than a remote
// URL.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, dataURIPrefix)
}

// DecodeDataURI splits a base64 data URI into its MIME type and raw bytes.
func DecodeDataURI(ref string) (mime string, data []byte, ok bool) {
	if !IsDataURI(ref) {
		return "", nil, false
	}
	rest := ref[len(dataURIPrefix):]

	sep := strings.IndexByte(rest, ',')
	if sep < 0 {
		return "", nil, false
	}
	meta, encoded := rest[:sep], rest[sep+1:]

	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}
	mime = strings.TrimSuffix(meta, ";base64")

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, false
	}
	return mime, data, true
}

// ImageDimensions decodes the pixel size of an inline image reference.
// Remote URLs and undecodable payloads report ok=false; the image is never
// fetched just to measure it.
func ImageDimensions(ref string) (width, height int, ok bool) {
	_, data, ok := DecodeDataURI(ref)
	if !ok {
		return 0, 0, false
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

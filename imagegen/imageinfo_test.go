package imagegen

import "testing"

// onePixelPNG is a 1x1 PNG, base64 encoded.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestIsDataURI(t *testing.T) {
	if !IsDataURI("data:image/png;base64,QQ==") {
		t.Error("data URI not recognized")
	}
	if IsDataURI("https://cdn.example/img.png") {
		t.Error("remote URL treated as data URI")
	}
}

func TestDecodeDataURI(t *testing.T) {
	mime, data, ok := DecodeDataURI("data:image/png;base64," + onePixelPNG)
	if !ok {
		t.Fatal("DecodeDataURI() failed")
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	if len(data) == 0 {
		t.Error("no bytes decoded")
	}

	invalid := []string{
		"https://cdn.example/img.png",
		"data:image/png;base64",
		"data:image/png,plain-not-base64",
		"data:image/png;base64,%%%",
	}
	for _, ref := range invalid {
		if _, _, ok := DecodeDataURI(ref); ok {
			t.Errorf("DecodeDataURI(%q) succeeded unexpectedly", ref)
		}
	}
}

func TestImageDimensions(t *testing.T) {
	w, h, ok := ImageDimensions("data:image/png;base64," + onePixelPNG)
	if !ok {
		t.Fatal("ImageDimensions() failed")
	}
	if w != 1 || h != 1 {
		t.Errorf("dimensions = %dx%d, want 1x1", w, h)
	}

	if _, _, ok := ImageDimensions("https://cdn.example/img.png"); ok {
		t.Error("remote URL measured without fetching")
	}
	if _, _, ok := ImageDimensions("data:image/png;base64,QQ=="); ok {
		t.Error("non-image payload measured")
	}
}

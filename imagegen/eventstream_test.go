package imagegen

import "testing"

func TestExtractStreamImage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{
			name: "image object in first element",
			body: "event: complete\ndata: [{\"image\":{\"url\":\"https://x/y.png\"}},123]\n",
			want: "https://x/y.png",
			ok:   true,
		},
		{
			name: "bare url in first element",
			body: "data: [{\"url\":\"https://x/z.webp\"},0]\n",
			want: "https://x/z.webp",
			ok:   true,
		},
		{
			name: "nested list element",
			body: "data: [[{\"image\":{\"url\":\"https://x/nested.png\"}}],true]\n",
			want: "https://x/nested.png",
			ok:   true,
		},
		{
			name: "heartbeats and comments skipped",
			body: ": keep-alive\nevent: heartbeat\ndata: not-json\ndata: [{\"image\":{\"url\":\"https://x/late.png\"}}]\n",
			want: "https://x/late.png",
			ok:   true,
		},
		{
			name: "crlf line endings",
			body: "data: [{\"image\":{\"url\":\"https://x/crlf.png\"}}]\r\n",
			want: "https://x/crlf.png",
			ok:   true,
		},
		{
			name: "complete marker without data line",
			body: "event: complete\ndata: null\n",
			ok:   false,
		},
		{
			name: "empty array payload",
			body: "data: []\n",
			ok:   false,
		},
		{
			name: "empty body",
			body: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractStreamImage(tt.body)
			if ok != tt.ok {
				t.Fatalf("extractStreamImage() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("extractStreamImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

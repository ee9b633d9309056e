// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// eventstream.go decodes the line-oriented event stream the space-hosted
// generator serves for a submitted job. The stream interleaves heartbeat and
// comment lines with "data: " payload lines; only a data line whose first
// array element carries an image URL terminates the wait.
package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// streamDataPrefix marks payload lines in the event stream.
const streamDataPrefix = "data: "

// awaitStreamResult polls the per-event stream endpoint until a data line
// with an image URL appears or the attempt budget runs out.
//
// Each attempt issues one GET against eventURL and scans the full body.
// Lines that fail to parse are skipped silently: streaming protocols
// interleave heartbeats and comments with payloads. "event:" marker lines
// (including "event: complete") are ignored as well; the wait relies solely
// on locating a data line with an image URL. If a stream ever closes with a
// complete marker and no such data line, the call ends in Timeout rather
// than an immediate failure.
func awaitStreamResult(ctx context.Context, client *http.Client, provider ProviderID, eventURL string, headers map[string]string, cfg PollConfig) (string, error) {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultStreamConfig()
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, cfg.Interval); err != nil {
				return "", err
			}
		}

		body, status, err := fetchStreamBody(ctx, client, eventURL, headers)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// Transient fetch failure: skip this attempt.
			continue
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return "", errAuthRejected(provider, status, body)
		}

		if url, ok := extractStreamImage(body); ok {
			return url, nil
		}
	}

	return "", errTimeout(provider, fmt.Sprintf("no image event within %d attempts", cfg.MaxAttempts))
}

// fetchStreamBody issues one GET and reads the whole response as text.
func fetchStreamBody(ctx context.Context, client *http.Client, url string, headers map[string]string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(data), resp.StatusCode, nil
}

// streamEvent is the shape of a single element in a data line's JSON array.
// The generator emits either the element itself or a nested list of them.
type streamEvent struct {
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
	URL string `json:"url"`
}

// extractStreamImage scans body line by line for a "data: " payload whose
// first array element carries an image URL.
func extractStreamImage(body string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, streamDataPrefix) {
			continue
		}
		payload := line[len(streamDataPrefix):]

		var elems []json.RawMessage
		if err := json.Unmarshal([]byte(payload), &elems); err != nil || len(elems) == 0 {
			continue
		}

		if url, ok := decodeStreamElement(elems[0]); ok {
			return url, true
		}
	}
	return "", false
}

// decodeStreamElement pulls an image URL out of the first payload element,
// tolerating one level of list nesting.
func decodeStreamElement(raw json.RawMessage) (string, bool) {
	var ev streamEvent
	if err := json.Unmarshal(raw, &ev); err == nil {
		if ev.Image != nil && ev.Image.URL != "" {
			return ev.Image.URL, true
		}
		if ev.URL != "" {
			return ev.URL, true
		}
	}

	var nested []streamEvent
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		if nested[0].Image != nil && nested[0].Image.URL != "" {
			return nested[0].Image.URL, true
		}
		if nested[0].URL != "" {
			return nested[0].URL, true
		}
	}

	return "", false
}

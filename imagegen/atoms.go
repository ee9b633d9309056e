// Package imagegen implements the multi-provider image generation core for
// the sweater designer.
//
// atoms.go contains pure lookup tables and string helpers with no
// dependencies: the supported resolution set, the aspect-ratio mapping, and
// the per-provider size formatting rules.
package imagegen

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolutionSquare is the default resolution. Every lookup table in this
// package falls back to it for unrecognized resolutions instead of failing.
const ResolutionSquare = "1024x1024"

// supportedResolutions is the fixed resolution set exposed to the UI, in
// display order.
var supportedResolutions = []string{
	"1024x1024", // 1:1
	"864x1152",  // 3:4
	"1152x864",  // 4:3
	"768x1344",  // 9:16
	"1344x768",  // 16:9
}

// aspectRatios maps each supported resolution to the ratio token the
// synchronous image API expects.
var aspectRatios = map[string]string{
	"1024x1024": "1:1",
	"864x1152":  "3:4",
	"1152x864":  "4:3",
	"768x1344":  "9:16",
	"1344x768":  "16:9",
}

// spaceFormats maps each supported resolution to the decorated string form
// the space-hosted generator's payload array expects.
var spaceFormats = map[string]string{
	"1024x1024": "1024x1024 ( 1:1 )",
	"864x1152":  "864x1152 ( 3:4 )",
	"1152x864":  "1152x864 ( 4:3 )",
	"768x1344":  "768x1344 ( 9:16 )",
	"1344x768":  "1344x768 ( 16:9 )",
}

// SupportedResolutions returns the fixed resolution set in display order.
func SupportedResolutions() []string {
	out := make([]string, len(supportedResolutions))
	copy(out, supportedResolutions)
	return out
}

// IsSupportedResolution reports whether res is in the fixed resolution set.
func IsSupportedResolution(res string) bool {
	_, ok := aspectRatios[res]
	return ok
}

// AspectRatioFor maps a resolution to its ratio token.
// Unrecognized resolutions map to the square 1:1 default, never an error.
func AspectRatioFor(res string) string {
	if ratio, ok := aspectRatios[res]; ok {
		return ratio
	}
	return "1:1"
}

// SpaceFormatFor maps a resolution to the decorated form used by the
// space-hosted generator, e.g. "1024x1024 ( 1:1 )".
// Unrecognized resolutions fall back to the square default.
func SpaceFormatFor(res string) string {
	if formatted, ok := spaceFormats[res]; ok {
		return formatted
	}
	return spaceFormats[ResolutionSquare]
}

// TaskSizeFor formats a resolution as WIDTH*HEIGHT for the task-submission
// API that rejects the x separator. Unrecognized resolutions fall back to
// the square default.
func TaskSizeFor(res string) string {
	w, h, ok := ParseResolution(res)
	if !ok {
		w, h, _ = ParseResolution(ResolutionSquare)
	}
	return fmt.Sprintf("%d*%d", w, h)
}

// NormalizeResolution returns res when supported, else the square default.
func NormalizeResolution(res string) string {
	if IsSupportedResolution(res) {
		return res
	}
	return ResolutionSquare
}

// ParseResolution splits a WIDTHxHEIGHT descriptor into its dimensions.
func ParseResolution(res string) (width, height int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(res), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// truncateText truncates text to a maximum length with ellipsis.
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}

// joinProxy prefixes target with the proxy URL when one is configured.
// The proxy contract is a plain URL prefix, matching public CORS proxies
// of the https://proxy.example/? form.
func joinProxy(proxy, target string) string {
	if proxy == "" {
		return target
	}
	return proxy + target
}

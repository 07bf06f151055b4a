// Package metadata extracts dimensions and camera settings from image bytes.
// Extraction is best effort: a field that cannot be read is left nil and
// never fails the caller.
package metadata

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tangerinesoft/photo-service/internal/types/photos"
)

// Extract reads what it can from data. Undecodable input yields an empty
// result.
func Extract(data []byte) photos.Exif {
	var out photos.Exif

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to read image metadata", slog.String("error", err.Error()))
		return out
	}
	out.Width = &cfg.Width
	out.Height = &cfg.Height

	payload, ok := exifPayload(data, format)
	if !ok {
		return out
	}
	if err := checkTIFF(payload); err != nil {
		slog.Debug("Ignoring malformed EXIF", slog.String("format", format), slog.String("error", err.Error()))
		return out
	}

	camera, err := readExif(payload)
	if err != nil {
		slog.Debug("No EXIF data", slog.String("format", format), slog.String("error", err.Error()))
		return out
	}
	camera.Width, camera.Height = out.Width, out.Height
	return camera
}

// readExif decodes a validated TIFF block. A decoder panic is reported as an
// error.
func readExif(payload []byte) (out photos.Exif, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = photos.Exif{}, fmt.Errorf("exif decoder panic: %v", r)
		}
	}()

	x, err := exif.Decode(bytes.NewReader(payload))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return out, err
	}

	out.CameraMake = stringField(x, exif.Make)
	out.CameraModel = stringField(x, exif.Model)
	out.ISO = intField(x, exif.ISOSpeedRatings)

	if v, ok := ratField(x, exif.FNumber); ok {
		aperture := Round1(v)
		out.Aperture = &aperture
	}
	if v, ok := ratField(x, exif.ExposureTime); ok {
		if s, ok := FormatExposure(v); ok {
			out.ShutterSpeed = &s
		}
	}
	if v, ok := ratField(x, exif.FocalLength); ok {
		focal := Round1(v)
		out.FocalLength = &focal
	}

	return out, nil
}

// FormatExposure renders an exposure time in seconds the way cameras show
// it: fractions below one second as "1/N", longer exposures with one
// decimal. Non-positive values are rejected.
func FormatExposure(seconds float64) (string, bool) {
	switch {
	case seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0):
		return "", false
	case seconds < 1:
		return fmt.Sprintf("1/%d", int64(math.Round(1/seconds))), true
	default:
		return fmt.Sprintf("%.1f", seconds), true
	}
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func stringField(x *exif.Exif, name exif.FieldName) *string {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	s, err := tag.StringVal()
	if err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, "\x00"))
	if s == "" {
		return nil
	}
	return &s
}

func intField(x *exif.Exif, name exif.FieldName) *int {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &v
}

func ratField(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

package imagestore

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// PhotoInfo is the EXIF metadata of an uploaded room photo.
type PhotoInfo struct {
	CameraMake  string
	CameraModel string
	Taken       time.Time
	HasGPS      bool
}

// Inspect reads the EXIF block of data. Images without EXIF return an error.
func Inspect(data []byte) (PhotoInfo, error) {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return PhotoInfo{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}
	info := PhotoInfo{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
		Taken:       exifData.DateTimeOriginal(),
	}
	if gps := exifData.GPS; gps.Latitude() != 0 || gps.Longitude() != 0 {
		info.HasGPS = true
	}
	return info, nil
}

// PrepareUpload returns the bytes to store for an uploaded photo. A JPEG
// carrying GPS coordinates is re-encoded, which drops its EXIF block; any
// other image is returned as is.
func PrepareUpload(data []byte, contentType string) []byte {
	info, err := Inspect(data)
	if err != nil {
		log.Debug().Err(err).Msg("Uploaded photo has no readable EXIF")
		return data
	}
	log.Debug().
		Str("camera_make", info.CameraMake).
		Str("camera_model", info.CameraModel).
		Time("taken", info.Taken).
		Bool("has_gps", info.HasGPS).
		Msg("Uploaded photo metadata")
	if !info.HasGPS || sniff(data, contentType) != "image/jpeg" {
		return data
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("Could not decode photo to strip location, storing original")
		return data
	}
	return reencode(img, data)
}

func reencode(img image.Image, original []byte) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		log.Warn().Err(err).Msg("Could not re-encode photo, storing original")
		return original
	}
	log.Info().Int("before", len(original)).Int("after", buf.Len()).Msg("Stripped location from uploaded photo")
	return buf.Bytes()
}

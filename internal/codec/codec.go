// Package codec converts entry payloads between their captured shape and the
// single string form the stores persist. Text is stored as-is, binary media is
// stored as a data URI, and images carry their caption in a JSON wrapper
// around the data URI.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/memosphere/internal/constants"
	"github.com/julianstephens/memosphere/internal/models"
)

var (
	// ErrUnsupportedContentType is returned when content does not match one of
	// the known content types.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrInvalidDataURI is returned when a stored binary payload is not a
	// well-formed base64 data URI.
	ErrInvalidDataURI = errors.New("invalid data URI")
	// ErrMalformedImageWrapper is returned when a stored image payload cannot
	// be parsed back into its {imageData, caption} wrapper.
	ErrMalformedImageWrapper = errors.New("malformed image wrapper")
)

// imageWrapper is the persisted JSON shape of an image payload. ImageData is a
// data URI usable directly as an <img> source.
type imageWrapper struct {
	ImageData string `json:"imageData"`
	Caption   string `json:"caption"`
}

// Encode converts structured content into its storable string form.
func Encode(content models.EntryContent) (string, error) {
	switch c := content.(type) {
	case models.TextContent:
		return string(c), nil
	case models.AudioContent:
		return encodeDataURI(c.Data, c.MIME, constants.DefaultAudioMIME), nil
	case models.ImageContent:
		wrapper := imageWrapper{
			ImageData: encodeDataURI(c.Image, c.MIME, constants.DefaultImageMIME),
			Caption:   c.Caption,
		}
		data, err := json.Marshal(wrapper)
		if err != nil {
			return "", fmt.Errorf("failed to serialize image wrapper: %w", err)
		}
		return string(data), nil
	default:
		return "", ErrUnsupportedContentType
	}
}

// Decode reconstructs the structured content for a stored string. Decoding
// text and audio cannot fail; decoding an image re-parses the JSON wrapper and
// returns a recoverable error on malformed stored data.
func Decode(stored string, contentType models.ContentType) (models.EntryContent, error) {
	switch contentType {
	case models.ContentTypeText:
		return models.TextContent(stored), nil
	case models.ContentTypeAudio:
		data, mime, err := decodeDataURI(stored)
		if err != nil {
			return nil, err
		}
		return models.AudioContent{Data: data, MIME: mime}, nil
	case models.ContentTypeImage:
		var wrapper imageWrapper
		if err := json.Unmarshal([]byte(stored), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedImageWrapper, err)
		}
		if wrapper.ImageData == "" {
			return nil, fmt.Errorf("%w: missing imageData", ErrMalformedImageWrapper)
		}
		img, mime, err := decodeDataURI(wrapper.ImageData)
		if err != nil {
			return nil, err
		}
		return models.ImageContent{Image: img, MIME: mime, Caption: wrapper.Caption}, nil
	default:
		return nil, ErrUnsupportedContentType
	}
}

func encodeDataURI(data []byte, mime, fallbackMIME string) string {
	if mime == "" {
		mime = fallbackMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing base64 marker", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, mime, nil
}

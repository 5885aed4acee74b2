package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/memosphere/internal/models"
)

func TestEncodeText(t *testing.T) {
	stored, err := Encode(models.TextContent("hello world"))
	if err != nil {
		t.Fatalf("Encode() returned unexpected error: %v", err)
	}
	if stored != "hello world" {
		t.Errorf("Encode() = %q, want identity encoding", stored)
	}
}

func TestEncodeAudio(t *testing.T) {
	t.Run("uses provided MIME type", func(t *testing.T) {
		stored, err := Encode(models.AudioContent{Data: []byte{0x1a, 0x45}, MIME: "audio/ogg"})
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}
		if !strings.HasPrefix(stored, "data:audio/ogg;base64,") {
			t.Errorf("Encode() = %q, want data URI with audio/ogg", stored)
		}
	})

	t.Run("defaults MIME type when unset", func(t *testing.T) {
		stored, err := Encode(models.AudioContent{Data: []byte{0x1a}})
		if err != nil {
			t.Fatalf("Encode() returned unexpected error: %v", err)
		}
		if !strings.HasPrefix(stored, "data:audio/webm;base64,") {
			t.Errorf("Encode() = %q, want default audio/webm data URI", stored)
		}
	})
}

func TestEncodeUnsupported(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, ErrUnsupportedContentType) {
		t.Errorf("Encode(nil) error = %v, want ErrUnsupportedContentType", err)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content models.EntryContent
	}{
		{"text", models.TextContent("a quiet evening")},
		{"empty text", models.TextContent("")},
		{"audio", models.AudioContent{Data: []byte{0x00, 0x01, 0xff, 0xfe}, MIME: "audio/webm"}},
		{"empty audio", models.AudioContent{Data: []byte{}, MIME: "audio/webm"}},
		{"image", models.ImageContent{Image: []byte{0x89, 0x50, 0x4e, 0x47}, MIME: "image/png", Caption: "sunset over the bay"}},
		{"image with empty caption", models.ImageContent{Image: []byte{0xff, 0xd8}, MIME: "image/jpeg", Caption: ""}},
		{"image with unicode caption", models.ImageContent{Image: []byte{0x01}, MIME: "image/png", Caption: "café ☀️"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := Encode(tt.content)
			if err != nil {
				t.Fatalf("Encode() returned unexpected error: %v", err)
			}

			decoded, err := Decode(stored, tt.content.ContentType())
			if err != nil {
				t.Fatalf("Decode() returned unexpected error: %v", err)
			}

			switch want := tt.content.(type) {
			case models.TextContent:
				got, ok := decoded.(models.TextContent)
				if !ok || got != want {
					t.Errorf("Decode() = %v, want %v", decoded, want)
				}
			case models.AudioContent:
				got, ok := decoded.(models.AudioContent)
				if !ok {
					t.Fatalf("Decode() returned %T, want AudioContent", decoded)
				}
				if !bytes.Equal(got.Data, want.Data) {
					t.Errorf("Decode() data = %v, want %v", got.Data, want.Data)
				}
				if got.MIME != want.MIME {
					t.Errorf("Decode() MIME = %q, want %q", got.MIME, want.MIME)
				}
			case models.ImageContent:
				got, ok := decoded.(models.ImageContent)
				if !ok {
					t.Fatalf("Decode() returned %T, want ImageContent", decoded)
				}
				if !bytes.Equal(got.Image, want.Image) {
					t.Errorf("Decode() image = %v, want %v", got.Image, want.Image)
				}
				if got.Caption != want.Caption {
					t.Errorf("Decode() caption = %q, want %q", got.Caption, want.Caption)
				}
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name        string
		stored      string
		contentType models.ContentType
		wantErr     error
	}{
		{"image wrapper not JSON", "not json at all", models.ContentTypeImage, ErrMalformedImageWrapper},
		{"image wrapper missing imageData", `{"caption": "lonely"}`, models.ContentTypeImage, ErrMalformedImageWrapper},
		{"image wrapper with bad data URI", `{"imageData": "nope", "caption": "x"}`, models.ContentTypeImage, ErrInvalidDataURI},
		{"audio without data prefix", "just a string", models.ContentTypeAudio, ErrInvalidDataURI},
		{"audio without base64 marker", "data:audio/webm,abc", models.ContentTypeAudio, ErrInvalidDataURI},
		{"audio with invalid base64", "data:audio/webm;base64,@@@", models.ContentTypeAudio, ErrInvalidDataURI},
		{"unknown content type", "whatever", models.ContentType("video"), ErrUnsupportedContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.stored, tt.contentType)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeTextNeverFails(t *testing.T) {
	decoded, err := Decode("anything, even {malformed json", models.ContentTypeText)
	if err != nil {
		t.Fatalf("Decode() returned unexpected error: %v", err)
	}
	if decoded.(models.TextContent) != "anything, even {malformed json" {
		t.Errorf("Decode() = %v, want identity", decoded)
	}
}

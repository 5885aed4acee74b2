package models

// ContentType identifies the kind of payload an entry holds. It is fixed at
// creation and never changes for the lifetime of the entry.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeAudio ContentType = "audio"
	ContentTypeImage ContentType = "image"
)

// Valid reports whether c is one of the supported content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeText, ContentTypeAudio, ContentTypeImage:
		return true
	}
	return false
}

// Feeling is a mood tag attached to an entry. Intensity is a 1-5 scale.
type Feeling struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Intensity int    `json:"intensity"`
}

// Activity is an activity tag attached to an entry.
type Activity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entry is a single journal record. The JSON tags are the wire names shared by
// the persisted slot and the remote entry API.
//
// Content always holds the encoded (storable) string form of the payload; use
// the codec to reconstruct the structured shape. Decoded carries that
// structured shape after a decode-on-read and is never persisted.
type Entry struct {
	ID            string      `json:"id"`
	ContentType   ContentType `json:"contentType"`
	Content       string      `json:"content"`
	Title         string      `json:"title"`
	Date          string      `json:"date"` // RFC3339 UTC, assigned once by the store
	Feelings      []Feeling   `json:"feelings"`
	Activities    []Activity  `json:"activities"`
	IsReflection  bool        `json:"isReflection"`
	LinkedEntryID string      `json:"linkedEntryId,omitempty"` // set iff IsReflection
	Prompt        string      `json:"prompt,omitempty"`

	Decoded EntryContent `json:"-"`
}

// NewEntry is an Entry before the store has assigned its identity and
// timestamp. Content must already be in encoded form.
type NewEntry struct {
	ContentType   ContentType `json:"contentType"`
	Content       string      `json:"content"`
	Title         string      `json:"title"`
	Feelings      []Feeling   `json:"feelings"`
	Activities    []Activity  `json:"activities"`
	IsReflection  bool        `json:"isReflection"`
	LinkedEntryID string      `json:"linkedEntryId,omitempty"`
	Prompt        string      `json:"prompt,omitempty"`
}

// EntryContent is the structured payload of an entry, tagged by content type.
// It is a closed set: TextContent, AudioContent and ImageContent are the only
// implementations, and every encode/decode site switches exhaustively over
// them.
type EntryContent interface {
	ContentType() ContentType
}

// TextContent is a plain text payload.
type TextContent string

func (TextContent) ContentType() ContentType { return ContentTypeText }

// AudioContent is a recorded audio payload. MIME identifies the container
// format (e.g. audio/webm); when empty the codec substitutes a default.
type AudioContent struct {
	Data []byte
	MIME string
}

func (AudioContent) ContentType() ContentType { return ContentTypeAudio }

// ImageContent is an image payload with its caption.
type ImageContent struct {
	Image   []byte
	MIME    string
	Caption string
}

func (ImageContent) ContentType() ContentType { return ContentTypeImage }

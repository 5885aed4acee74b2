// Package service is the façade presentation code talks to. It orchestrates
// the codec and a storage provider, owns identity-agnostic validation and the
// title fallback, and guarantees callers always see structured content rather
// than the wire-level encoded string.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/memosphere/internal/codec"
	"github.com/julianstephens/memosphere/internal/constants"
	"github.com/julianstephens/memosphere/internal/logger"
	"github.com/julianstephens/memosphere/internal/models"
	"github.com/julianstephens/memosphere/internal/storage"
	"github.com/julianstephens/memosphere/internal/transcribe"
)

var (
	// ErrNilContent is returned when CreateEntry is called without content.
	ErrNilContent = errors.New("entry content is required")
	// ErrUnknownContentType is returned for a content type outside the
	// supported set.
	ErrUnknownContentType = errors.New("unknown content type")
	// ErrContentTypeMismatch is returned when the declared content type does
	// not match the shape of the provided content.
	ErrContentTypeMismatch = errors.New("content does not match declared content type")
	// ErrInvalidFeelingIntensity is returned when a feeling's intensity falls
	// outside the 1-5 scale.
	ErrInvalidFeelingIntensity = errors.New("feeling intensity out of range")
	// ErrMissingLinkedEntry is returned when a reflection is created without a
	// linked entry id.
	ErrMissingLinkedEntry = errors.New("reflection requires a linked entry id")
	// ErrUnexpectedLinkedEntry is returned when a non-reflection carries a
	// linked entry id.
	ErrUnexpectedLinkedEntry = errors.New("linked entry id is only valid on reflections")
	// ErrLinkedEntryNotFound is returned when the linked entry does not exist
	// at creation time.
	ErrLinkedEntryNotFound = errors.New("linked entry not found")
	// ErrNotAudioEntry is returned when transcription is requested for a
	// non-audio entry.
	ErrNotAudioEntry = errors.New("entry is not an audio entry")
	// ErrNoTranscriber is returned when no transcription collaborator is
	// configured.
	ErrNoTranscriber = errors.New("no transcriber configured")
)

// Service combines a storage provider with the content codec. Construct one
// Service per process with the long-lived store and pass it by reference to
// the presentation layer.
type Service struct {
	store       storage.Provider
	transcriber transcribe.Transcriber
}

// New creates a Service on top of the given provider.
func New(store storage.Provider) *Service {
	return &Service{
		store: store,
	}
}

// WithTranscriber attaches an optional speech-to-text collaborator.
func (s *Service) WithTranscriber(t transcribe.Transcriber) *Service {
	s.transcriber = t
	return s
}

// CreateEntryInput carries everything needed to create an entry. Content is
// the raw captured payload; the service encodes it before persistence.
type CreateEntryInput struct {
	ContentType   models.ContentType
	Content       models.EntryContent
	Title         string
	Feelings      []models.Feeling
	Activities    []models.Activity
	IsReflection  bool
	LinkedEntryID string
	Prompt        string
}

// CreateEntry validates and encodes the input, substitutes a placeholder
// title when the given one is blank, and persists the entry. The returned
// entry has Decoded populated.
func (s *Service) CreateEntry(in CreateEntryInput) (models.Entry, error) {
	if err := s.validate(in); err != nil {
		return models.Entry{}, err
	}

	encoded, err := codec.Encode(in.Content)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to encode content: %w", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title, err = s.nextUntitled()
		if err != nil {
			return models.Entry{}, err
		}
	}

	saved, err := s.store.Save(models.NewEntry{
		ContentType:   in.ContentType,
		Content:       encoded,
		Title:         title,
		Feelings:      in.Feelings,
		Activities:    in.Activities,
		IsReflection:  in.IsReflection,
		LinkedEntryID: in.LinkedEntryID,
		Prompt:        in.Prompt,
	})
	if err != nil {
		return models.Entry{}, err
	}

	saved.Decoded = in.Content
	return saved, nil
}

// validate rejects invalid input before any persistence attempt.
func (s *Service) validate(in CreateEntryInput) error {
	if !in.ContentType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownContentType, in.ContentType)
	}
	if in.Content == nil {
		return ErrNilContent
	}
	if in.Content.ContentType() != in.ContentType {
		return fmt.Errorf("%w: declared %q, got %q",
			ErrContentTypeMismatch, in.ContentType, in.Content.ContentType())
	}
	for _, feeling := range in.Feelings {
		if feeling.Intensity < constants.MinFeelingIntensity || feeling.Intensity > constants.MaxFeelingIntensity {
			return fmt.Errorf("%w: %q has intensity %d, want %d-%d", ErrInvalidFeelingIntensity,
				feeling.Name, feeling.Intensity, constants.MinFeelingIntensity, constants.MaxFeelingIntensity)
		}
	}

	if in.IsReflection {
		if in.LinkedEntryID == "" {
			return ErrMissingLinkedEntry
		}
		// Referential integrity is checked at creation time only; links may
		// dangle later if the referent is deleted.
		_, found, err := s.store.GetByID(in.LinkedEntryID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrLinkedEntryNotFound, in.LinkedEntryID)
		}
	} else if in.LinkedEntryID != "" {
		return ErrUnexpectedLinkedEntry
	}

	return nil
}

// nextUntitled returns "Untitled" when no untitled entries exist, otherwise
// "Untitled N" with N one greater than the current untitled count.
func (s *Service) nextUntitled() (string, error) {
	entries, err := s.store.GetAll()
	if err != nil {
		return "", err
	}

	count := 0
	for _, entry := range entries {
		if isUntitled(entry.Title) {
			count++
		}
	}

	if count == 0 {
		return constants.UntitledTitle, nil
	}
	return constants.UntitledTitle + " " + strconv.Itoa(count+1), nil
}

func isUntitled(title string) bool {
	if title == constants.UntitledTitle {
		return true
	}
	suffix, ok := strings.CutPrefix(title, constants.UntitledTitle+" ")
	if !ok {
		return false
	}
	_, err := strconv.Atoi(suffix)
	return err == nil
}

// GetAllEntries returns every entry, newest first, with content decoded.
func (s *Service) GetAllEntries() ([]models.Entry, error) {
	entries, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}
	return s.decodeAll(entries), nil
}

// GetEntryByID returns a single entry with content decoded. Absence is
// reported through the second return value.
func (s *Service) GetEntryByID(id string) (models.Entry, bool, error) {
	entry, found, err := s.store.GetByID(id)
	if err != nil || !found {
		return models.Entry{}, found, err
	}
	return s.decodeEntry(entry), true, nil
}

// SearchEntries returns entries matching the query, with content decoded. A
// blank query returns everything.
func (s *Service) SearchEntries(query string) ([]models.Entry, error) {
	entries, err := s.store.Search(query)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(entries), nil
}

// GetReflectionChain returns the decoded ancestry of the entry, oldest last.
func (s *Service) GetReflectionChain(id string) ([]models.Entry, error) {
	chain, err := s.store.GetReflectionChain(id)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(chain), nil
}

// DeleteEntry removes the entry and its direct reflections.
func (s *Service) DeleteEntry(id string) error {
	return s.store.Delete(id)
}

// TranscribeEntry runs the configured speech-to-text collaborator over an
// audio entry's payload. The result is never persisted.
func (s *Service) TranscribeEntry(ctx context.Context, id string) (string, error) {
	if s.transcriber == nil {
		return "", ErrNoTranscriber
	}

	entry, found, err := s.store.GetByID(id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("entry not found: %s", id)
	}
	if entry.ContentType != models.ContentTypeAudio {
		return "", ErrNotAudioEntry
	}

	decoded, err := codec.Decode(entry.Content, entry.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to decode audio content: %w", err)
	}
	audio := decoded.(models.AudioContent)

	return s.transcriber.Transcribe(ctx, audio.Data, audio.MIME)
}

func (s *Service) decodeAll(entries []models.Entry) []models.Entry {
	decoded := make([]models.Entry, len(entries))
	for i, entry := range entries {
		decoded[i] = s.decodeEntry(entry)
	}
	return decoded
}

// decodeEntry populates Decoded from the stored content. A decode failure
// degrades only this entry: the raw content is passed through with Decoded
// left nil so a batch read never fails on one malformed record.
func (s *Service) decodeEntry(entry models.Entry) models.Entry {
	decoded, err := codec.Decode(entry.Content, entry.ContentType)
	if err != nil {
		logger.Warn("failed to decode entry content", "id", entry.ID,
			"contentType", entry.ContentType, "error", err)
		return entry
	}
	entry.Decoded = decoded
	return entry
}

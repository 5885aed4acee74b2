package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/memosphere/internal/constants"
	"github.com/julianstephens/memosphere/internal/keyring"
	"github.com/julianstephens/memosphere/internal/logger"
	"github.com/julianstephens/memosphere/internal/models"
)

// RemoteStore is a Provider backed by the remote entry API instead of a local
// slot. It can be substituted for a local store without changing the service
// contract. Reflection chains are walked client-side with the same
// termination rules as the local stores.
type RemoteStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// RemoteOptions configures a RemoteStore. Token is optional; when empty, Load
// falls back to the token stored in the OS keyring, and requests go out
// unauthenticated if neither is present.
type RemoteOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewRemoteStore(opts RemoteOptions) *RemoteStore {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *RemoteStore) Init() error {
	return s.Load()
}

func (s *RemoteStore) Load() error {
	if s.token == "" {
		token, err := keyring.GetAPIToken()
		if err == nil {
			s.token = token
		} else if err != keyring.ErrNotFound {
			logger.Warn("could not read API token from keyring", "error", err)
		}
	}
	return nil
}

func (s *RemoteStore) Close() error {
	return nil
}

// errRemoteNotFound marks a 404 from the entry API. Only lookups and deletes
// treat it as a normal outcome; every other operation surfaces it as a failure.
var errRemoteNotFound = errors.New("entry API returned status 404")

func (s *RemoteStore) do(method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to serialize request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach entry API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errRemoteNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("entry API returned status %d", resp.StatusCode)
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode entry API response: %w", err)
		}
	}

	return nil
}

func (s *RemoteStore) GetAll() ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.do(http.MethodGet, constants.RemoteEntriesPath, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (s *RemoteStore) GetByID(id string) (models.Entry, bool, error) {
	var entry models.Entry
	err := s.do(http.MethodGet, constants.RemoteEntriesPath+"/"+url.PathEscape(id), nil, &entry)
	if errors.Is(err, errRemoteNotFound) {
		// The referent may legitimately have been deleted
		return models.Entry{}, false, nil
	}
	if err != nil {
		return models.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *RemoteStore) Save(entry models.NewEntry) (models.Entry, error) {
	// The API assigns id and date server-side
	var saved models.Entry
	if err := s.do(http.MethodPost, constants.RemoteEntriesPath, entry, &saved); err != nil {
		return models.Entry{}, err
	}
	return saved, nil
}

func (s *RemoteStore) Search(query string) ([]models.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return s.GetAll()
	}

	var entries []models.Entry
	path := constants.RemoteSearchPath + "?query=" + url.QueryEscape(query)
	if err := s.do(http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (s *RemoteStore) GetReflectionChain(id string) ([]models.Entry, error) {
	return walkChain(id, s.GetByID)
}

func (s *RemoteStore) Delete(id string) error {
	err := s.do(http.MethodDelete, constants.RemoteEntriesPath+"/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, errRemoteNotFound) {
		// Deleting an unknown id is a no-op, matching the local stores.
		return nil
	}
	return err
}

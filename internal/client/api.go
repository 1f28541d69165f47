package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"minichat/pkg/models"
)

// API is a thin HTTP client for the chat server.
type API struct {
	base string
	hc   *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *API) Messages() ([]models.Message, error) {
	res, err := a.hc.Get(a.base + "/messages")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, apiError(res)
	}
	var msgs []models.Message
	if err := json.NewDecoder(res.Body).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

// Send posts a message and returns the server-assigned record.
func (a *API) Send(m models.Message) (models.Message, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return models.Message{}, err
	}
	res, err := a.hc.Post(a.base+"/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		return models.Message{}, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		return models.Message{}, apiError(res)
	}
	var out models.Message
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return models.Message{}, fmt.Errorf("decode created message: %w", err)
	}
	return out, nil
}

// Upload streams a local file as multipart form data and returns the
// URL the server will serve it from.
func (a *API) Upload(path string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	res, err := a.hc.Post(a.base+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", apiError(res)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.URL, nil
}

func (a *API) Reset() error {
	res, err := a.hc.Post(a.base+"/reset", "application/json", nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return apiError(res)
	}
	return nil
}

// ResolveURL turns a server-relative upload path into an absolute URL.
func (a *API) ResolveURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return a.base + u
}

func apiError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("server: %s", payload.Error)
	}
	return fmt.Errorf("server: unexpected status %s", res.Status)
}

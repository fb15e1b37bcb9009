// Package recognizer talks to the external face recognition service. The
// service is a black box: it detects faces in an image and returns their
// embeddings. Everything about the model, embedding format and detector
// lives on the other side of this HTTP API.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	defaultRecognizerURL   = "http://localhost:8000"
	defaultRecognizerModel = "vgg-face"
)

// ErrNoFace is returned when the recognizer found no face in the image.
var ErrNoFace = errors.New("no face detected")

// Client computes face embeddings using the recognizer service
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a new recognizer client
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultRecognizerURL
	}
	if model == "" {
		model = defaultRecognizerModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Face represents a single detected face
type Face struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int    `json:"faces_count"`
	Faces      []Face `json:"faces"`
	Model      string `json:"model"`
}

// Model returns the model name being used
func (c *Client) Model() string {
	return c.model
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries an explicit Content-Type header
// based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.WriteField("model", c.model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectFaces detects faces in an image and computes their embeddings
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &faceResp, nil
}

// PrimaryFace returns the detected face with the highest detection score.
func PrimaryFace(resp *FaceResponse) (*Face, error) {
	if resp == nil || len(resp.Faces) == 0 {
		return nil, ErrNoFace
	}
	best := &resp.Faces[0]
	for i := range resp.Faces {
		if resp.Faces[i].DetScore > best.DetScore {
			best = &resp.Faces[i]
		}
	}
	if len(best.Embedding) == 0 {
		return nil, ErrNoFace
	}
	return best, nil
}

// Embed detects faces in an image and returns the embedding of the most
// prominent one. Returns ErrNoFace when the image contains no usable face.
func (c *Client) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	resp, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	face, err := PrimaryFace(resp)
	if err != nil {
		return nil, err
	}
	return face.Embedding, nil
}

// Ping checks that the recognizer service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recognizer health check returned status %d", resp.StatusCode)
	}
	return nil
}

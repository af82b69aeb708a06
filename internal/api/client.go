// Package api provides stateless request/response wrappers over the
// interview backend's HTTP API. One client is safe for reuse across calls;
// the admin surface relies on the shared cookie jar for its session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"interviewkit/internal/domain"
)

// Client talks to the interview backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}, nil
}

// ValidateCode redeems a one-time interview code for a session.
func (c *Client) ValidateCode(ctx context.Context, code, candidateName string) (domain.CodeValidation, error) {
	code = strings.TrimSpace(code)
	candidateName = strings.TrimSpace(candidateName)
	if code == "" || candidateName == "" {
		return domain.CodeValidation{}, fmt.Errorf("%w: code and candidate name are required", domain.ErrValidation)
	}

	var out struct {
		Success       bool   `json:"success"`
		SessionID     string `json:"session_id"`
		CandidateName string `json:"candidate_name"`
		Message       string `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/interview/validate-code", map[string]string{
		"code":           code,
		"candidate_name": candidateName,
	}, &out)
	if err != nil {
		return domain.CodeValidation{}, err
	}
	if !out.Success {
		if out.Message == "" {
			out.Message = "code validation was not accepted"
		}
		return domain.CodeValidation{}, fmt.Errorf("%w: %s", domain.ErrValidation, out.Message)
	}
	return domain.CodeValidation{SessionID: out.SessionID, CandidateName: out.CandidateName}, nil
}

// GetSession fetches the session record and its ordered question list.
func (c *Client) GetSession(ctx context.Context, sessionID string) (domain.SessionDetail, error) {
	var out domain.SessionDetail
	err := c.doJSON(ctx, http.MethodGet, "/api/interview/session/"+sessionID, nil, &out)
	return out, err
}

// StartSession transitions the session to active and returns the first
// question.
func (c *Client) StartSession(ctx context.Context, sessionID string) (domain.Question, error) {
	var out struct {
		Success         bool            `json:"success"`
		CurrentQuestion domain.Question `json:"current_question"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/interview/session/"+sessionID+"/start", nil, &out)
	if err != nil {
		return domain.Question{}, err
	}
	return out.CurrentQuestion, nil
}

// NextQuestion advances the session and returns either the next question or
// a completion flag.
func (c *Client) NextQuestion(ctx context.Context, sessionID string) (domain.NextQuestionResult, error) {
	var out struct {
		Success            bool            `json:"success"`
		InterviewCompleted bool            `json:"interview_completed"`
		CurrentQuestion    domain.Question `json:"current_question"`
		Message            string          `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/interview/session/"+sessionID+"/next-question", nil, &out)
	if err != nil {
		return domain.NextQuestionResult{}, err
	}
	return domain.NextQuestionResult{
		Completed: out.InterviewCompleted,
		Question:  out.CurrentQuestion,
		Message:   out.Message,
	}, nil
}

// SaveResponse persists the accumulated transcript for one question. AI
// analysis and scoring happen server-side and are not sent from here.
func (c *Client) SaveResponse(ctx context.Context, sessionID string, questionID int64, transcript string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/interview/session/"+sessionID+"/response", map[string]any{
		"question_id": questionID,
		"transcript":  transcript,
	}, nil)
}

// UploadRecording sends the finalized recording as a multipart form and
// returns the stored recording identifier.
func (c *Client) UploadRecording(ctx context.Context, up domain.RecordingUpload) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filename := fmt.Sprintf("recording-%s-%d-%s%s", up.SessionID, up.QuestionID, uuid.NewString(), extensionFor(up.Blob.MimeType))
	part, err := writer.CreateFormFile("recording", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(up.Blob.Data); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	fields := map[string]string{
		"session_id":     up.SessionID,
		"question_id":    strconv.FormatInt(up.QuestionID, 10),
		"recording_type": up.Type,
		"duration":       strconv.Itoa(int(up.Blob.Duration.Seconds())),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/interview/upload-recording", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeAPIError(resp)
	}

	var out struct {
		RecordingID json.Number `json:"recording_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return out.RecordingID.String(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

func extensionFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "video/webm"), strings.HasPrefix(mimeType, "audio/webm"):
		return ".webm"
	case strings.HasPrefix(mimeType, "video/mp4"):
		return ".mp4"
	case strings.HasPrefix(mimeType, "audio/wav"):
		return ".wav"
	default:
		return ""
	}
}

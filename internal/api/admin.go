package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"interviewkit/internal/domain"
)

// Login authenticates the admin; the backend session cookie lands in the
// client's jar and rides along on subsequent admin calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	return c.doJSON(ctx, http.MethodPost, "/api/admin/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
}

// CheckAuth reports whether the stored admin session is still valid.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	var out struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/check-auth", nil, &out); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	return out.Authenticated, nil
}

func (c *Client) GetCodes(ctx context.Context) ([]domain.InterviewCode, error) {
	var out struct {
		Codes []domain.InterviewCode `json:"codes"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/codes", nil, &out)
	return out.Codes, err
}

func (c *Client) CreateCode(ctx context.Context, expiresInHours int) (domain.InterviewCode, error) {
	if expiresInHours <= 0 {
		expiresInHours = 24
	}
	var out struct {
		Code domain.InterviewCode `json:"code"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/codes", map[string]int{
		"expires_in_hours": expiresInHours,
	}, &out)
	return out.Code, err
}

func (c *Client) DeleteCode(ctx context.Context, codeID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/codes/"+strconv.FormatInt(codeID, 10), nil, nil)
}

func (c *Client) GetQuestionSets(ctx context.Context) ([]domain.QuestionSet, error) {
	var out struct {
		QuestionSets []domain.QuestionSet `json:"question_sets"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/question-sets", nil, &out)
	return out.QuestionSets, err
}

func (c *Client) CreateQuestionSet(ctx context.Context, set domain.QuestionSet) (domain.QuestionSet, error) {
	if strings.TrimSpace(set.Name) == "" || len(set.Questions) == 0 {
		return domain.QuestionSet{}, fmt.Errorf("%w: name and questions are required", domain.ErrValidation)
	}
	var out struct {
		QuestionSet domain.QuestionSet `json:"question_set"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/question-sets", map[string]any{
		"name":        set.Name,
		"description": set.Description,
		"questions":   set.Questions,
	}, &out)
	return out.QuestionSet, err
}

func (c *Client) ActivateQuestionSet(ctx context.Context, setID int64) error {
	return c.doJSON(ctx, http.MethodPost, "/api/admin/question-sets/"+strconv.FormatInt(setID, 10)+"/activate", nil, nil)
}

func (c *Client) GetSessions(ctx context.Context) ([]domain.Session, error) {
	var out struct {
		Sessions []domain.Session `json:"sessions"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/sessions", nil, &out)
	return out.Sessions, err
}

func (c *Client) GetAdminSession(ctx context.Context, sessionID string) (domain.Session, error) {
	var out struct {
		Session domain.Session `json:"session"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/sessions/"+sessionID, nil, &out)
	return out.Session, err
}

func (c *Client) GetSessionResponses(ctx context.Context, sessionID string) ([]domain.QuestionResponse, error) {
	var out struct {
		Responses []domain.QuestionResponse `json:"responses"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/sessions/"+sessionID+"/responses", nil, &out)
	return out.Responses, err
}

func (c *Client) GetSessionTranscripts(ctx context.Context, sessionID string) ([]domain.TranscriptSegment, error) {
	var out struct {
		Transcripts []domain.TranscriptSegment `json:"transcripts"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/sessions/"+sessionID+"/transcripts", nil, &out)
	return out.Transcripts, err
}

func (c *Client) GetSessionAIResponses(ctx context.Context, sessionID string) ([]domain.StoredAIResponse, error) {
	var out struct {
		AIResponses []domain.StoredAIResponse `json:"ai_responses"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/sessions/"+sessionID+"/ai-responses", nil, &out)
	return out.AIResponses, err
}

func (c *Client) GetSessionRecordings(ctx context.Context, sessionID string) ([]domain.RecordingInfo, error) {
	var out struct {
		Recordings []domain.RecordingInfo `json:"recordings"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/sessions/"+sessionID+"/recordings", nil, &out)
	return out.Recordings, err
}

// DownloadRecording streams a stored recording. It returns the raw bytes and
// the server-provided filename (falling back to the recording id).
func (c *Client) DownloadRecording(ctx context.Context, recordingID int64) ([]byte, string, error) {
	url := fmt.Sprintf("%s/api/admin/recordings/%d/download", c.baseURL, recordingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read recording body: %w", err)
	}

	filename := fmt.Sprintf("recording-%d", recordingID)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := path.Base(params["filename"]); name != "" && name != "." {
			filename = name
		}
	}
	return data, filename, nil
}

func (c *Client) GetAIPrompts(ctx context.Context) ([]domain.AIPrompt, error) {
	var out struct {
		Prompts []domain.AIPrompt `json:"prompts"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/ai-prompts", nil, &out)
	return out.Prompts, err
}

// CreateAIPrompt persists a new prompt template. Name and prompt text are
// validated locally so an empty form never issues a network call.
func (c *Client) CreateAIPrompt(ctx context.Context, prompt domain.AIPrompt) (domain.AIPrompt, error) {
	if err := validatePrompt(prompt); err != nil {
		return domain.AIPrompt{}, err
	}
	var out struct {
		Prompt domain.AIPrompt `json:"prompt"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/ai-prompts", promptBody(prompt), &out)
	return out.Prompt, err
}

func (c *Client) UpdateAIPrompt(ctx context.Context, prompt domain.AIPrompt) (domain.AIPrompt, error) {
	if err := validatePrompt(prompt); err != nil {
		return domain.AIPrompt{}, err
	}
	var out struct {
		Prompt domain.AIPrompt `json:"prompt"`
	}
	err := c.doJSON(ctx, http.MethodPut, "/api/admin/ai-prompts/"+strconv.FormatInt(prompt.ID, 10), promptBody(prompt), &out)
	return out.Prompt, err
}

func (c *Client) DeleteAIPrompt(ctx context.Context, promptID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/ai-prompts/"+strconv.FormatInt(promptID, 10), nil, nil)
}

func (c *Client) ActivateAIPrompt(ctx context.Context, promptID int64) error {
	return c.doJSON(ctx, http.MethodPost, "/api/admin/ai-prompts/"+strconv.FormatInt(promptID, 10)+"/activate", nil, nil)
}

func validatePrompt(prompt domain.AIPrompt) error {
	if strings.TrimSpace(prompt.Name) == "" || strings.TrimSpace(prompt.PromptText) == "" {
		return fmt.Errorf("%w: Name and prompt text are required", domain.ErrValidation)
	}
	return nil
}

func promptBody(prompt domain.AIPrompt) map[string]any {
	return map[string]any{
		"name":        prompt.Name,
		"description": prompt.Description,
		"prompt_text": prompt.PromptText,
	}
}

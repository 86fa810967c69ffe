package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
)

var (
	// ErrUnauthorized marks an access token the pipeline service rejected.
	ErrUnauthorized = errors.New("pipeline: unauthorized")

	// ErrJobNotFound marks a job ID unknown to the pipeline service.
	ErrJobNotFound = errors.New("pipeline: job not found")
)

// Service is the HTTP client for the external document-processing backend.
// All calls are authorized with the session's access token; the gateway never
// holds credentials of its own for this upstream.
type Service struct {
	client  *http.Client
	baseURL string
}

// Job is one processed customs document as the job-history widget shows it.
type Job struct {
	ID                string    `json:"id"`
	FileName          string    `json:"file_name"`
	Status            string    `json:"status"`
	TotalLineItems    int       `json:"total_line_items"`
	MatchedLineItems  int       `json:"matched_line_items"`
	AverageConfidence float64   `json:"average_confidence"`
	CreditsUsed       int       `json:"credits_used"`
	HasXMLOutput      bool      `json:"has_xml_output"`
	CreatedAt         time.Time `json:"created_at"`
}

// LineItem is a single extracted product row with its HS-code match.
type LineItem struct {
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	HSCode         string  `json:"hs_code"`
	Confidence     float64 `json:"confidence"`
	RequiresReview bool    `json:"requires_review"`
}

// JobDetail is a job plus its extracted line items.
type JobDetail struct {
	Job       Job        `json:"job"`
	LineItems []LineItem `json:"line_items"`
}

// JobPage is one page of job history.
type JobPage struct {
	Jobs  []Job `json:"jobs"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int   `json:"total"`
}

// Metrics are the aggregate numbers the dashboard cards display.
type Metrics struct {
	TotalJobs         int     `json:"total_jobs"`
	SucceededJobs     int     `json:"succeeded_jobs"`
	FailedJobs        int     `json:"failed_jobs"`
	SuccessRate       float64 `json:"success_rate"`
	AverageConfidence float64 `json:"average_confidence"`
	TotalLineItems    int     `json:"total_line_items"`
	CreditsSpent      int     `json:"credits_spent"`
}

func NewService() *Service {
	baseURL := config.GetPipelineBaseURL()

	if baseURL == "" {
		return nil
	}

	return &Service{
		client:  &http.Client{Timeout: config.GetUpstreamTimeout()},
		baseURL: baseURL,
	}
}

func (s *Service) get(ctx context.Context, accessToken, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach pipeline service: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusUnauthorized:
		resp.Body.Close()
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrJobNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("pipeline service returned status %d for %s", resp.StatusCode, path)
	}
}

// ListJobs fetches one page of the user's job history.
func (s *Service) ListJobs(ctx context.Context, accessToken string, page, limit int) (*JobPage, error) {
	path := "/api/v1/processing/jobs?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)

	resp, err := s.get(ctx, accessToken, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result JobPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode job page: %w", err)
	}

	return &result, nil
}

// GetJob fetches a single job with its extracted line items.
func (s *Service) GetJob(ctx context.Context, accessToken, jobID string) (*JobDetail, error) {
	resp, err := s.get(ctx, accessToken, "/api/v1/processing/jobs/"+jobID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result JobDetail
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode job detail: %w", err)
	}

	return &result, nil
}

// GetMetrics fetches the aggregate dashboard numbers.
func (s *Service) GetMetrics(ctx context.Context, accessToken string) (*Metrics, error) {
	resp, err := s.get(ctx, accessToken, "/api/v1/dashboard/metrics")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result Metrics
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}

	return &result, nil
}

// GetJobXML streams the generated XML document for a completed job. The caller
// owns the returned reader and must close it.
func (s *Service) GetJobXML(ctx context.Context, accessToken, jobID string) (io.ReadCloser, error) {
	resp, err := s.get(ctx, accessToken, "/api/v1/processing/jobs/"+jobID+"/xml")
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

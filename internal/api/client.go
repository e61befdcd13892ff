package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/domain"
	"github.com/spec-kit/clinic-client/internal/observability"
)

// Endpoint paths of the remote clinic API.
const (
	pathToken             = "/api/token/"
	pathDoctors           = "/api/doctors/"
	pathAppointments      = "/api/appointments/"
	pathCreateAppointment = "/api/appointments/create/"
)

// Config holds construction parameters for a Client.
type Config struct {
	// BaseURL is the root of the clinic API, e.g. "http://localhost:8000".
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
	// HTTPClient is used for all requests. If nil, a client with the
	// configured timeout is built.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, logging is disabled.
	Logger *zap.Logger
	// Metrics records per-endpoint request counters. Optional.
	Metrics *observability.Metrics
}

// Client talks to the remote clinic API. All listing and creation calls are
// authenticated with a bearer credential supplied per call; the client holds
// no session state of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient validates the base URL and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// TokenRequest is the credential exchange payload.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateAppointmentRequest is the booking creation payload.
type CreateAppointmentRequest struct {
	PatientName     string `json:"patient_name"`
	Age             int    `json:"age"`
	AppointmentDate string `json:"appointment_date"`
	DoctorID        int    `json:"doctor_id"`
}

// IssueToken exchanges a username and password for a credential pair. Any
// non-2xx response is returned as an *Error; callers surface it as a generic
// invalid-credentials message rather than echoing server detail.
func (c *Client) IssueToken(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	body, err := c.doRequest(ctx, http.MethodPost, pathToken, "", TokenRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	var pair domain.TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("api: parsing token response: %w", err)
	}
	return &pair, nil
}

// ListDoctors fetches the doctor directory.
func (c *Client) ListDoctors(ctx context.Context, access string) ([]domain.Doctor, error) {
	body, err := c.doRequest(ctx, http.MethodGet, pathDoctors, access, nil)
	if err != nil {
		return nil, err
	}
	var doctors []domain.Doctor
	if err := json.Unmarshal(body, &doctors); err != nil {
		return nil, fmt.Errorf("api: parsing doctors response: %w", err)
	}
	return doctors, nil
}

// ListAppointments fetches the caller's appointments.
func (c *Client) ListAppointments(ctx context.Context, access string) ([]domain.Appointment, error) {
	body, err := c.doRequest(ctx, http.MethodGet, pathAppointments, access, nil)
	if err != nil {
		return nil, err
	}
	var appointments []domain.Appointment
	if err := json.Unmarshal(body, &appointments); err != nil {
		return nil, fmt.Errorf("api: parsing appointments response: %w", err)
	}
	return appointments, nil
}

// CreateAppointment submits a booking and returns the server-confirmed
// record. Rejections come back as an *Error carrying any field messages.
func (c *Client) CreateAppointment(ctx context.Context, access string, request CreateAppointmentRequest) (*domain.Appointment, error) {
	body, err := c.doRequest(ctx, http.MethodPost, pathCreateAppointment, access, request)
	if err != nil {
		return nil, err
	}
	var appointment domain.Appointment
	if err := json.Unmarshal(body, &appointment); err != nil {
		return nil, fmt.Errorf("api: parsing appointment response: %w", err)
	}
	return &appointment, nil
}

// doRequest performs one HTTP exchange and returns the response body. On a
// non-2xx status it returns the decoded *Error. access may be empty for the
// unauthenticated token endpoint.
func (c *Client) doRequest(ctx context.Context, method, path, access string, requestBody any) ([]byte, error) {
	var reader io.Reader
	if requestBody != nil {
		payload, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: building request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-ID", uuid.NewString())
	if access != "" {
		request.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.metrics.RecordRequest(path, method, 0, time.Since(start))
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer response.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}

	c.metrics.RecordRequest(path, method, response.StatusCode, time.Since(start))
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, newError(response.StatusCode, body)
	}
	return body, nil
}

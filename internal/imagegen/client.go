// Package imagegen talks to the FusionBrain (Kandinsky) text-to-image job API:
// resolve a model, submit a job, poll it until the images are ready.
package imagegen

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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoModelAvailable = errors.New("imagegen: no model available")
	ErrJobFailed        = errors.New("imagegen: generation failed")
)

const (
	StatusDone = "DONE"
	StatusFail = "FAIL"
)

type SubmitOptions struct {
	Images      int
	Width       int
	Height      int
	MaxAttempts int
	Delay       time.Duration
}

func DefaultSubmitOptions() SubmitOptions {
	return SubmitOptions{
		Images:      1,
		Width:       1024,
		Height:      1024,
		MaxAttempts: 10,
		Delay:       10 * time.Second,
	}
}

type PollOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	// Step is added to the delay after every unsuccessful poll.
	Step time.Duration
}

func DefaultPollOptions() PollOptions {
	return PollOptions{
		MaxAttempts:  15,
		InitialDelay: 10 * time.Second,
		Step:         2 * time.Second,
	}
}

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Client struct {
	baseURL string
	apiKey  string
	secret  string
	http    *http.Client
	sleep   SleepFunc
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL, apiKey, secret string, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  secret,
		http:    &http.Client{Timeout: 60 * time.Second},
		sleep:   sleepCtx,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("X-Key", "Key "+c.apiKey)
	req.Header.Set("X-Secret", "Secret "+c.secret)
}

// ResolveModel returns the id of the first model in the provider catalog.
func (c *Client) ResolveModel(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"key/api/v1/models", nil)
	if err != nil {
		return 0, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("imagegen models request: %w", err)
	}
	defer resp.Body.Close()

	var models []struct {
		ID   *int   `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		c.log.Warn("[imagegen] malformed model catalog", zap.Int("status", resp.StatusCode), zap.Error(err))
		return 0, ErrNoModelAvailable
	}
	if len(models) == 0 || models[0].ID == nil {
		return 0, ErrNoModelAvailable
	}

	c.log.Debug("[imagegen] model resolved", zap.Int("model_id", *models[0].ID), zap.String("name", models[0].Name))
	return *models[0].ID, nil
}

type generateParams struct {
	Type           string `json:"type"`
	NumImages      int    `json:"numImages"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	GenerateParams struct {
		Query string `json:"query"`
	} `json:"generateParams"`
}

// Submit posts a generation job and returns its id. When the provider keeps
// answering without an id, the request is repeated up to MaxAttempts times with a
// fixed delay; an exhausted budget yields an empty id and no error.
func (c *Client) Submit(ctx context.Context, prompt string, modelID int, opts SubmitOptions) (string, error) {
	var params generateParams
	params.Type = "GENERATE"
	params.NumImages = opts.Images
	params.Width = opts.Width
	params.Height = opts.Height
	params.GenerateParams.Query = prompt

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", err
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		id, err := c.submitOnce(ctx, modelID, paramsJSON)
		if err != nil {
			return "", err
		}
		if id != "" {
			c.log.Info("[imagegen] job submitted", zap.String("job_id", id), zap.Int("attempt", attempt))
			return id, nil
		}

		c.log.Warn("[imagegen] no job id returned", zap.Int("attempt", attempt), zap.Int("max_attempts", opts.MaxAttempts))
		if attempt == opts.MaxAttempts {
			break
		}
		if err := c.sleep(ctx, opts.Delay); err != nil {
			return "", err
		}
	}
	return "", nil
}

func (c *Client) submitOnce(ctx context.Context, modelID int, paramsJSON []byte) (string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("model_id", strconv.Itoa(modelID)); err != nil {
		return "", err
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="params"`)
	h.Set("Content-Type", "application/json")
	part, err := w.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(paramsJSON); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"key/api/v1/text2image/run", body)
	if err != nil {
		return "", err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagegen run request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("imagegen run read: %w", err)
	}

	var out struct {
		UUID   string `json:"uuid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 300 {
			// overloaded provider answers with non-JSON pages; counts as a miss
			return "", nil
		}
		return "", fmt.Errorf("imagegen run decode: %w", err)
	}
	if _, err := uuid.Parse(out.UUID); err != nil {
		return "", nil
	}
	return out.UUID, nil
}

// AwaitCompletion polls the job until it is DONE and returns the base64 images.
// The delay grows by opts.Step after every unsuccessful poll. An exhausted budget
// yields nil images and no error.
func (c *Client) AwaitCompletion(ctx context.Context, jobID string, opts PollOptions) ([]string, error) {
	delay := opts.InitialDelay

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		st, err := c.status(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch st.Status {
		case StatusDone:
			c.log.Info("[imagegen] job done", zap.String("job_id", jobID), zap.Int("attempt", attempt), zap.Bool("censored", st.Censored))
			return st.Images, nil
		case StatusFail:
			return nil, fmt.Errorf("%w: %s", ErrJobFailed, st.ErrorDescription)
		}

		c.log.Debug("[imagegen] job pending", zap.String("job_id", jobID), zap.String("status", st.Status), zap.Duration("next_delay", delay))
		if attempt == opts.MaxAttempts {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay += opts.Step
	}

	c.log.Warn("[imagegen] job timed out", zap.String("job_id", jobID), zap.Int("attempts", opts.MaxAttempts))
	return nil, nil
}

type jobStatus struct {
	UUID             string   `json:"uuid"`
	Status           string   `json:"status"`
	Images           []string `json:"images"`
	ErrorDescription string   `json:"errorDescription"`
	Censored         bool     `json:"censored"`
}

func (c *Client) status(ctx context.Context, jobID string) (*jobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"key/api/v1/text2image/status/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen status request: %w", err)
	}
	defer resp.Body.Close()

	var st jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("imagegen status decode: %w", err)
	}
	return &st, nil
}

// Package upload talks to the image hosting API that stores movie posters.
package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"movie-catalog/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Uploader stores an image and returns where it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, file File) (*Result, error)
}

type Result struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// UploadError is every failure the image host path can produce.
type UploadError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upload failed (status %d): %s", e.StatusCode, e.Message)
	}
	return "upload failed: " + e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }

// Client uploads to a Cloudinary compatible endpoint:
// POST {base}/{cloud}/image/upload.
type Client struct {
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	preset     string
	folder     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
	now        func() time.Time
}

func NewClient(cfg utils.UploadConfig, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		preset:     cfg.Preset,
		folder:     cfg.Folder,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		log:        log.With(zap.String("client", "upload")),
		now:        time.Now,
	}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
}

func (c *Client) Upload(ctx context.Context, file File) (*Result, error) {
	if file.Open == nil {
		return nil, &UploadError{Message: "file has no content"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UploadError{Message: "upload throttled", Err: err}
	}

	body, contentType, err := c.buildBody(file)
	if err != nil {
		return nil, &UploadError{Message: "prepare upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), body)
	if err != nil {
		return nil, &UploadError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Image host unreachable", zap.Error(err), zap.String("file", file.Name))
		return nil, &UploadError{Message: "image host unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UploadError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	var payload struct {
		Result
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		c.log.Warn("Image host rejected upload",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
			zap.String("file", file.Name),
		)
		return nil, &UploadError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return nil, &UploadError{StatusCode: resp.StatusCode, Message: "invalid response body", Err: decodeErr}
	}
	if strings.TrimSpace(payload.SecureURL) == "" {
		return nil, &UploadError{StatusCode: resp.StatusCode, Message: "response has no secure_url"}
	}

	c.log.Info("Image uploaded",
		zap.String("file", file.Name),
		zap.String("public_id", payload.PublicID),
		zap.Duration("duration", c.now().Sub(start)),
	)

	result := payload.Result
	return &result, nil
}

func (c *Client) buildBody(file File) (io.Reader, string, error) {
	params := map[string]string{}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	if c.preset != "" {
		params["upload_preset"] = c.preset
	}

	// Signed upload when credentials are present, unsigned preset otherwise.
	if c.apiSecret != "" {
		params["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)
		params["signature"] = Sign(params, c.apiSecret)
		params["api_key"] = c.apiKey
	} else if c.preset == "" {
		return nil, "", errors.New("either api secret or upload preset is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(params) {
		if err := mw.WriteField(key, params[key]); err != nil {
			return nil, "", err
		}
	}

	name := file.Name
	if name == "" {
		name = "poster"
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("copy file: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}

// Sign computes the request signature: SHA-1 over "k=v&k=v" of the
// signable params in key order, followed by the secret.
func Sign(params map[string]string, secret string) string {
	var pairs []string
	for _, key := range sortedKeys(params) {
		switch key {
		case "file", "api_key", "signature", "resource_type", "cloud_name":
			continue
		}
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

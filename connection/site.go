// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"

	"github.com/akochman/ArcREST/logger"
	"github.com/akochman/ArcREST/models"
)

// Config configures a SiteConnection.
type Config struct {
	// BaseURL is the site root. Token requests post to
	// {BaseURL}/generateToken; relative request paths resolve against it.
	BaseURL string

	// Username and Password enable automatic token acquisition. When both
	// are empty the connection runs anonymously or with the static Token.
	Username string
	Password string

	// Token is a pre-acquired token attached to every request. When it
	// parses as a JWT its expiry is read from the exp claim; otherwise
	// TokenExpiration bounds its life, and zero means no expiry known.
	Token           string
	TokenExpiration time.Time

	// Referer is sent with token requests. When empty the token is bound
	// to the requesting IP instead.
	Referer string

	RequestTimeout time.Duration
	RetryCount     int
	RetryWaitTime  time.Duration

	// Logger defaults to the Nop logger.
	Logger *logger.Logger

	// FS is the filesystem downloads are written to and attachment files
	// are read from. Defaults to the OS filesystem.
	FS afero.Fs
}

// SiteConnection is the resty implementation of [Connection].
type SiteConnection struct {
	client  *resty.Client
	baseURL string

	username string
	password string
	referer  string

	fs  afero.Fs
	log *logger.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

var _ Connection = (*SiteConnection)(nil)

// New constructs a SiteConnection for the site at cfg.BaseURL.
// The base URL is normalised (scheme defaulted to http, trailing slash
// stripped); an address without a host is rejected.
func New(cfg Config) (*SiteConnection, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site address: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)
	if cfg.RetryCount > 0 {
		cli.SetRetryCount(cfg.RetryCount)
		if cfg.RetryWaitTime > 0 {
			cli.SetRetryWaitTime(cfg.RetryWaitTime)
		}
	}

	c := &SiteConnection{
		client:   cli,
		baseURL:  baseURL,
		username: cfg.Username,
		password: cfg.Password,
		referer:  cfg.Referer,
		fs:       cfg.FS,
		log:      cfg.Logger,
	}

	if cfg.Token != "" {
		c.token = strings.TrimSpace(cfg.Token)
		c.tokenExp = cfg.TokenExpiration
		if c.tokenExp.IsZero() {
			if exp, ok := jwtExpiry(c.token); ok {
				c.tokenExp = exp
			}
		}
	}

	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// URL implements [Connection].
func (c *SiteConnection) URL() string {
	return c.baseURL
}

// Get implements [Connection].
func (c *SiteConnection) Get(ctx context.Context, pathOrURL string, params models.Params) (models.Record, error) {
	qp, err := c.prepare(ctx, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(qp).
		Get(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pathOrURL, err)
	}
	c.logRequest("GET", resp, start)

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return decodeRecord(resp.Body())
}

// Post implements [Connection].
func (c *SiteConnection) Post(ctx context.Context, pathOrURL string, postdata models.Params, files ...models.File) (models.Record, error) {
	qp, err := c.prepare(ctx, postdata)
	if err != nil {
		return nil, err
	}

	req := c.client.R().
		SetContext(ctx).
		SetFormData(qp)

	for _, f := range files {
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		file, err := c.fs.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("open attachment %s: %w", f.Path, err)
		}
		defer file.Close()
		req.SetFileReader(f.Param, name, file)
	}

	start := time.Now()
	resp, err := req.Post(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", pathOrURL, err)
	}
	c.logRequest("POST", resp, start)

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return decodeRecord(resp.Body())
}

// Download implements [Connection].
func (c *SiteConnection) Download(ctx context.Context, rawURL string, params models.Params, outDir string) (string, error) {
	qp, err := c.prepare(ctx, params)
	if err != nil {
		return "", err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetQueryParams(qp).
		Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(body, 4096))
		return "", mapStatus(resp.StatusCode(), string(detail))
	}

	name := downloadFilename(resp, rawURL)
	if err = c.fs.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir %s: %w", outDir, err)
	}

	outPath := filepath.Join(outDir, name)
	out, err := c.fs.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	written, err := io.Copy(out, body)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", outPath, err)
	}
	c.log.Debug().Str("url", rawURL).Str("path", outPath).Int64("bytes", written).Msg("download done")

	return outPath, nil
}

// prepare encodes params and attaches the current token.
func (c *SiteConnection) prepare(ctx context.Context, params models.Params) (map[string]string, error) {
	qp, err := encodeParams(params)
	if err != nil {
		return nil, err
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		qp["token"] = token
	}
	return qp, nil
}

// encodeParams renders params into wire form: strings pass through, bools and
// numbers use their decimal forms, Stringers stringify, and every composite
// value is compact JSON. Nil values are dropped entirely.
func encodeParams(params models.Params) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for key, v := range params {
		if v == nil {
			continue
		}
		s, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode parameter %s: %w", key, err)
		}
		out[key] = s
	}
	return out, nil
}

func encodeValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// decodeRecord parses a response body into a record. A few endpoints answer
// with a bare JSON array; those are normalized to a record holding the array
// under the "items" key so every response stays addressable the same way.
func decodeRecord(body []byte) (models.Record, error) {
	var rec models.Record
	if err := json.Unmarshal(body, &rec); err == nil {
		return rec, nil
	}
	var list []any
	if err := json.Unmarshal(body, &list); err == nil {
		return models.Record{"items": list}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrDecode, firstBytes(body, 200))
}

// firstBytes trims a body for inclusion in an error message.
func firstBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// downloadFilename picks the local file name: Content-Disposition first, then
// the URL path base.
func downloadFilename(resp *resty.Response, rawURL string) string {
	if cd := resp.Header().Get("Content-Disposition"); cd != "" {
		if _, p, err := mime.ParseMediaType(cd); err == nil {
			if name := filepath.Base(p["filename"]); name != "" && name != "." && name != string(filepath.Separator) {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "download"
}

func (c *SiteConnection) logRequest(method string, resp *resty.Response, start time.Time) {
	c.log.Debug().
		Str("method", method).
		Str("url", resp.Request.URL).
		Int("status", resp.StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request done")
}

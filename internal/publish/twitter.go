package publish

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/services"
)

const (
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	defaultTweetURL  = "https://api.twitter.com/2/tweets"
)

// Twitter publishes via the v2 tweet endpoint with v1.1 media upload,
// signing requests with OAuth 1.0a user context.
type Twitter struct {
	creds      config.TwitterCredentials
	httpClient *http.Client
	uploadURL  string
	tweetURL   string
	nonce      func() string
	now        func() time.Time
}

type TwitterOption func(*Twitter)

// WithTwitterHTTPClient overrides the transport, for tests.
func WithTwitterHTTPClient(hc *http.Client) TwitterOption {
	return func(t *Twitter) { t.httpClient = hc }
}

// WithTwitterEndpoints overrides the API endpoints, for tests.
func WithTwitterEndpoints(uploadURL, tweetURL string) TwitterOption {
	return func(t *Twitter) {
		t.uploadURL = uploadURL
		t.tweetURL = tweetURL
	}
}

// NewTwitter builds the Twitter publisher.
func NewTwitter(creds config.TwitterCredentials, timeout time.Duration, opts ...TwitterOption) *Twitter {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	t := &Twitter{
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		uploadURL:  defaultUploadURL,
		tweetURL:   defaultTweetURL,
		nonce:      func() string { return uuid.NewString() },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Twitter) Name() string { return "twitter" }

func (t *Twitter) Configured() bool { return t.creds.Configured() }

// Publish uploads the item's diagram (when present) and posts the
// caption as a tweet. Returns the created tweet id.
func (t *Twitter) Publish(ctx context.Context, item *content.Item, caption string) (*Result, error) {
	if !t.Configured() {
		return nil, services.Wrap(services.ErrNotConfigured, "twitter", "publish", "credentials missing", nil)
	}

	var mediaIDs []string
	if item.DiagramPath != "" {
		mediaID, err := t.uploadMedia(ctx, item.DiagramPath)
		if err != nil {
			return nil, err
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	tweetID, err := t.createTweet(ctx, caption, mediaIDs)
	if err != nil {
		return nil, err
	}
	return &Result{
		PostID: tweetID,
		URL:    "https://x.com/i/status/" + tweetID,
	}, nil
}

func (t *Twitter) uploadMedia(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "read media file", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", "diagram.png")
	if err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "build multipart body", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "write multipart body", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "finalize multipart body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL, &body)
	if err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", t.authHeader(http.MethodPost, t.uploadURL, nil))

	respBody, err := t.do(req, "upload")
	if err != nil {
		return "", err
	}

	var parsed struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "decode response", err)
	}
	if parsed.MediaIDString == "" {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "upload", "response missing media id", nil)
	}
	return parsed.MediaIDString, nil
}

func (t *Twitter) createTweet(ctx context.Context, text string, mediaIDs []string) (string, error) {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "tweet", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tweetURL, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "tweet", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", t.authHeader(http.MethodPost, t.tweetURL, nil))

	respBody, err := t.do(req, "tweet")
	if err != nil {
		return "", err
	}

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "tweet", "decode response", err)
	}
	if parsed.Data.ID == "" {
		return "", services.Wrap(services.ErrPublishFailure, "twitter", "tweet", "response missing tweet id", nil)
	}
	return parsed.Data.ID, nil
}

func (t *Twitter) do(req *http.Request, operation string) ([]byte, error) {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrPublishFailure, "twitter", operation, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrPublishFailure, "twitter", operation, "read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrPublishFailure, "twitter", operation,
			fmt.Sprintf("api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return body, nil
}

// authHeader builds an OAuth 1.0a user-context Authorization header.
// extraParams carries form or query parameters that participate in the
// signature base string; JSON and multipart bodies contribute nothing.
func (t *Twitter) authHeader(method, rawURL string, extraParams map[string]string) string {
	oauth := map[string]string{
		"oauth_consumer_key":     t.creds.APIKey,
		"oauth_nonce":            strings.ReplaceAll(t.nonce(), "-", ""),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(t.now().Unix(), 10),
		"oauth_token":            t.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	params := make(map[string]string, len(oauth)+len(extraParams))
	for k, v := range oauth {
		params[k] = v
	}
	for k, v := range extraParams {
		params[k] = v
	}

	base, query := splitQuery(rawURL)
	for k, v := range query {
		params[k] = v
	}

	oauth["oauth_signature"] = t.sign(method, base, params)

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(percentEncode(k))
		b.WriteString(`="`)
		b.WriteString(percentEncode(oauth[k]))
		b.WriteString(`"`)
	}
	return b.String()
}

func (t *Twitter) sign(method, baseURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var paramPairs []string
	for _, k := range keys {
		paramPairs = append(paramPairs, percentEncode(k)+"="+percentEncode(params[k]))
	}

	baseString := strings.Join([]string{
		strings.ToUpper(method),
		percentEncode(baseURL),
		percentEncode(strings.Join(paramPairs, "&")),
	}, "&")

	signingKey := percentEncode(t.creds.APISecret) + "&" + percentEncode(t.creds.AccessTokenSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func splitQuery(rawURL string) (string, map[string]string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, nil
	}
	query := make(map[string]string)
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), query
}

// percentEncode implements RFC 3986 encoding as OAuth 1.0a requires;
// url.QueryEscape differs on spaces and tildes.
func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

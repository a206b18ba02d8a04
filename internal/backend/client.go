package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is any other non-2xx answer from the backend. Message is meant to
// be shown to the reviewer as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

type Config struct {
	BaseURL string // e.g. https://api.example.com/api/v1

	// Either a client-credentials token endpoint or a static bearer token.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Token        string

	Timeout time.Duration
}

type Client struct {
	base     string
	http     *http.Client
	hasToken bool
}

func New(cfg Config) *Client {
	var h *http.Client
	hasToken := true
	switch {
	case cfg.TokenURL != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	case cfg.Token != "":
		h = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	default:
		h = &http.Client{}
		hasToken = false
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), http: h, hasToken: hasToken}
}

// HasToken reports whether requests carry credentials at all.
func (c *Client) HasToken() bool { return c.hasToken }

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends body (if any) as JSON and decodes the data field of the response into out.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) (string, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		// the oauth2 transport reports token endpoint rejections as RetrieveError
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusUnauthorized {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode/100 != 2 {
		if res.StatusCode == http.StatusUnauthorized {
			return "", ErrUnauthorized
		}
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		if msg == "" {
			msg = res.Status
		}
		return "", &APIError{Status: res.StatusCode, Message: msg}
	}

	if len(raw) == 0 {
		return "", nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return env.Message, nil
}

func esc(s string) string { return url.PathEscape(s) }

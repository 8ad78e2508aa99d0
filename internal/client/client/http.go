package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/posync/internal/models"
)

// DefaultTimeout bounds every request made by HTTPClient.
const DefaultTimeout = 30 * time.Second

// Collection paths on the backend.
const (
	pathProducts          = "/api/products"
	pathBarcodes          = "/api/product-barcodes"
	pathDescriptions      = "/api/product-descriptions"
	pathLocalProducts     = "/api/local-products"
	pathLocalBarcodes     = "/api/local-product-barcodes"
	pathLocalDescriptions = "/api/local-product-descriptions"
	pathLocalOrders       = "/api/local-orders"
	pathAuthenticate      = "/api/users/authenticate"
	pathForceSync         = "/api/offline/sync/force"
)

// LocalPath returns the local-store collection path for class.
func LocalPath(class models.Class) (string, error) {
	switch class {
	case models.ClassProducts:
		return pathLocalProducts, nil
	case models.ClassBarcodes:
		return pathLocalBarcodes, nil
	case models.ClassDescriptions:
		return pathLocalDescriptions, nil
	case models.ClassOrders:
		return pathLocalOrders, nil
	default:
		return "", fmt.Errorf("unknown class %q", class)
	}
}

// HTTPClient talks to the backend REST API. It is safe for concurrent use.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPClient builds a client for baseURL. A nil httpClient gets one with
// DefaultTimeout.
func NewHTTPClient(httpClient *http.Client, baseURL string) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// BaseURL returns the normalized backend URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return nil
	}

	var mb messageBody
	_ = json.NewDecoder(resp.Body).Decode(&mb)
	msg := strings.TrimSpace(mb.Message)
	if msg == "" {
		msg = strings.TrimSpace(mb.Error)
	}
	return newProtocolError(resp.StatusCode, msg)
}

// keyPath joins escaped key segments into "/a/b/c".
func keyPath(segments ...string) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// exists maps 2xx to true and 404 to false.
func (c *HTTPClient) exists(ctx context.Context, path string) (bool, error) {
	err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		return true, nil
	}
	var pe *ProtocolError
	if errors.As(err, &pe) && pe.Status == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient talks to a hosted record store over JSON/HTTP.
//
//	POST   {base}/tables/{table}/records/query       fetch
//	POST   {base}/tables/{table}/records/{id}/query  get by id
//	POST   {base}/tables/{table}/records             create
//	PUT    {base}/tables/{table}/records             update
//	DELETE {base}/tables/{table}/records             delete
type HTTPClient struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	HTTP      *http.Client
}

func NewHTTPClient(baseURL, projectID, publicKey string) *HTTPClient {
	return &HTTPClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ProjectID: projectID,
		PublicKey: publicKey,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) tableURL(table string, parts ...string) string {
	u := c.BaseURL + "/tables/" + url.PathEscape(table) + "/records"
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *HTTPClient) FetchRecords(ctx context.Context, table string, p FetchParams) (*FetchResponse, error) {
	var out FetchResponse
	if err := c.do(ctx, http.MethodPost, c.tableURL(table, "query"), p, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Record{}
	}
	return &out, nil
}

func (c *HTTPClient) GetRecordByID(ctx context.Context, table string, id int, p FetchParams) (*RecordResponse, error) {
	var out RecordResponse
	if err := c.do(ctx, http.MethodPost, c.tableURL(table, strconv.Itoa(id), "query"), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, table string, p WriteParams) (*WriteResponse, error) {
	var out WriteResponse
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, table string, p WriteParams) (*WriteResponse, error) {
	var out WriteResponse
	if err := c.do(ctx, http.MethodPut, c.tableURL(table), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, table string, p DeleteParams) (*WriteResponse, error) {
	var out WriteResponse
	if err := c.do(ctx, http.MethodDelete, c.tableURL(table), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON and decodes the reply into out. Non-2xx replies
// that still carry a JSON body are decoded so the store's message reaches
// the caller as an unsuccessful response.
func (c *HTTPClient) do(ctx context.Context, method, u string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.ProjectID != "" {
		req.Header.Set("X-Project-Id", c.ProjectID)
	}
	if c.PublicKey != "" {
		req.Header.Set("X-Public-Key", c.PublicKey)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if res.StatusCode >= 300 {
			return fmt.Errorf("%s %s: status %d", method, u, res.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)

package registry

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HTTPClient is the one concrete Client this module ships: URL-joining via
// path.Join, the "Accept: application/vnd.schemaregistry.v1+json" header,
// and a retrying http.Client, with retries driven by
// github.com/cenkalti/backoff/v4 rather than a hand-rolled loop.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

// NewHTTPClient constructs an HTTPClient against baseURL (e.g.
// "http://localhost:8081"). tlsConf may be nil.
func NewHTTPClient(baseURL string, tlsConf *tls.Config) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("registry: parsing base url: %w", err)
	}

	client := http.DefaultClient
	if tlsConf != nil {
		client = &http.Client{}
		if t, ok := http.DefaultTransport.(*http.Transport); ok {
			cloned := t.Clone()
			cloned.TLSClientConfig = tlsConf
			client.Transport = cloned
		} else {
			client.Transport = &http.Transport{TLSClientConfig: tlsConf}
		}
	}

	return &HTTPClient{
		baseURL:    u.String(),
		httpClient: client,
		maxRetries: 3,
	}, nil
}

func (c *HTTPClient) url(elem ...string) string {
	return c.baseURL + "/" + path.Join(elem...)
}

type schemaPayload struct {
	Schema     string `json:"schema"`
	SchemaType string `json:"schemaType"`
	ID         int32  `json:"id"`
	Subject    string `json:"subject"`
	Version    int    `json:"version"`
}

func (p schemaPayload) kind() SchemaKind {
	if p.SchemaType == "" {
		return KindAvro
	}
	return SchemaKind(p.SchemaType)
}

func (c *HTTPClient) doJSON(method, url string, body []byte, out any) error {
	operation := func() error {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reqBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")
		if body != nil {
			req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		resBytes, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}

		if res.StatusCode == http.StatusNotFound {
			return backoff.Permanent(fmt.Errorf("registry: %s %s: not found", method, url))
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return fmt.Errorf("registry: %s %s: status %d: %s", method, url, res.StatusCode, string(resBytes))
		}
		if out != nil {
			if err := json.Unmarshal(resBytes, out); err != nil {
				return backoff.Permanent(fmt.Errorf("registry: decoding response from %s: %w", url, err))
			}
		}
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.MaxInterval = retryDelayCap
	b := backoff.WithMaxRetries(eb, c.maxRetries)
	return backoff.Retry(operation, b)
}

// GetByID implements Client.
func (c *HTTPClient) GetByID(id int32) (SchemaInfo, error) {
	var p schemaPayload
	if err := c.doJSON(http.MethodGet, c.url("schemas", "ids", fmt.Sprintf("%d", id)), nil, &p); err != nil {
		return SchemaInfo{}, &RegistryError{Message: fmt.Sprintf("fetching schema id %d", id), Cause: err}
	}
	return SchemaInfo{Kind: p.kind(), Schema: p.Schema, ID: id}, nil
}

// GetLatest implements Client.
func (c *HTTPClient) GetLatest(subject string) (VersionInfo, error) {
	var p schemaPayload
	if err := c.doJSON(http.MethodGet, c.url("subjects", subject, "versions", "latest"), nil, &p); err != nil {
		return VersionInfo{}, &RegistryError{Message: fmt.Sprintf("fetching latest schema for subject %s", subject), Cause: err}
	}
	return VersionInfo{
		SchemaInfo: SchemaInfo{Kind: p.kind(), Schema: p.Schema, ID: p.ID},
		Version:    p.Version,
	}, nil
}

// GetVersion implements Client.
func (c *HTTPClient) GetVersion(subject string, version int) (SchemaInfo, error) {
	var p schemaPayload
	if err := c.doJSON(http.MethodGet, c.url("subjects", subject, "versions", fmt.Sprintf("%d", version)), nil, &p); err != nil {
		return SchemaInfo{}, &RegistryError{Message: fmt.Sprintf("fetching subject %s version %d", subject, version), Cause: err}
	}
	return SchemaInfo{Kind: p.kind(), Schema: p.Schema, ID: p.ID}, nil
}

// IDOf implements Client.
func (c *HTTPClient) IDOf(subject string, schemaJSON string) (int32, error) {
	reqBody, err := json.Marshal(schemaPayload{Schema: schemaJSON})
	if err != nil {
		return 0, err
	}
	var p schemaPayload
	if err := c.doJSON(http.MethodPost, c.url("subjects", subject), reqBody, &p); err != nil {
		return 0, &RegistryError{Message: fmt.Sprintf("resolving id for subject %s", subject), Cause: err}
	}
	return p.ID, nil
}

// Register implements Client.
func (c *HTTPClient) Register(subject string, schemaJSON string) (int32, error) {
	reqBody, err := json.Marshal(schemaPayload{Schema: schemaJSON})
	if err != nil {
		return 0, err
	}
	var p schemaPayload
	if err := c.doJSON(http.MethodPost, c.url("subjects", subject, "versions"), reqBody, &p); err != nil {
		return 0, &RegistryError{Message: fmt.Sprintf("registering schema for subject %s", subject), Cause: err}
	}
	return p.ID, nil
}

var _ Client = (*HTTPClient)(nil)

// retryDelayCap bounds the backoff's max interval below the library's
// one-minute default.
const retryDelayCap = 30 * time.Second

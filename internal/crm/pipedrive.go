package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sales-request-api/internal/entity"
	"sales-request-api/internal/lifecycle"
)

const defaultBaseURL = "https://api.pipedrive.com/v1"

// PipedriveClient talks to the Pipedrive REST API (or a proxy in front of it
// that serves the same success/data/error envelope). It implements
// lifecycle.DealCreator and the dataset fetches behind the catalog cache.
type PipedriveClient struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

func NewPipedriveClient(apiToken, baseURL string, timeout time.Duration) *PipedriveClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &PipedriveClient{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type dealCreateRequest struct {
	Title    string  `json:"title"`
	PersonId int     `json:"person_id"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
}

type dealProductRequest struct {
	ProductId int     `json:"product_id"`
	ItemPrice float64 `json:"item_price"`
	Quantity  int     `json:"quantity"`
}

type dealCreateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID int `json:"id"`
	} `json:"data"`
	Error string `json:"error"`
}

// CreateDeal creates a deal titled after the contact's mine and attaches the
// line items as deal products. The returned id is the CRM's deal identifier.
func (c *PipedriveClient) CreateDeal(ctx context.Context, contact *entity.Contact, items []entity.LineItem) (int, error) {
	if contact == nil {
		return 0, &lifecycle.SubmitError{
			Kind:      lifecycle.KindValidation,
			Retryable: false,
			Message:   "deal creation requires a contact",
		}
	}

	var total float64
	for i := range items {
		total += items[i].TotalPrice
	}

	payload := dealCreateRequest{
		Title:    fmt.Sprintf("%s - %s - %s", contact.MineGroup, contact.MineName, contact.Name),
		PersonId: contact.PersonId,
		Value:    total,
	}

	var out dealCreateResponse
	if err := c.post(ctx, "/deals", payload, &out); err != nil {
		return 0, err
	}
	if !out.Success || out.Data.ID == 0 {
		return 0, &lifecycle.SubmitError{
			Kind:      lifecycle.KindRemoteRejection,
			Retryable: false,
			Message:   fmt.Sprintf("deal creation rejected: %s", out.Error),
		}
	}
	dealId := out.Data.ID

	for i := range items {
		product := dealProductRequest{
			ProductId: items[i].ProductId,
			ItemPrice: items[i].UnitPrice,
			Quantity:  items[i].Quantity,
		}
		var attach dealCreateResponse
		err := c.post(ctx, fmt.Sprintf("/deals/%d/products", dealId), product, &attach)
		if err != nil || !attach.Success {
			// The deal already exists at this point, so the id still has to
			// reach the caller. Missing products show up in the CRM UI and
			// get fixed there.
			logrus.WithFields(logrus.Fields{
				"dealId":    dealId,
				"productId": items[i].ProductId,
				"error":     err,
			}).Warn("Failed to attach product to deal")
		}
	}

	return dealId, nil
}

func (c *PipedriveClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &lifecycle.SubmitError{Kind: lifecycle.KindValidation, Retryable: false, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(raw))
	if err != nil {
		return &lifecycle.SubmitError{Kind: lifecycle.KindValidation, Retryable: false, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classifyStatus(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &lifecycle.SubmitError{
			Kind:      lifecycle.KindRemoteRejection,
			Retryable: false,
			Message:   "malformed CRM response",
			Err:       err,
		}
	}

	return nil
}

func (c *PipedriveClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classifyStatus(resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *PipedriveClient) endpoint(path string) string {
	u := c.baseURL + path
	if c.apiToken != "" {
		u += "?api_token=" + url.QueryEscape(c.apiToken)
	}

	return u
}

// classifyTransportError maps an http.Client error onto the submit error
// taxonomy: timeouts and cancelled deadlines are retryable timeouts, the rest
// of the transport failures are retryable network errors.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &lifecycle.SubmitError{Kind: lifecycle.KindTimeout, Retryable: true, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &lifecycle.SubmitError{Kind: lifecycle.KindTimeout, Retryable: true, Err: err}
	}

	return &lifecycle.SubmitError{Kind: lifecycle.KindNetwork, Retryable: true, Err: err}
}

// classifyStatus maps non-2xx responses: 5xx is treated as a transient
// upstream problem, anything else is an explicit rejection.
func classifyStatus(status int, body string) error {
	if status >= http.StatusInternalServerError {
		return &lifecycle.SubmitError{
			Kind:      lifecycle.KindNetwork,
			Retryable: true,
			Message:   fmt.Sprintf("CRM returned status %d", status),
		}
	}

	return &lifecycle.SubmitError{
		Kind:      lifecycle.KindRemoteRejection,
		Retryable: false,
		Message:   fmt.Sprintf("CRM rejected the call: status=%d body=%s", status, strings.TrimSpace(body)),
	}
}

package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ozon-order-bot/internal/core/config"
	"ozon-order-bot/internal/core/httpclient"
	"ozon-order-bot/internal/core/logger"
	"ozon-order-bot/internal/features/orders/domain"

	"go.uber.org/zap"
)

// listingWindow is how far back the posting list filter reaches.
const listingWindow = 30 * 24 * time.Hour

// OzonAdapter implements the OrderProvider interface using the Ozon Seller API.
type OzonAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the Ozon Seller API connection details.
	config config.OzonConfig
	// now is injectable for deterministic listing windows in tests.
	now func() time.Time
}

// NewOzonAdapter creates a new instance of OzonAdapter.
func NewOzonAdapter(cfg config.OzonConfig) *OzonAdapter {
	return &OzonAdapter{
		client: httpclient.NewClient(30 * time.Second),
		config: cfg,
		now:    time.Now,
	}
}

// ListPostings fetches postings in the given FBS status from the Seller API.
// POST /v3/posting/fbs/list
func (a *OzonAdapter) ListPostings(ctx context.Context, status domain.Status, limit int) ([]domain.Posting, error) {
	to := a.now()
	since := to.Add(-listingWindow)

	payload := ozListRequest{
		Dir: "ASC",
		Filter: ozListFilter{
			Since:  since.UTC().Format(time.RFC3339),
			To:     to.UTC().Format(time.RFC3339),
			Status: string(status),
		},
		Limit:  limit,
		Offset: 0,
		With: ozWith{
			AnalyticsData: true,
			Barcodes:      true,
			FinancialData: true,
			Translit:      true,
		},
	}

	var response ozListResponse
	if err := a.postJSON(ctx, "/v3/posting/fbs/list", payload, &response); err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}

	postings := make([]domain.Posting, 0, len(response.Result.Postings))
	for _, p := range response.Result.Postings {
		postings = append(postings, mapToDomain(p))
	}
	return postings, nil
}

// GetPosting fetches a single posting with full details.
// POST /v3/posting/fbs/get
func (a *OzonAdapter) GetPosting(ctx context.Context, postingNumber string) (*domain.Posting, error) {
	payload := ozGetRequest{
		PostingNumber: postingNumber,
		With: ozWith{
			AnalyticsData: true,
			Barcodes:      true,
			FinancialData: true,
			Translit:      true,
		},
	}

	var response ozGetResponse
	if err := a.postJSON(ctx, "/v3/posting/fbs/get", payload, &response); err != nil {
		return nil, fmt.Errorf("failed to get posting %s: %w", postingNumber, err)
	}

	posting := mapToDomain(response.Result)
	return &posting, nil
}

// ShipPosting assembles a posting into the given packages.
// POST /v4/posting/fbs/ship
func (a *OzonAdapter) ShipPosting(ctx context.Context, postingNumber string, packages []domain.Package) error {
	payload := ozShipRequest{
		PostingNumber: postingNumber,
		Packages:      packages,
		With:          ozShipWith{AdditionalData: true},
	}

	var response ozShipResponse
	if err := a.postJSON(ctx, "/v4/posting/fbs/ship", payload, &response); err != nil {
		return fmt.Errorf("failed to ship posting %s: %w", postingNumber, err)
	}

	if len(response.Result) == 0 {
		return fmt.Errorf("ship posting %s: empty result", postingNumber)
	}
	return nil
}

// PackageLabel fetches the shipping label PDF for the given postings.
// POST /v2/posting/fbs/package-label
// The endpoint answers with the PDF body directly; JSON means an error.
func (a *OzonAdapter) PackageLabel(ctx context.Context, postingNumbers []string) ([]byte, error) {
	body, err := json.Marshal(ozLabelRequest{PostingNumber: postingNumbers})
	if err != nil {
		return nil, fmt.Errorf("failed to encode label request: %w", err)
	}

	req, err := a.newRequest(ctx, "/v2/posting/fbs/package-label", body)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute label request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/pdf"):
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read label body: %w", err)
		}
		return data, nil
	case strings.Contains(contentType, "application/json"):
		return nil, apiError(resp)
	default:
		return nil, fmt.Errorf("unexpected label content-type: %s", contentType)
	}
}

// HealthCheck verifies that the Seller API is reachable and credentials are valid.
func (a *OzonAdapter) HealthCheck(ctx context.Context) error {
	if _, err := a.ListPostings(ctx, domain.StatusAwaitingPackaging, 1); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// newRequest builds an authenticated POST request to the Seller API.
func (a *OzonAdapter) newRequest(ctx context.Context, path string, body []byte) (*http.Request, error) {
	url := a.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Client-Id", a.config.ClientID)
	req.Header.Set("Api-Key", a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// postJSON executes a JSON request/response round trip against the Seller API.
func (a *OzonAdapter) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := a.newRequest(ctx, path, body)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError extracts the Seller API error message from a non-OK response.
func apiError(resp *http.Response) error {
	var apiErr ozErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("ozon API returned status %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("ozon API returned status: %d", resp.StatusCode)
}

// mapToDomain converts a raw Seller API posting into a domain Posting entity.
func mapToDomain(p ozPosting) domain.Posting {
	products := make([]domain.Product, 0, len(p.Products))
	for _, product := range p.Products {
		products = append(products, domain.Product{
			SKU:          product.SKU,
			OfferID:      product.OfferID,
			Name:         product.Name,
			Quantity:     product.Quantity,
			Price:        product.Price,
			CurrencyCode: product.CurrencyCode,
		})
	}

	return domain.Posting{
		PostingNumber: p.PostingNumber,
		OrderID:       p.OrderID,
		OrderNumber:   p.OrderNumber,
		Status:        domain.Status(p.Status),
		ShipmentDate:  time.Time(p.ShipmentDate),
		InProcessAt:   time.Time(p.InProcessAt),
		Products:      products,
	}
}

// internal structs for mapping

// ozListRequest is the request body for the posting list endpoint.
type ozListRequest struct {
	Dir    string       `json:"dir"`
	Filter ozListFilter `json:"filter"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	With   ozWith       `json:"with"`
}

// ozListFilter narrows the posting list by time window and status.
type ozListFilter struct {
	Since  string `json:"since"`
	To     string `json:"to"`
	Status string `json:"status"`
}

// ozWith selects optional sections of the posting payload.
type ozWith struct {
	AnalyticsData bool `json:"analytics_data"`
	Barcodes      bool `json:"barcodes"`
	FinancialData bool `json:"financial_data"`
	Translit      bool `json:"translit"`
}

// ozListResponse is the response envelope of the posting list endpoint.
type ozListResponse struct {
	Result struct {
		Postings []ozPosting `json:"postings"`
		HasNext  bool        `json:"has_next"`
	} `json:"result"`
}

// ozGetRequest is the request body for the posting detail endpoint.
type ozGetRequest struct {
	PostingNumber string `json:"posting_number"`
	With          ozWith `json:"with"`
}

// ozGetResponse is the response envelope of the posting detail endpoint.
type ozGetResponse struct {
	Result ozPosting `json:"result"`
}

// ozShipRequest is the request body for the ship endpoint.
type ozShipRequest struct {
	PostingNumber string           `json:"posting_number"`
	Packages      []domain.Package `json:"packages"`
	With          ozShipWith       `json:"with"`
}

// ozShipWith selects optional sections of the ship response.
type ozShipWith struct {
	AdditionalData bool `json:"additional_data"`
}

// ozShipResponse lists the posting numbers produced by assembly.
type ozShipResponse struct {
	Result []string `json:"result"`
}

// ozLabelRequest is the request body for the package label endpoint.
type ozLabelRequest struct {
	PostingNumber []string `json:"posting_number"`
}

// ozErrorResponse is the Seller API error envelope.
type ozErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ozPosting represents the JSON structure of a posting from the Seller API.
type ozPosting struct {
	// PostingNumber is the unique posting identifier.
	PostingNumber string `json:"posting_number"`
	// OrderID is the numeric order identifier.
	OrderID int64 `json:"order_id"`
	// OrderNumber is the human-facing order number.
	OrderNumber string `json:"order_number"`
	// Status is the FBS status string.
	Status string `json:"status"`
	// ShipmentDate is the carrier handover deadline.
	ShipmentDate ozTime `json:"shipment_date"`
	// InProcessAt is when processing started.
	InProcessAt ozTime `json:"in_process_at"`
	// Products are the items in the posting.
	Products []ozProduct `json:"products"`
}

// ozProduct represents a product line in a posting.
type ozProduct struct {
	// Price is the unit price as a decimal string.
	Price string `json:"price"`
	// CurrencyCode is the price currency.
	CurrencyCode string `json:"currency_code"`
	// OfferID is the seller's article.
	OfferID string `json:"offer_id"`
	// Name is the product name.
	Name string `json:"name"`
	// SKU is the Ozon product identifier.
	SKU int64 `json:"sku"`
	// Quantity is the unit count.
	Quantity int `json:"quantity"`
}

// ozTime is a custom helper struct to handle the Seller API date formats.
type ozTime time.Time

// UnmarshalJSON parses the date formats used by the Seller API.
func (t *ozTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*t = ozTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Some endpoints omit the zone suffix
		parsed, err = time.Parse("2006-01-02T15:04:05", s)
	}
	if err != nil {
		logger.Get().Warn("Failed to parse date", zap.String("date", s), zap.Error(err))
		return nil // Return zero time
	}
	*t = ozTime(parsed)
	return nil
}

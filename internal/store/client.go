package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"migrator/internal/logger"
)

// Client talks to one store instance of the remote catalog platform. It is
// version-aware: flat stores are read/written through the v1 endpoints,
// relational stores through v3.
type Client struct {
	storeID     string
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(storeID, baseURL, accessToken string, logger *logger.Logger) *Client {
	return &Client{
		storeID:     storeID,
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) StoreID() string {
	return c.storeID
}

func (c *Client) do(method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// GetStoreInfo fetches the site properties document. This is the first call of
// every run: it detects the catalog schema and doubles as the credential
// check.
func (c *Client) GetStoreInfo() (*StoreInfo, error) {
	var out struct {
		Properties StoreInfo `json:"properties"`
	}
	if err := c.do(http.MethodGet, "/site/properties", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Properties.StoreID == "" {
		out.Properties.StoreID = c.storeID
	}
	return &out.Properties, nil
}

func (c *Client) ListCollections(limit, offset int) ([]Collection, error) {
	var out struct {
		Items []Collection `json:"items"`
	}
	if err := c.do(http.MethodGet, "/collections", pageQuery(limit, offset), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CreateCollection(req CollectionCreate) (*Collection, error) {
	var out struct {
		Collection Collection `json:"collection"`
	}
	if err := c.do(http.MethodPost, "/collections", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Collection, nil
}

// LinkProductToCollection adds a product to a collection. Subject to
// aggressive rate limiting on the platform side; callers wrap it in a retry
// policy.
func (c *Client) LinkProductToCollection(collectionID, productID string) error {
	body := map[string]string{"productId": productID}
	return c.do(http.MethodPost, "/collections/"+collectionID+"/products", nil, body, nil)
}

func (c *Client) ListProductsFlat(limit, offset int) ([]FlatProduct, error) {
	var out struct {
		Items []FlatProduct `json:"items"`
	}
	if err := c.do(http.MethodGet, "/v1/products", pageQuery(limit, offset), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) ListProductsRelational(limit, offset int) ([]RelationalProduct, error) {
	var out struct {
		Items []RelationalProduct `json:"items"`
	}
	if err := c.do(http.MethodGet, "/v3/products", pageQuery(limit, offset), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ListVariants fetches the variant detail of one flat-schema product.
// Relational products embed variants and never call this.
func (c *Client) ListVariants(productID string) ([]FlatVariant, error) {
	var out struct {
		Items []FlatVariant `json:"items"`
	}
	if err := c.do(http.MethodGet, "/v1/products/"+productID+"/variants", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) ListInventory(limit, offset int) ([]InventoryItem, error) {
	var out struct {
		Items []InventoryItem `json:"items"`
	}
	if err := c.do(http.MethodGet, "/v1/inventory", pageQuery(limit, offset), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateProduct posts a create payload built by a schema adapter. The payload
// type decides the endpoint version.
func (c *Client) CreateProduct(payload interface{}) (*CreatedProduct, error) {
	path := "/v1/products"
	if _, ok := payload.(*RelationalProductCreate); ok {
		path = "/v3/products"
	}

	var out struct {
		Product CreatedProduct `json:"product"`
	}
	if err := c.do(http.MethodPost, path, nil, payload, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) PatchProductInventory(productID string, patch FlatInventoryPatch) error {
	return c.do(http.MethodPatch, "/v1/products/"+productID+"/inventory", nil, patch, nil)
}

func (c *Client) PatchProductVariants(productID string, patch FlatVariantsPatch) error {
	return c.do(http.MethodPatch, "/v1/products/"+productID+"/variants", nil, patch, nil)
}

func (c *Client) AddProductMedia(productID string, media []MediaItem) error {
	body := map[string][]MediaItem{"media": media}
	return c.do(http.MethodPost, "/products/"+productID+"/media", nil, body, nil)
}

func (c *Client) ListTaxonomy(kind TaxonomyKind, limit, offset int) ([]TaxonomyEntity, error) {
	var out struct {
		Items []TaxonomyEntity `json:"items"`
	}
	if err := c.do(http.MethodGet, "/"+string(kind), pageQuery(limit, offset), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CreateTaxonomy(kind TaxonomyKind, req TaxonomyCreate) (*TaxonomyEntity, error) {
	var out struct {
		Item TaxonomyEntity `json:"item"`
	}
	if err := c.do(http.MethodPost, "/"+string(kind), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/macrolog/backend/internal/model"
)

// MaxSearchResults caps both cache lookups and provider results.
const MaxSearchResults = 20

const (
	openFoodFactsProvider = "openfoodfacts"
	offIDPrefix           = "off-"
	maxProviderBody       = 8 << 20
)

// NutritionProvider looks up foods in an external nutrition database.
// Returned records carry Source "external" and per-100 g values.
type NutritionProvider interface {
	Search(ctx context.Context, query string, limit int) ([]model.Food, error)
}

// OpenFoodFactsClient queries the OpenFoodFacts search API.
type OpenFoodFactsClient struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

// NewOpenFoodFactsClient creates a client bounded by timeout on both the
// transport and the request context.
func NewOpenFoodFactsClient(baseURL, userAgent string, timeout time.Duration) *OpenFoodFactsClient {
	return &OpenFoodFactsClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
	}
}

type offResponse struct {
	Products []offProduct `json:"products"`
}

type offProduct struct {
	Code        flexString    `json:"code"`
	ProductName flexString    `json:"product_name"`
	Brands      flexString    `json:"brands"`
	Nutriments  *offNutriment `json:"nutriments"`
}

type offNutriment struct {
	EnergyKcal100g flexFloat `json:"energy-kcal_100g"`
	Proteins100g   flexFloat `json:"proteins_100g"`
	Carbs100g      flexFloat `json:"carbohydrates_100g"`
	Fat100g        flexFloat `json:"fat_100g"`
}

// flexFloat accepts a JSON number or a numeric string. Anything else is zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*f = flexFloat(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
	}
	return nil
}

// flexString accepts a JSON string or number. Anything else is empty.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	*s = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err == nil {
			*s = flexString(v)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = flexString(data)
	}
	return nil
}

// Search implements NutritionProvider.
func (c *OpenFoodFactsClient) Search(ctx context.Context, query string, limit int) ([]model.Food, error) {
	if limit <= 0 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}

	endpoint, err := c.searchURL(query, limit)
	if err != nil {
		return nil, &ExternalLookupError{Provider: openFoodFactsProvider, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ExternalLookupError{Provider: openFoodFactsProvider, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ExternalLookupError{Provider: openFoodFactsProvider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ExternalLookupError{
			Provider: openFoodFactsProvider,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, &ExternalLookupError{Provider: openFoodFactsProvider, Err: err}
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ExternalLookupError{
			Provider: openFoodFactsProvider,
			Err:      fmt.Errorf("malformed payload: %w", err),
		}
	}

	return toFoods(parsed.Products, limit), nil
}

func (c *OpenFoodFactsClient) searchURL(query string, limit int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("search_terms", query)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", strconv.Itoa(limit))
	q.Set("fields", "code,product_name,brands,nutriments")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// toFoods drops products without a name or code, or with a code too long to
// cache, keeps the first of any repeated code and truncates to limit. Names
// and brands are cut to the cache column width.
func toFoods(products []offProduct, limit int) []model.Food {
	foods := make([]model.Food, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		name := strings.TrimSpace(string(p.ProductName))
		code := strings.TrimSpace(string(p.Code))
		if name == "" || code == "" || len(offIDPrefix+code) > model.MaxSourceFoodIDLength {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		var n offNutriment
		if p.Nutriments != nil {
			n = *p.Nutriments
		}

		f := model.Food{
			Source:       model.SourceExternal,
			SourceFoodID: offIDPrefix + code,
			Name:         truncateRunes(name, model.MaxFoodTextLength),
			ServingUnit:  "g",
			ServingSize:  100,
			Calories:     nonNegative(round1(float64(n.EnergyKcal100g))),
			ProteinG:     nonNegative(round1(float64(n.Proteins100g))),
			CarbsG:       nonNegative(round1(float64(n.Carbs100g))),
			FatG:         nonNegative(round1(float64(n.Fat100g))),
		}
		if brand := strings.TrimSpace(string(p.Brands)); brand != "" {
			brand = truncateRunes(brand, model.MaxFoodTextLength)
			f.Brand = &brand
		}

		foods = append(foods, f)
		if len(foods) == limit {
			break
		}
	}
	return foods
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

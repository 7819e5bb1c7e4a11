package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOFFServer(t *testing.T, handler http.HandlerFunc) *service.OpenFoodFactsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return service.NewOpenFoodFactsClient(srv.URL+"/cgi/search.pl", "macrolog-test/1.0", 2*time.Second)
}

func TestOpenFoodFactsSearchRequest(t *testing.T) {
	var gotPath, gotUA string
	var gotQuery map[string]string
	client := newOFFServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[]}`))
	})

	foods, err := client.Search(context.Background(), "peanut butter", 20)
	require.NoError(t, err)
	assert.Empty(t, foods)

	assert.Equal(t, "/cgi/search.pl", gotPath)
	assert.Equal(t, "macrolog-test/1.0", gotUA)
	assert.Equal(t, "peanut butter", gotQuery["search_terms"])
	assert.Equal(t, "1", gotQuery["search_simple"])
	assert.Equal(t, "process", gotQuery["action"])
	assert.Equal(t, "1", gotQuery["json"])
	assert.Equal(t, "20", gotQuery["page_size"])
}

func TestOpenFoodFactsParsesTolerantly(t *testing.T) {
	client := newOFFServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[
			{"code":"123","product_name":" Peanut Butter ","brands":" Acme ","nutriments":{"energy-kcal_100g":588.456,"proteins_100g":"25.04","carbohydrates_100g":20,"fat_100g":50.01}},
			{"code":"456","product_name":"Plain Water"},
			{"code":"","product_name":"No Code"},
			{"code":"789"},
			{"code":987,"product_name":"Numeric Code","nutriments":{"energy-kcal_100g":"n/a","fat_100g":null}},
			{"code":"123","product_name":"Duplicate"}
		]}`))
	})

	foods, err := client.Search(context.Background(), "peanut", 20)
	require.NoError(t, err)
	require.Len(t, foods, 3)

	pb := foods[0]
	assert.Equal(t, model.SourceExternal, pb.Source)
	assert.Equal(t, "off-123", pb.SourceFoodID)
	assert.Equal(t, "Peanut Butter", pb.Name)
	require.NotNil(t, pb.Brand)
	assert.Equal(t, "Acme", *pb.Brand)
	assert.Equal(t, "g", pb.ServingUnit)
	assert.Equal(t, 100.0, pb.ServingSize)
	assert.Equal(t, 588.5, pb.Calories)
	assert.Equal(t, 25.0, pb.ProteinG)
	assert.Equal(t, 20.0, pb.CarbsG)
	assert.Equal(t, 50.0, pb.FatG)

	water := foods[1]
	assert.Equal(t, "off-456", water.SourceFoodID)
	assert.Nil(t, water.Brand)
	assert.Zero(t, water.Calories)
	assert.Zero(t, water.ProteinG)

	numeric := foods[2]
	assert.Equal(t, "off-987", numeric.SourceFoodID)
	assert.Zero(t, numeric.Calories)
	assert.Zero(t, numeric.FatG)
}

func TestOpenFoodFactsCapsResults(t *testing.T) {
	client := newOFFServer(t, func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`{"products":[`)
		for i := 0; i < 30; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"code":"%d","product_name":"Item %02d"}`, i, i)
		}
		b.WriteString(`]}`)
		_, _ = w.Write([]byte(b.String()))
	})

	foods, err := client.Search(context.Background(), "item", 50)
	require.NoError(t, err)
	assert.Len(t, foods, service.MaxSearchResults)
}

func TestOpenFoodFactsFitsCacheColumns(t *testing.T) {
	longName := strings.Repeat("é", 300)
	longBrand := strings.Repeat("b", 300)
	longCode := strings.Repeat("9", 200)
	client := newOFFServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"products":[
			{"code":"1","product_name":%q,"brands":%q},
			{"code":%q,"product_name":"Too Long Code"},
			{"code":"2","product_name":"Plain Bar","brands":"Acme"}
		]}`, longName, longBrand, longCode)
	})

	foods, err := client.Search(context.Background(), "bar", 20)
	require.NoError(t, err)
	require.Len(t, foods, 2)

	assert.Equal(t, "off-1", foods[0].SourceFoodID)
	assert.Equal(t, model.MaxFoodTextLength, utf8.RuneCountInString(foods[0].Name))
	require.NotNil(t, foods[0].Brand)
	assert.Equal(t, model.MaxFoodTextLength, utf8.RuneCountInString(*foods[0].Brand))

	assert.Equal(t, "off-2", foods[1].SourceFoodID)
	assert.Equal(t, "Plain Bar", foods[1].Name)
	for _, f := range foods {
		assert.LessOrEqual(t, len(f.SourceFoodID), model.MaxSourceFoodIDLength)
	}
}

func TestOpenFoodFactsMissingProducts(t *testing.T) {
	client := newOFFServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	foods, err := client.Search(context.Background(), "anything", 20)
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestOpenFoodFactsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"products": [`))
			},
		},
		{
			name: "products not a list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"products": "nope"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newOFFServer(t, tt.handler)
			foods, err := client.Search(context.Background(), "chicken", 20)
			assert.Nil(t, foods)

			var lookupErr *service.ExternalLookupError
			require.True(t, errors.As(err, &lookupErr))
			assert.Equal(t, "openfoodfacts", lookupErr.Provider)
		})
	}
}

func TestOpenFoodFactsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := service.NewOpenFoodFactsClient(srv.URL, "macrolog-test/1.0", 50*time.Millisecond)

	start := time.Now()
	_, err := client.Search(context.Background(), "slow", 20)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

package fatsecret

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nutridex/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenBody = `{"access_token": "test-token", "token_type": "Bearer", "expires_in": 86400}`

// newTestServer serves both the token endpoint and the platform API from
// one mux, the way the tests wire the client.
func newTestServer(t *testing.T, api http.HandlerFunc) (*Client, *httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		assert.Equal(t, http.MethodPost, r.Method)

		auth := r.Header.Get("Authorization")
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("id:secret"))
		assert.Equal(t, want, auth)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Write([]byte(tokenBody))
	})
	mux.HandleFunc("/rest/server.api", api)

	server := httptest.NewServer(mux)
	client := NewClient("id", "secret", server.URL+"/connect/token", server.URL+"/rest/server.api")
	return client, server, &tokenCalls
}

func TestSearchByText(t *testing.T) {
	t.Run("parses per-100g descriptions", func(t *testing.T) {
		client, server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "foods.search", r.URL.Query().Get("method"))
			assert.Equal(t, "apple", r.URL.Query().Get("search_expression"))
			w.Write([]byte(`{"foods": {"food": [
				{
					"food_id": "35718",
					"food_name": "Apple",
					"food_type": "Generic",
					"food_description": "Per 100g - Calories: 52kcal | Fat: 0.17g | Carbs: 13.81g | Protein: 0.26g | Sugar: 10.39g | Fiber: 2.4g | Sodium: 1mg"
				},
				{
					"food_id": "9001",
					"food_name": "Apple Pie Slice",
					"food_type": "Brand",
					"brand_name": "Sweet Co",
					"food_description": "Per 1 slice - Calories: 320kcal | Fat: 14g"
				}
			], "max_results": "20", "total_results": "2"}}`))
		})
		defer server.Close()

		products, err := client.SearchByText(context.Background(), "apple", 20)
		require.NoError(t, err)
		require.Len(t, products, 1)

		p := products[0]
		assert.Equal(t, "35718", p.Identifier)
		assert.Equal(t, "Apple", p.Name)
		assert.Equal(t, "unknown", p.Brand)
		assert.Equal(t, 52.0, p.Nutrition.Calories)
		assert.Equal(t, 0.17, p.Nutrition.Fat)
		assert.Equal(t, 13.81, p.Nutrition.Carbs)
		assert.Equal(t, 0.26, p.Nutrition.Protein)
		assert.Equal(t, 10.39, p.Nutrition.Sugar)
		assert.Equal(t, 2.4, p.Nutrition.Fiber)
		assert.Equal(t, domain.SourceFatSecret, p.Provenance.Source)
		assert.Equal(t, domain.RegionInternational, p.Provenance.Region)
	})

	t.Run("token is fetched once and reused", func(t *testing.T) {
		client, server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"foods": {"food": []}}`))
		})
		defer server.Close()

		for i := 0; i < 3; i++ {
			_, err := client.SearchByText(context.Background(), "apple", 20)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, *tokenCalls)
	})

	t.Run("401 invalidates the cached token", func(t *testing.T) {
		apiCalls := 0
		client, server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			apiCalls++
			if apiCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"foods": {"food": []}}`))
		})
		defer server.Close()

		_, err := client.SearchByText(context.Background(), "apple", 20)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

		_, err = client.SearchByText(context.Background(), "apple", 20)
		require.NoError(t, err)
		assert.Equal(t, 2, *tokenCalls)
	})

	t.Run("embedded api error is a provider failure", func(t *testing.T) {
		client, server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": {"code": 13, "message": "invalid method"}}`))
		})
		defer server.Close()

		_, err := client.SearchByText(context.Background(), "apple", 20)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
		assert.True(t, strings.Contains(err.Error(), "invalid method"))
	})
}

func TestFoodListUnmarshal(t *testing.T) {
	t.Run("single hit arrives as a bare object", func(t *testing.T) {
		var fl foodList
		err := fl.UnmarshalJSON([]byte(`{"food_id": "1", "food_name": "Apple"}`))
		require.NoError(t, err)
		require.Len(t, fl, 1)
		assert.Equal(t, "Apple", fl[0].Name)
	})

	t.Run("multiple hits arrive as an array", func(t *testing.T) {
		var fl foodList
		err := fl.UnmarshalJSON([]byte(`[{"food_id": "1"}, {"food_id": "2"}]`))
		require.NoError(t, err)
		assert.Len(t, fl, 2)
	})
}

func TestMapFood(t *testing.T) {
	t.Run("brand name carries over", func(t *testing.T) {
		f := food{
			FoodID:      "77",
			Name:        "Skyr",
			BrandName:   "Arla",
			Description: "Per 100g - Calories: 63kcal | Fat: 0.2g | Carbs: 4g | Protein: 11g",
		}
		p, ok := mapFood(&f)
		require.True(t, ok)
		assert.Equal(t, "Arla", p.Brand)
	})

	t.Run("zero calories is dropped", func(t *testing.T) {
		f := food{
			Name:        "Water",
			Description: "Per 100g - Calories: 0kcal",
		}
		_, ok := mapFood(&f)
		assert.False(t, ok)
	})

	t.Run("sodium converts to salt", func(t *testing.T) {
		f := food{
			Name:        "Crackers",
			Description: "Per 100g - Calories: 450kcal | Sodium: 400mg",
		}
		p, ok := mapFood(&f)
		require.True(t, ok)
		assert.Equal(t, 1.0, p.Nutrition.Salt)
	})
}

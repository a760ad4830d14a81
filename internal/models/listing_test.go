package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing_LocationShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want Location
	}{
		{
			name: "plain string",
			raw:  map[string]interface{}{"location": "Bodija, Ibadan"},
			want: Location{Raw: "Bodija, Ibadan"},
		},
		{
			name: "object with area and address",
			raw: map[string]interface{}{"location": map[string]interface{}{
				"area": "Dugbe", "address": "12 Ring Road", "geolocation": "7.38,3.89",
			}},
			want: Location{NestedArea: "Dugbe", Address: "12 Ring Road", Geolocation: "7.38,3.89"},
		},
		{
			name: "top level fields",
			raw:  map[string]interface{}{"area": "Sango", "city": "Ibadan", "address": "Sango Market"},
			want: Location{Area: "Sango", City: "Ibadan", Address: "Sango Market"},
		},
		{
			name: "missing",
			raw:  map[string]interface{}{"title": "x"},
			want: Location{},
		},
		{
			name: "wrong type ignored",
			raw:  map[string]interface{}{"location": 42.0},
			want: Location{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseListing(tt.raw).Location)
		})
	}
}

func TestParseListing_ReadsEncodedListings(t *testing.T) {
	in := []Listing{
		{ID: "1", Title: "Bodija Bites", Category: "food.restaurant", Location: Location{Raw: "Bodija"}},
		{ID: "2", Title: "Bodija Rooms", Category: "stay.hotel", Location: Location{Area: "Bodija", City: "Ibadan"}},
		{ID: "3", Title: "Dugbe Diner", Category: "food.restaurant", Tags: []string{"buka"}, PriceFrom: 4000, Rating: 3.9,
			Location: Location{NestedArea: "Dugbe", Address: "Dugbe Market", Geolocation: "7.38,3.89"}},
	}
	encoded, err := json.Marshal(in)
	require.NoError(t, err)

	var raw []interface{}
	require.NoError(t, json.Unmarshal(encoded, &raw))

	assert.Equal(t, in, ParseListings(raw))
}

func TestParseListing_FieldFallbacks(t *testing.T) {
	l := ParseListing(map[string]interface{}{
		"_id":       "abc",
		"name":      "Sunset Hotel",
		"category":  "stay.hotel",
		"tags":      "pool, wifi ,",
		"price":     "15000",
		"rating":    4.5,
		"extraJunk": []interface{}{1, 2},
	})

	assert.Equal(t, "abc", l.ID)
	assert.Equal(t, "Sunset Hotel", l.Title)
	assert.Equal(t, []string{"pool", "wifi"}, l.Tags)
	assert.Equal(t, 15000.0, l.PriceFrom)
	assert.Equal(t, 4.5, l.Rating)
	assert.Equal(t, "stay", l.MainCategory())
	assert.Equal(t, "hotel", l.SubCategory())
}

func TestParseListings_FromJSON(t *testing.T) {
	body := `{"status":"success","data":{"listings":[
		{"id":"1","title":"A","location":"Bodija"},
		"not-an-object",
		{"id":"2","title":"B","tags":["x","y"]}
	]}}`

	var env ListingsEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	require.True(t, env.IsSuccess())

	listings := ParseListings(env.Data.Listings)
	require.Len(t, listings, 2)
	assert.Equal(t, "Bodija", listings[0].LocationText())
	assert.Equal(t, "x y", listings[1].TagText())
}

func TestListingsEnvelope_IsSuccess(t *testing.T) {
	decode := func(s string) *ListingsEnvelope {
		var env ListingsEnvelope
		require.NoError(t, json.Unmarshal([]byte(s), &env))
		return &env
	}

	assert.True(t, decode(`{"status":"success","data":{"listings":[]}}`).IsSuccess())
	assert.False(t, decode(`{"status":"success","data":{}}`).IsSuccess())
	assert.False(t, decode(`{"status":"success"}`).IsSuccess())
	assert.False(t, decode(`{"status":"error","message":"DB down"}`).IsSuccess())
}

func TestLocationFields_Order(t *testing.T) {
	l := Listing{Location: Location{NestedArea: "n", Area: "a", Raw: "r", Address: "d", City: "c", Geolocation: "g"}}
	assert.Equal(t, [5]string{"n", "a", "r", "d", "c"}, l.LocationFields())
}

func TestFilters_MinRatingAndEmpty(t *testing.T) {
	_, ok := Filters{}.MinRating()
	assert.False(t, ok)

	min, ok := Filters{Ratings: []float64{4, 3.5, 5}}.MinRating()
	assert.True(t, ok)
	assert.Equal(t, 3.5, min)

	assert.True(t, Filters{SortBy: SortRelevance}.IsEmpty())
	assert.False(t, Filters{SortBy: SortNewest}.IsEmpty())
}

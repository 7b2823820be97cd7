package filters

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleProperties() []models.Property {
	house := &models.PropertyType{ID: 1, Name: "House"}
	apartment := &models.PropertyType{ID: 2, Name: "Apartment"}

	return []models.Property{
		{ID: 1, Title: "Austin bungalow", City: "Austin", Price: 250000, ListingType: models.ListingTypeSale, PropertyType: house, Bedrooms: 3, Bathrooms: 2},
		{ID: 2, Title: "Austin estate", City: "Austin", Price: 400000, ListingType: models.ListingTypeSale, PropertyType: house, Bedrooms: 5, Bathrooms: 4},
		{ID: 3, Title: "Downtown loft", City: "Dallas", Price: 1800, ListingType: models.ListingTypeRent, PropertyType: apartment, Bedrooms: 1, Bathrooms: 1},
		{ID: 4, Title: "Round Rock flat", City: "Round Rock (Austin metro)", Price: 2100, ListingType: models.ListingTypeRent, PropertyType: apartment, Bedrooms: 2, Bathrooms: 1},
		{ID: 5, Title: "Untyped lot", City: "Houston", Price: 100000, ListingType: models.ListingTypeSale, Bedrooms: 0, Bathrooms: 0},
	}
}

func ids(props []models.Property) []int64 {
	out := make([]int64, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestParse_AllParameters(t *testing.T) {
	values := url.Values{
		"min_price":     {"100000"},
		"max_price":     {"300000.50"},
		"city":          {"Austin"},
		"property_type": {"house"},
		"listing_type":  {"sale"},
		"bedrooms":      {"3"},
		"bathrooms":     {"2"},
	}

	f, errs := Parse(values)

	assert.Empty(t, errs)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 100000.0, *f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 300000.50, *f.MaxPrice)
	assert.Equal(t, "Austin", *f.City)
	assert.Equal(t, "house", *f.PropertyType)
	assert.Equal(t, "sale", *f.ListingType)
	assert.Equal(t, 3, *f.Bedrooms)
	assert.Equal(t, 2, *f.Bathrooms)
}

func TestParse_EmptyValuesAreAbsent(t *testing.T) {
	f, errs := Parse(url.Values{"min_price": {""}, "city": {""}, "bedrooms": {"  "}})

	assert.Empty(t, errs)
	assert.True(t, f.IsEmpty())
}

func TestParse_MalformedNumbersAreReportedAndSkipped(t *testing.T) {
	values := url.Values{
		"min_price": {"cheap"},
		"max_price": {"300000"},
		"city":      {"Austin"},
		"bedrooms":  {"two"},
		"bathrooms": {"1.5"},
	}

	f, errs := Parse(values)

	require.Len(t, errs, 3)
	assert.Equal(t, ParamMinPrice, errs[0].Field)
	assert.Equal(t, "cheap", errs[0].Value)
	assert.Equal(t, ParamBedrooms, errs[1].Field)
	assert.Equal(t, ParamBathrooms, errs[2].Field)

	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.Bedrooms)
	assert.Nil(t, f.Bathrooms)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 300000.0, *f.MaxPrice)
	require.NotNil(t, f.City)
	assert.Equal(t, "Austin", *f.City)
}

func TestParse_RejectsNonFinitePrices(t *testing.T) {
	f, errs := Parse(url.Values{"min_price": {"NaN"}, "max_price": {"inf"}})

	assert.Len(t, errs, 2)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "min_price", Value: "abc", Reason: "must be a finite number"}
	assert.Equal(t, `min_price="abc": must be a finite number`, err.Error())
}

func TestApply_CityAndPriceRange(t *testing.T) {
	f := PropertyFilter{City: ptr("Austin"), MinPrice: ptr(100000.0), MaxPrice: ptr(300000.0)}

	got := f.Apply(sampleProperties())

	assert.Equal(t, []int64{1}, ids(got))
}

func TestApply_PriceBoundsAreInclusive(t *testing.T) {
	f := PropertyFilter{MinPrice: ptr(250000.0), MaxPrice: ptr(400000.0)}

	got := f.Apply(sampleProperties())

	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestApply_CaseInsensitiveSubstrings(t *testing.T) {
	tests := []struct {
		name   string
		filter PropertyFilter
		want   []int64
	}{
		{name: "city substring", filter: PropertyFilter{City: ptr("aUsTiN")}, want: []int64{1, 2, 4}},
		{name: "property type substring", filter: PropertyFilter{PropertyType: ptr("APART")}, want: []int64{3, 4}},
		{name: "listing type substring", filter: PropertyFilter{ListingType: ptr("Ren")}, want: []int64{3, 4}},
		{name: "property type skips untyped", filter: PropertyFilter{PropertyType: ptr("")}, want: []int64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(sampleProperties())))
		})
	}
}

func TestApply_ExactRoomCounts(t *testing.T) {
	assert.Equal(t, []int64{1}, ids(PropertyFilter{Bedrooms: ptr(3)}.Apply(sampleProperties())))
	assert.Equal(t, []int64{3, 4}, ids(PropertyFilter{Bathrooms: ptr(1)}.Apply(sampleProperties())))
	assert.Equal(t, []int64{5}, ids(PropertyFilter{Bedrooms: ptr(0), Bathrooms: ptr(0)}.Apply(sampleProperties())))
}

func TestApply_EmptyFilterReturnsEverything(t *testing.T) {
	props := sampleProperties()

	got := PropertyFilter{}.Apply(props)

	assert.Equal(t, ids(props), ids(got))
}

func TestApply_NoMatchesReturnsEmptySlice(t *testing.T) {
	got := PropertyFilter{City: ptr("Nowhere")}.Apply(sampleProperties())

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_Idempotent(t *testing.T) {
	f := PropertyFilter{City: ptr("austin"), ListingType: ptr("sale")}
	props := sampleProperties()

	once := f.Apply(props)
	twice := f.Apply(once)

	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, ids(once), ids(f.Apply(props)))
}

func TestApply_MalformedFilterDoesNotDropValidOnes(t *testing.T) {
	f, errs := Parse(url.Values{"min_price": {"abc"}, "city": {"Austin"}, "max_price": {"300000"}})
	require.Len(t, errs, 1)

	got := f.Apply(sampleProperties())

	// min_price ignored; city and max_price still apply
	assert.Equal(t, []int64{1, 4}, ids(got))
}

func TestMatch_AgreesWithApply(t *testing.T) {
	f := PropertyFilter{ListingType: ptr("rent"), MaxPrice: ptr(2000.0)}
	props := sampleProperties()

	var matched []int64
	for i := range props {
		if f.Match(&props[i]) {
			matched = append(matched, props[i].ID)
		}
	}

	assert.Equal(t, ids(f.Apply(props)), matched)
}

func TestFilter_StopsWhenConsumerStops(t *testing.T) {
	props := sampleProperties()
	var seen int
	for range (PropertyFilter{}).Filter(func(yield func(models.Property) bool) {
		for _, p := range props {
			if !yield(p) {
				return
			}
		}
	}) {
		seen++
		if seen == 2 {
			break
		}
	}

	assert.Equal(t, 2, seen)
}

func TestWhere_Empty(t *testing.T) {
	clause, args := PropertyFilter{}.Where(1)

	assert.Equal(t, "TRUE", clause)
	assert.Empty(t, args)
}

func TestWhere_AllFields(t *testing.T) {
	f := PropertyFilter{
		MinPrice:     ptr(1.0),
		MaxPrice:     ptr(2.0),
		City:         ptr("Austin"),
		PropertyType: ptr("house"),
		ListingType:  ptr("sale"),
		Bedrooms:     ptr(3),
		Bathrooms:    ptr(2),
	}

	clause, args := f.Where(1)

	assert.Equal(t,
		"p.price >= $1 AND p.price <= $2 AND STRPOS(LOWER(p.city), LOWER($3)) > 0 AND "+
			"STRPOS(LOWER(pt.name), LOWER($4)) > 0 AND STRPOS(LOWER(p.listing_type), LOWER($5)) > 0 AND "+
			"p.bedrooms = $6 AND p.bathrooms = $7",
		clause)
	assert.Equal(t, []any{1.0, 2.0, "Austin", "house", "sale", 3, 2}, args)
}

func TestWhere_PlaceholderOffset(t *testing.T) {
	clause, args := PropertyFilter{City: ptr("Austin"), Bedrooms: ptr(2)}.Where(3)

	assert.Equal(t, "STRPOS(LOWER(p.city), LOWER($3)) > 0 AND p.bedrooms = $4", clause)
	assert.Equal(t, []any{"Austin", 2}, args)
}

func TestLogFields(t *testing.T) {
	fields := PropertyFilter{City: ptr("Austin"), Bedrooms: ptr(2)}.LogFields()

	assert.Equal(t, map[string]interface{}{"city": "Austin", "bedrooms": 2}, fields)
}

// Package filters turns listing query parameters into a typed filter that can
// be evaluated in memory or rendered as a SQL WHERE clause.
//
// Where is the authoritative form: property listings are filtered in the
// database. Match, Filter and Apply mirror the same predicates for callers
// that already hold properties in memory. The two agree on ASCII text. Case
// folding of other text follows strings.ToLower in memory and the database
// collation's LOWER in SQL, so the forms can disagree on such values.
package filters

import (
	"fmt"
	"iter"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// Query parameter names accepted by Parse.
const (
	ParamMinPrice     = "min_price"
	ParamMaxPrice     = "max_price"
	ParamCity         = "city"
	ParamPropertyType = "property_type"
	ParamListingType  = "listing_type"
	ParamBedrooms     = "bedrooms"
	ParamBathrooms    = "bathrooms"
)

// PropertyFilter holds one optional field per supported filter.
// A nil field imposes no constraint; non-nil fields combine with AND.
type PropertyFilter struct {
	MinPrice     *float64
	MaxPrice     *float64
	City         *string
	PropertyType *string
	ListingType  *string
	Bedrooms     *int
	Bathrooms    *int
}

// FieldError describes a query parameter that could not be parsed.
type FieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s=%q: %s", e.Field, e.Value, e.Reason)
}

// Predicate reports whether a property satisfies one filter condition.
type Predicate func(p *models.Property) bool

// Parse builds a PropertyFilter from query values.
//
// Empty or missing parameters are treated as absent. A numeric parameter that
// does not parse is left unset and reported in the returned slice; the other
// parameters are unaffected. Callers decide whether to reject or ignore them.
func Parse(values url.Values) (PropertyFilter, []FieldError) {
	var (
		f    PropertyFilter
		errs []FieldError
	)

	parseFloat := func(name string) *float64 {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, FieldError{Field: name, Value: raw, Reason: "must be a finite number"})
			return nil
		}
		return &v
	}

	parseInt := func(name string) *int {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Value: raw, Reason: "must be a whole number"})
			return nil
		}
		return &v
	}

	text := func(name string) *string {
		raw := values.Get(name)
		if raw == "" {
			return nil
		}
		return &raw
	}

	f.MinPrice = parseFloat(ParamMinPrice)
	f.MaxPrice = parseFloat(ParamMaxPrice)
	f.City = text(ParamCity)
	f.PropertyType = text(ParamPropertyType)
	f.ListingType = text(ParamListingType)
	f.Bedrooms = parseInt(ParamBedrooms)
	f.Bathrooms = parseInt(ParamBathrooms)

	return f, errs
}

// IsEmpty reports whether no filter is set.
func (f PropertyFilter) IsEmpty() bool {
	return f == PropertyFilter{}
}

// Predicates returns one predicate per set field, in a fixed order.
func (f PropertyFilter) Predicates() []Predicate {
	var preds []Predicate

	if f.MinPrice != nil {
		lo := *f.MinPrice
		preds = append(preds, func(p *models.Property) bool { return p.Price >= lo })
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		preds = append(preds, func(p *models.Property) bool { return p.Price <= hi })
	}
	if f.City != nil {
		city := *f.City
		preds = append(preds, func(p *models.Property) bool { return containsFold(p.City, city) })
	}
	if f.PropertyType != nil {
		name := *f.PropertyType
		preds = append(preds, func(p *models.Property) bool {
			return p.PropertyType != nil && containsFold(p.PropertyType.Name, name)
		})
	}
	if f.ListingType != nil {
		lt := *f.ListingType
		preds = append(preds, func(p *models.Property) bool { return containsFold(string(p.ListingType), lt) })
	}
	if f.Bedrooms != nil {
		n := *f.Bedrooms
		preds = append(preds, func(p *models.Property) bool { return p.Bedrooms == n })
	}
	if f.Bathrooms != nil {
		n := *f.Bathrooms
		preds = append(preds, func(p *models.Property) bool { return p.Bathrooms == n })
	}

	return preds
}

// Match reports whether p satisfies every set filter. Text comparisons fold
// case with strings.ToLower, which matches Where only for ASCII input.
func (f PropertyFilter) Match(p *models.Property) bool {
	for _, pred := range f.Predicates() {
		if !pred(p) {
			return false
		}
	}
	return true
}

// Filter yields the properties from seq that satisfy every set filter.
func (f PropertyFilter) Filter(seq iter.Seq[models.Property]) iter.Seq[models.Property] {
	preds := f.Predicates()
	return func(yield func(models.Property) bool) {
	next:
		for p := range seq {
			for _, pred := range preds {
				if !pred(&p) {
					continue next
				}
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Apply returns the matching subset of props, preserving order.
func (f PropertyFilter) Apply(props []models.Property) []models.Property {
	out := slices.Collect(f.Filter(slices.Values(props)))
	if out == nil {
		out = []models.Property{}
	}
	return out
}

// Where renders the filter as a SQL condition over the aliases p (properties)
// and pt (property_types, LEFT JOINed). Listing queries use this form.
// Placeholders start at $firstArg. An empty filter renders as "TRUE" with no
// arguments.
func (f PropertyFilter) Where(firstArg int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(tmpl string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(tmpl, firstArg+len(args)-1))
	}

	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.City != nil {
		add("STRPOS(LOWER(p.city), LOWER($%d)) > 0", *f.City)
	}
	if f.PropertyType != nil {
		add("STRPOS(LOWER(pt.name), LOWER($%d)) > 0", *f.PropertyType)
	}
	if f.ListingType != nil {
		add("STRPOS(LOWER(p.listing_type), LOWER($%d)) > 0", *f.ListingType)
	}
	if f.Bedrooms != nil {
		add("p.bedrooms = $%d", *f.Bedrooms)
	}
	if f.Bathrooms != nil {
		add("p.bathrooms = $%d", *f.Bathrooms)
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

// LogFields returns the set filters as a field map for structured logging.
func (f PropertyFilter) LogFields() map[string]interface{} {
	fields := make(map[string]interface{})
	if f.MinPrice != nil {
		fields[ParamMinPrice] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		fields[ParamMaxPrice] = *f.MaxPrice
	}
	if f.City != nil {
		fields[ParamCity] = *f.City
	}
	if f.PropertyType != nil {
		fields[ParamPropertyType] = *f.PropertyType
	}
	if f.ListingType != nil {
		fields[ParamListingType] = *f.ListingType
	}
	if f.Bedrooms != nil {
		fields[ParamBedrooms] = *f.Bedrooms
	}
	if f.Bathrooms != nil {
		fields[ParamBathrooms] = *f.Bathrooms
	}
	return fields
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

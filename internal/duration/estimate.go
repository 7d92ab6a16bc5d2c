// Package duration estimates how long a visit to a place usually takes.
package duration

import (
	"slices"
	"strings"

	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Confidence expresses how much the estimate should be trusted.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Category is the bucket a place was classified into.
type Category string

const (
	CategoryDining        Category = "dining"
	CategoryAttraction    Category = "attraction"
	CategoryShopping      Category = "shopping"
	CategoryOutdoor       Category = "outdoor"
	CategoryEntertainment Category = "entertainment"
	CategoryLodging       Category = "lodging"
	CategoryDefault       Category = "default"
)

// DefaultMinutes is used when nothing about the place is recognized.
const DefaultMinutes = 60

// eveningStart is when dining estimates switch to dinner length.
const eveningStart = 17 * 60

// Place is the metadata the estimator looks at.
type Place struct {
	Name             string
	Types            []string
	Rating           *float64
	UserRatingsTotal *int
}

// Context describes when the visit happens.
type Context struct {
	TimeOfDay string // "HH:MM", empty if unknown
	IsWeekend bool
}

// Estimate is the suggested visit length.
type Estimate struct {
	Minutes    int
	Confidence Confidence
	Category   Category
}

// Categories in priority order. A place matching several takes the first.
var rules = []struct {
	category Category
	types    map[string]int // type -> base minutes
	keywords []string       // name fallbacks
}{
	{
		category: CategoryDining,
		types: map[string]int{
			"restaurant":           75,
			"bar":                  75,
			"food":                 60,
			"cafe":                 45,
			"coffee_shop":          45,
			"bakery":               45,
			"meal_takeaway":        45,
			"meal_delivery":        45,
			"fast_food_restaurant": 45,
		},
		keywords: []string{"restaurant", "bistro", "trattoria", "brasserie", "cafe", "café", "coffee", "bakery", "diner", "pizzeria"},
	},
	{
		category: CategoryAttraction,
		types: map[string]int{
			"museum":              120,
			"zoo":                 120,
			"aquarium":            120,
			"amusement_park":      120,
			"tourist_attraction":  90,
			"art_gallery":         90,
			"historical_landmark": 90,
			"church":              90,
			"place_of_worship":    90,
		},
		keywords: []string{"museum", "gallery", "cathedral", "castle", "palace", "tower", "zoo", "aquarium"},
	},
	{
		category: CategoryShopping,
		types: map[string]int{
			"shopping_mall":    90,
			"market":           60,
			"department_store": 60,
			"store":            45,
			"clothing_store":   45,
			"book_store":       45,
		},
		keywords: []string{"market", "mall", "shop", "store", "boutique"},
	},
	{
		category: CategoryOutdoor,
		types: map[string]int{
			"national_park":   120,
			"hiking_area":     120,
			"park":            60,
			"beach":           90,
			"natural_feature": 60,
			"campground":      90,
		},
		keywords: []string{"park", "garden", "beach", "trail", "lake", "viewpoint"},
	},
	{
		category: CategoryEntertainment,
		types: map[string]int{
			"stadium":                 150,
			"performing_arts_theater": 150,
			"movie_theater":           120,
			"casino":                  120,
			"night_club":              120,
			"bowling_alley":           90,
		},
		keywords: []string{"theater", "theatre", "cinema", "stadium", "arena", "club", "opera"},
	},
	{
		category: CategoryLodging,
		types: map[string]int{
			"lodging": 30,
			"hotel":   30,
		},
		keywords: []string{"hotel", "hostel", "resort"},
	},
}

// Upper bounds for each category's band.
var bandMax = map[Category]int{
	CategoryDining:        90,
	CategoryAttraction:    150,
	CategoryShopping:      90,
	CategoryOutdoor:       120,
	CategoryEntertainment: 150,
	CategoryLodging:       30,
}

// EstimateDuration suggests a visit length for place. Type matches give a
// high-confidence estimate, name keywords a medium one, anything else the
// low-confidence default. The result is a multiple of 15 minutes.
func EstimateDuration(place Place, ctx Context) Estimate {
	category, base, confidence := classify(place)
	if category == CategoryDefault {
		return Estimate{Minutes: DefaultMinutes, Confidence: ConfidenceLow, Category: CategoryDefault}
	}

	minutes := base
	switch category {
	case CategoryDining:
		if isEvening(ctx.TimeOfDay) {
			minutes += 15
		}
	case CategoryAttraction, CategoryOutdoor:
		if ctx.IsWeekend {
			minutes += 15
		}
		if category == CategoryAttraction && isPopular(place) {
			minutes = bandMax[category]
		}
	}

	minutes = min(minutes, bandMax[category])
	return Estimate{
		Minutes:    roundTo15(minutes),
		Confidence: confidence,
		Category:   category,
	}
}

// KnownTypes returns every place type the estimator recognizes, sorted.
func KnownTypes() []string {
	var out []string
	for _, r := range rules {
		for t := range r.types {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

func classify(place Place) (Category, int, Confidence) {
	for _, r := range rules {
		best := 0
		for _, t := range place.Types {
			if m, ok := r.types[strings.ToLower(t)]; ok && m > best {
				best = m
			}
		}
		if best > 0 {
			return r.category, best, ConfidenceHigh
		}
	}

	name := strings.ToLower(place.Name)
	if name == "" {
		return CategoryDefault, 0, ConfidenceLow
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.category, typicalMinutes(r.types), ConfidenceMedium
			}
		}
	}
	return CategoryDefault, 0, ConfidenceLow
}

// typicalMinutes returns the smallest base of a rule, used for name matches
// where the exact type is unknown.
func typicalMinutes(types map[string]int) int {
	lowest := 0
	for _, m := range types {
		if lowest == 0 || m < lowest {
			lowest = m
		}
	}
	return lowest
}

func isEvening(t string) bool {
	if t == "" {
		return false
	}
	m, err := timegrid.TimeToMinutes(t)
	return err == nil && m >= eveningStart
}

// isPopular reports a highly rated place with plenty of reviews.
func isPopular(p Place) bool {
	return p.Rating != nil && *p.Rating >= 4.5 &&
		p.UserRatingsTotal != nil && *p.UserRatingsTotal >= 1000
}

func roundTo15(m int) int {
	return (m + 7) / 15 * 15
}

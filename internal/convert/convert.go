// Package convert implements the unit converter: currency, weight, volume,
// length, and temperature. Non-temperature kinds convert through a base unit
// via a conversion factor; temperature is handled with explicit formulas.
package convert

import (
	"sync"

	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
)

// Kind is a unit category.
type Kind string

const (
	Currency    Kind = "currency"
	Weight      Kind = "weight"
	Volume      Kind = "volume"
	Length      Kind = "length"
	Temperature Kind = "temperature"
)

// Unit is a single convertible unit.
type Unit struct {
	// Name is the display name (e.g., "Kilogram").
	Name string `json:"name"`

	// Symbol is the short form shown next to values (e.g., "kg", "€").
	Symbol string `json:"symbol"`

	// Code identifies the unit in conversion requests. For currencies it is
	// the ISO code matching the rate table keys; for other kinds it equals
	// the symbol.
	Code string `json:"code"`

	// Kind is the unit category.
	Kind Kind `json:"kind"`

	// Factor is how many of this unit make up one base unit of its kind
	// (kg, L, m, or the base currency). Unused for temperature.
	Factor float64 `json:"factor"`
}

// Converter holds the unit tables. Currency factors start from a bundled
// snapshot and are replaced by fetched rates via ApplyRates; the converter
// keeps no global state, so two instances never interfere.
//
// One Converter is shared by all HTTP handlers, so the tables are guarded:
// ApplyRates writes factors while concurrent requests convert.
type Converter struct {
	mu    sync.RWMutex
	units map[Kind][]Unit
}

// New returns a Converter with the default unit tables.
func New() *Converter {
	return &Converter{units: map[Kind][]Unit{
		Currency: {
			{Name: "US Dollar", Symbol: "$", Code: "USD", Kind: Currency, Factor: 1.0},
			{Name: "Euro", Symbol: "€", Code: "EUR", Kind: Currency, Factor: 0.92},
			{Name: "British Pound", Symbol: "£", Code: "GBP", Kind: Currency, Factor: 0.79},
			{Name: "Japanese Yen", Symbol: "¥", Code: "JPY", Kind: Currency, Factor: 151.5},
			{Name: "Swiss Franc", Symbol: "Fr", Code: "CHF", Kind: Currency, Factor: 0.91},
		},
		Weight: {
			{Name: "Kilogram", Symbol: "kg", Code: "kg", Kind: Weight, Factor: 1.0},
			{Name: "Pound", Symbol: "lb", Code: "lb", Kind: Weight, Factor: 2.20462},
			{Name: "Ounce", Symbol: "oz", Code: "oz", Kind: Weight, Factor: 35.274},
			{Name: "Gram", Symbol: "g", Code: "g", Kind: Weight, Factor: 1000.0},
		},
		Volume: {
			{Name: "Liter", Symbol: "L", Code: "L", Kind: Volume, Factor: 1.0},
			{Name: "Milliliter", Symbol: "mL", Code: "mL", Kind: Volume, Factor: 1000.0},
			{Name: "Cup", Symbol: "cup", Code: "cup", Kind: Volume, Factor: 4.22675},
			{Name: "Gallon", Symbol: "gal", Code: "gal", Kind: Volume, Factor: 0.264172},
			{Name: "Fluid Ounce", Symbol: "fl oz", Code: "fl oz", Kind: Volume, Factor: 33.814},
		},
		Length: {
			{Name: "Meter", Symbol: "m", Code: "m", Kind: Length, Factor: 1.0},
			{Name: "Centimeter", Symbol: "cm", Code: "cm", Kind: Length, Factor: 100.0},
			{Name: "Millimeter", Symbol: "mm", Code: "mm", Kind: Length, Factor: 1000.0},
			{Name: "Foot", Symbol: "ft", Code: "ft", Kind: Length, Factor: 3.28084},
			{Name: "Inch", Symbol: "in", Code: "in", Kind: Length, Factor: 39.3701},
		},
		Temperature: {
			{Name: "Celsius", Symbol: "°C", Code: "C", Kind: Temperature, Factor: 1.0},
			{Name: "Fahrenheit", Symbol: "°F", Code: "F", Kind: Temperature, Factor: 1.0},
			{Name: "Kelvin", Symbol: "K", Code: "K", Kind: Temperature, Factor: 1.0},
		},
	}}
}

// Units returns the table for a kind, in display order.
func (c *Converter) Units(kind Kind) []Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Unit(nil), c.units[kind]...)
}

// ApplyRates replaces the factors of currency units that appear in the rate
// table. Currencies missing from the table keep their previous factor.
func (c *Converter) ApplyRates(table models.RateTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	units := c.units[Currency]
	for i, u := range units {
		if rate, ok := table.Rates[u.Code]; ok {
			units[i].Factor = rate
		}
	}
}

// Convert converts value between two units of the same kind, identified by
// code.
func (c *Converter) Convert(kind Kind, fromCode, toCode string, value float64) (float64, error) {
	from, err := c.lookup(kind, fromCode)
	if err != nil {
		return 0, err
	}
	to, err := c.lookup(kind, toCode)
	if err != nil {
		return 0, err
	}

	if kind == Temperature {
		return convertTemperature(from.Code, to.Code, value), nil
	}

	// To the base unit first, then to the target.
	base := value / from.Factor
	return base * to.Factor, nil
}

func (c *Converter) lookup(kind Kind, code string) (Unit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, u := range c.units[kind] {
		if u.Code == code {
			return u, nil
		}
	}
	return Unit{}, errs.Validationf("unknown %s unit %q", kind, code)
}

func convertTemperature(from, to string, value float64) float64 {
	// Through Celsius in both directions.
	var celsius float64
	switch from {
	case "F":
		celsius = (value - 32) * 5 / 9
	case "K":
		celsius = value - 273.15
	default:
		celsius = value
	}

	switch to {
	case "F":
		return celsius*9/5 + 32
	case "K":
		return celsius + 273.15
	default:
		return celsius
	}
}

package gateway

import (
	"errors"
	"fmt"
)

// ErrCurrencyUnsupported is returned when an order's currency has no entry
// in the registry. Callers must abort before contacting the gateway.
var ErrCurrencyUnsupported = errors.New("currency not supported by gateway")

// Currency describes a storefront currency the gateway can charge in.
// Multiplier converts a whole-unit order total into the integer unit the
// remote gateway expects.
type Currency struct {
	Code       string
	Name       string
	Multiplier int64
}

// CurrencyRegistry maps currency codes to their gateway conversion rules.
// It is resolved once at startup; no ambient registration happens later.
type CurrencyRegistry struct {
	currencies map[string]Currency
}

// NewCurrencyRegistry returns a registry seeded with the currencies the
// gateway supports out of the box.
func NewCurrencyRegistry() *CurrencyRegistry {
	r := &CurrencyRegistry{currencies: make(map[string]Currency)}
	r.Register(Currency{Code: "IRHR", Name: "Iranian hezar rial", Multiplier: 1000})
	r.Register(Currency{Code: "IRHT", Name: "Iranian hezar toman", Multiplier: 10000})
	return r
}

// Register adds or replaces a currency. Intended for startup wiring only.
func (r *CurrencyRegistry) Register(c Currency) {
	r.currencies[c.Code] = c
}

// Lookup returns the currency definition for a code.
func (r *CurrencyRegistry) Lookup(code string) (Currency, bool) {
	c, ok := r.currencies[code]
	return c, ok
}

// Normalize converts an order total into the gateway's integer unit.
// It must be applied identically at creation and verification time so both
// sides compare the same unit.
func (r *CurrencyRegistry) Normalize(total int64, code string) (int64, error) {
	c, ok := r.currencies[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCurrencyUnsupported, code)
	}
	return total * c.Multiplier, nil
}

package listing

import "strings"

const YearBefore2000 = "Before 2000"

// Price bucket labels, matched verbatim.
const (
	PriceUnder1000  = "Under 1000 DZD"
	Price1000To2000 = "1000 - 2000 DZD"
	Price2000To3000 = "2000 - 3000 DZD"
	Price3000To5000 = "3000 - 5000 DZD"
	Price5000To7000 = "5000 - 7000 DZD"
	PriceOver7000   = "7000+ DZD"
)

// PriceRanges lists the bucket labels in display order.
var PriceRanges = []string{
	PriceUnder1000,
	Price1000To2000,
	Price2000To3000,
	Price3000To5000,
	Price5000To7000,
	PriceOver7000,
}

// Criteria is the set of listing filters a viewer has selected. Empty fields are ignored.
type Criteria struct {
	Query        string   `form:"q" json:"q"`
	Wilaya       string   `form:"wilaya" json:"wilaya"`
	City         string   `form:"city" json:"city"`
	Brand        string   `form:"brand" json:"brand"`
	Model        string   `form:"model" json:"model"`
	FuelType     string   `form:"fuel_type" json:"fuel_type"`
	Transmission string   `form:"transmission" json:"transmission"`
	Seats        string   `form:"seats" json:"seats"`
	Doors        string   `form:"doors" json:"doors"`
	Category     string   `form:"category" json:"category"`
	YearRange    string   `form:"year_range" json:"year_range"`
	PriceRange   string   `form:"price_range" json:"price_range"`
	Features     []string `form:"features" json:"features"`
}

// SelectWilaya sets the wilaya and drops the city, which belonged to the previous wilaya.
func (c *Criteria) SelectWilaya(wilaya string) {
	c.Wilaya = wilaya
	c.City = ""
}

// SelectBrand sets the brand and drops the model, which belonged to the previous brand.
func (c *Criteria) SelectBrand(brand string) {
	c.Brand = brand
	c.Model = ""
}

// ToggleFeature adds feature to the required set, or removes it when already present.
func (c *Criteria) ToggleFeature(feature string) {
	for i, f := range c.Features {
		if f == feature {
			c.Features = append(c.Features[:i:i], c.Features[i+1:]...)
			return
		}
	}
	c.Features = append(c.Features, feature)
}

// Clear resets every criterion.
func (c *Criteria) Clear() {
	*c = Criteria{}
}

// Active reports whether at least one criterion would narrow the result.
func (c *Criteria) Active() bool {
	return c.Query != "" ||
		c.Wilaya != "" ||
		c.City != "" ||
		c.Brand != "" ||
		c.Model != "" ||
		c.FuelType != "" ||
		c.Transmission != "" ||
		c.Seats != "" ||
		c.Doors != "" ||
		c.Category != "" ||
		c.YearRange != "" ||
		c.PriceRange != "" ||
		len(c.Features) > 0
}

// Normalize trims surrounding white space from every value and drops blank features.
func (c *Criteria) Normalize() {
	for _, f := range []*string{
		&c.Query, &c.Wilaya, &c.City, &c.Brand, &c.Model, &c.FuelType,
		&c.Transmission, &c.Seats, &c.Doors, &c.Category, &c.YearRange, &c.PriceRange,
	} {
		*f = strings.TrimSpace(*f)
	}

	features := c.Features[:0]
	for _, f := range c.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	if len(features) == 0 {
		features = nil
	}
	c.Features = features
}

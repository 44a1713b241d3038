package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed filters.yaml
var filtersYAML []byte

//go:embed wilayas.yaml
var wilayasYAML []byte

type Brand struct {
	Label  string   `yaml:"label" json:"label"`
	Models []string `yaml:"models" json:"models"`
}

type Wilaya struct {
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

// Filters holds the option lists offered by the listing filters and the add-car form.
type Filters struct {
	Brands        []Brand  `yaml:"brands" json:"brands"`
	FuelTypes     []string `yaml:"fuel_types" json:"fuel_types"`
	Transmissions []string `yaml:"transmissions" json:"transmissions"`
	Seats         []string `yaml:"seats" json:"seats"`
	Doors         []string `yaml:"doors" json:"doors"`
	Categories    []string `yaml:"categories" json:"categories"`
	YearRanges    []string `yaml:"year_ranges" json:"year_ranges"`
	PriceRanges   []string `yaml:"price_ranges" json:"price_ranges"`
	Features      []string `yaml:"features" json:"features"`
}

type Catalog struct {
	Filters Filters
	Wilayas []Wilaya

	brands  map[string][]string
	cities  map[string][]string
	feature map[string]struct{}
}

// Load parses the embedded reference data.
func Load() (*Catalog, error) {
	var filters Filters
	if err := yaml.Unmarshal(filtersYAML, &filters); err != nil {
		return nil, fmt.Errorf("failed to parse filter catalog: %w", err)
	}

	var locations struct {
		Wilayas []Wilaya `yaml:"wilayas"`
	}
	if err := yaml.Unmarshal(wilayasYAML, &locations); err != nil {
		return nil, fmt.Errorf("failed to parse wilaya catalog: %w", err)
	}

	c := &Catalog{
		Filters: filters,
		Wilayas: locations.Wilayas,
		brands:  make(map[string][]string, len(filters.Brands)),
		cities:  make(map[string][]string, len(locations.Wilayas)),
		feature: make(map[string]struct{}, len(filters.Features)),
	}
	for _, b := range filters.Brands {
		c.brands[b.Label] = b.Models
	}
	for _, w := range locations.Wilayas {
		c.cities[w.Name] = w.Cities
	}
	for _, f := range filters.Features {
		c.feature[f] = struct{}{}
	}

	return c, nil
}

// MustLoad is Load for package-level initialisation in tests and main.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) ModelsForBrand(brand string) []string {
	return c.brands[brand]
}

func (c *Catalog) CitiesForWilaya(wilaya string) []string {
	return c.cities[wilaya]
}

func (c *Catalog) WilayaNames() []string {
	names := make([]string, 0, len(c.Wilayas))
	for _, w := range c.Wilayas {
		names = append(names, w.Name)
	}
	return names
}

func (c *Catalog) HasBrand(brand string) bool {
	_, ok := c.brands[brand]
	return ok
}

func (c *Catalog) HasWilaya(wilaya string) bool {
	_, ok := c.cities[wilaya]
	return ok
}

// HasModel reports whether model belongs to brand.
func (c *Catalog) HasModel(brand, model string) bool {
	return contains(c.brands[brand], model)
}

// HasCity reports whether city belongs to wilaya.
func (c *Catalog) HasCity(wilaya, city string) bool {
	return contains(c.cities[wilaya], city)
}

func (c *Catalog) HasFeature(feature string) bool {
	_, ok := c.feature[feature]
	return ok
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

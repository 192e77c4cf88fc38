package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moustafa-dental/dental-lab-api/models"
)

// Units of measure for catalog services. Tooth-billed services carry a teeth
// list on the order and always have quantity 1; quantity-billed services use
// the quantity field directly.
const (
	UnitTooth    = "tooth"
	UnitQuantity = "quantity"
)

// ServiceDefinition is one entry of the lab's fixed service catalog. The unit
// of measure is resolved here, at configuration time, rather than derived
// from the service name at each use.
type ServiceDefinition struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	UnitOfMeasure string  `json:"unit_of_measure"`
}

// serviceCatalog is ordered: legacy order derivation takes the first match.
var serviceCatalog = []ServiceDefinition{
	{Name: "Kram Crown implant Titanium", Price: 220, UnitOfMeasure: UnitTooth},
	{Name: "Doycineum Crown", Price: 200, UnitOfMeasure: UnitTooth},
	{Name: "Zirconia Crown", Price: 155, UnitOfMeasure: UnitTooth},
	{Name: "E-Max Crown", Price: 175, UnitOfMeasure: UnitTooth},
	{Name: "E-Max Veneers", Price: 175, UnitOfMeasure: UnitTooth},
	{Name: "Denture Repair", Price: 75, UnitOfMeasure: UnitQuantity},
	{Name: "Implant Abutment", Price: 250, UnitOfMeasure: UnitQuantity},
}

// Catalog returns the fixed service catalog.
func Catalog() []ServiceDefinition {
	out := make([]ServiceDefinition, len(serviceCatalog))
	copy(out, serviceCatalog)
	return out
}

// DefaultPricing returns the catalog as a starting price list for a new
// technician.
func DefaultPricing() models.ServicePriceList {
	pricing := make(models.ServicePriceList, 0, len(serviceCatalog))
	for _, svc := range serviceCatalog {
		pricing = append(pricing, models.ServicePrice{
			ServiceName: svc.Name,
			Price:       svc.Price,
		})
	}
	return pricing
}

var quantityPattern = regexp.MustCompile(`(\d+)\s*x`)

// DeriveOrdersFromCaseName is a best-effort migration helper for legacy cases
// that carry no structured order data. It matches known service keywords in
// the case name (case-insensitive) and a leading "N x" quantity pattern. The
// first catalog match wins. Once a case has any real order this is never
// consulted again.
func DeriveOrdersFromCaseName(caseName string) []models.Order {
	if caseName == "" {
		return nil
	}

	lower := strings.ToLower(caseName)

	quantity := 1
	if m := quantityPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			quantity = n
		}
	}

	for _, svc := range serviceCatalog {
		simplified := strings.ToLower(svc.Name)
		simplified = strings.ReplaceAll(simplified, " crown", "")
		simplified = strings.ReplaceAll(simplified, " implant", "")
		simplified = strings.ReplaceAll(simplified, " titanium", "")
		simplified = strings.TrimSpace(simplified)
		if strings.Contains(lower, simplified) {
			return []models.Order{{
				ServiceName: svc.Name,
				Price:       svc.Price,
				Quantity:    quantity,
				Teeth:       []string{},
			}}
		}
	}

	// Generic fallbacks for names that only mention the restoration type
	if strings.Contains(lower, "crown") {
		return []models.Order{{ServiceName: "Zirconia Crown", Price: 155, Quantity: 1, Teeth: []string{}}}
	}
	if strings.Contains(lower, "veneer") {
		return []models.Order{{ServiceName: "E-Max Veneers", Price: 175, Quantity: quantity, Teeth: []string{}}}
	}

	return nil
}

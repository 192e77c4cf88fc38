package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	assert.Len(t, catalog, 7)

	byName := make(map[string]ServiceDefinition)
	for _, svc := range catalog {
		byName[svc.Name] = svc
	}

	assert.Equal(t, 155.0, byName["Zirconia Crown"].Price)
	assert.Equal(t, UnitTooth, byName["Zirconia Crown"].UnitOfMeasure)
	assert.Equal(t, 220.0, byName["Kram Crown implant Titanium"].Price)
	assert.Equal(t, UnitQuantity, byName["Denture Repair"].UnitOfMeasure)
	assert.Equal(t, UnitQuantity, byName["Implant Abutment"].UnitOfMeasure)

	// Mutating the returned slice must not affect the catalog
	catalog[0].Price = 1
	assert.Equal(t, 220.0, Catalog()[0].Price)
}

func TestDefaultPricing(t *testing.T) {
	pricing := DefaultPricing()
	assert.Len(t, pricing, 7)

	for i, svc := range Catalog() {
		assert.Equal(t, svc.Name, pricing[i].ServiceName)
		assert.Equal(t, svc.Price, pricing[i].Price)
	}
}

func TestDeriveOrdersFromCaseName(t *testing.T) {
	tests := []struct {
		name         string
		caseName     string
		wantService  string
		wantQuantity int
		wantNil      bool
	}{
		{
			name:        "zirconia keyword",
			caseName:    "John Smith - Zirconia UR5",
			wantService: "Zirconia Crown", wantQuantity: 1,
		},
		{
			name:        "case insensitive",
			caseName:    "e-max bridge for Dr Ahmed",
			wantService: "E-Max Crown", wantQuantity: 1,
		},
		{
			name:        "quantity prefix",
			caseName:    "3x denture repair for Mrs Jones",
			wantService: "Denture Repair", wantQuantity: 3,
		},
		{
			name:        "quantity with space before x",
			caseName:    "2 x implant abutment",
			wantService: "Implant Abutment", wantQuantity: 2,
		},
		{
			name:        "titanium implant matches kram first",
			caseName:    "kram restoration LL6",
			wantService: "Kram Crown implant Titanium", wantQuantity: 1,
		},
		{
			name:        "generic crown fallback",
			caseName:    "anterior crown shade B1",
			wantService: "Zirconia Crown", wantQuantity: 1,
		},
		{
			name:        "veneer fallback keeps quantity",
			caseName:    "4x veneer upper anteriors",
			wantService: "E-Max Veneers", wantQuantity: 4,
		},
		{
			name:     "no keyword",
			caseName: "night guard for bruxism",
			wantNil:  true,
		},
		{
			name:     "empty name",
			caseName: "",
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := DeriveOrdersFromCaseName(tt.caseName)
			if tt.wantNil {
				assert.Nil(t, orders)
				return
			}
			assert.Len(t, orders, 1)
			assert.Equal(t, tt.wantService, orders[0].ServiceName)
			assert.Equal(t, tt.wantQuantity, orders[0].Quantity)
			assert.NotNil(t, orders[0].Teeth)
		})
	}
}

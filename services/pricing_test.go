package services

import (
	"testing"

	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/stretchr/testify/assert"
)

func TestCaseCost(t *testing.T) {
	tests := []struct {
		name   string
		orders []models.Order
		want   float64
	}{
		{
			name:   "empty order list",
			orders: nil,
			want:   0,
		},
		{
			name: "single tooth-billed order",
			orders: []models.Order{
				{ServiceName: "Zirconia Crown", Price: 155, Quantity: 1},
			},
			want: 155,
		},
		{
			name: "quantity multiplies price",
			orders: []models.Order{
				{ServiceName: "Denture Repair", Price: 75, Quantity: 3},
			},
			want: 225,
		},
		{
			name: "costs add across line items",
			orders: []models.Order{
				{ServiceName: "Zirconia Crown", Price: 155, Quantity: 2},
				{ServiceName: "Implant Abutment", Price: 250, Quantity: 1},
			},
			want: 560,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CaseCost(tt.orders))
		})
	}
}

func TestAmountOwed(t *testing.T) {
	cases := []models.Case{
		{ID: 1, TechnicianID: 7, Status: models.StatusFinished, Orders: []models.Order{{Price: 155, Quantity: 1}}},
		{ID: 2, TechnicianID: 7, Status: models.StatusFinished, Orders: []models.Order{{Price: 200, Quantity: 2}}},
		{ID: 3, TechnicianID: 7, Status: models.StatusInProgress, Orders: []models.Order{{Price: 999, Quantity: 1}}},
		{ID: 4, TechnicianID: 8, Status: models.StatusFinished, Orders: []models.Order{{Price: 300, Quantity: 1}}},
	}

	t.Run("only finished cases of the technician count", func(t *testing.T) {
		owed, unpaid := AmountOwed(cases, nil, 7)
		assert.Equal(t, 555.0, owed)
		assert.Len(t, unpaid, 2)
	})

	t.Run("paid cases are excluded", func(t *testing.T) {
		payments := []models.Payment{
			{TechnicianID: 7, Amount: 155, CaseIDs: models.UintList{1}},
		}
		owed, unpaid := AmountOwed(cases, payments, 7)
		assert.Equal(t, 400.0, owed)
		assert.Len(t, unpaid, 1)
		assert.Equal(t, uint(2), unpaid[0].ID)
	})

	t.Run("another technician's payments do not count", func(t *testing.T) {
		payments := []models.Payment{
			{TechnicianID: 8, Amount: 155, CaseIDs: models.UintList{1}},
		}
		owed, _ := AmountOwed(cases, payments, 7)
		assert.Equal(t, 555.0, owed)
	})

	t.Run("everything paid leaves zero owed", func(t *testing.T) {
		payments := []models.Payment{
			{TechnicianID: 7, Amount: 555, CaseIDs: models.UintList{1, 2}},
		}
		owed, unpaid := AmountOwed(cases, payments, 7)
		assert.Equal(t, 0.0, owed)
		assert.Empty(t, unpaid)
	})

	t.Run("unknown technician owes nothing", func(t *testing.T) {
		owed, unpaid := AmountOwed(cases, nil, 99)
		assert.Equal(t, 0.0, owed)
		assert.Empty(t, unpaid)
	})
}

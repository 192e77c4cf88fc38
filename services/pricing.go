package services

import "github.com/moustafa-dental/dental-lab-api/models"

// CaseCost returns the total cost of a case's order list: the sum of
// price * quantity over all line items. Prices are the snapshots captured at
// order creation. An empty list costs 0. The input is never mutated.
func CaseCost(orders []models.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.Price * float64(o.Quantity)
	}
	return total
}

// UnpaidFinishedCases returns the technician's finished cases that no
// existing payment covers, in the order given.
func UnpaidFinishedCases(cases []models.Case, payments []models.Payment, technicianID uint) []models.Case {
	paid := make(map[uint]bool)
	for _, p := range payments {
		if p.TechnicianID != technicianID {
			continue
		}
		for _, id := range p.CaseIDs {
			paid[id] = true
		}
	}

	var unpaid []models.Case
	for _, c := range cases {
		if c.TechnicianID == technicianID && c.Status == models.StatusFinished && !paid[c.ID] {
			unpaid = append(unpaid, c)
		}
	}
	return unpaid
}

// AmountOwed computes what the lab owes a technician: the summed cost of
// their finished cases not yet covered by any payment's case-id list.
func AmountOwed(cases []models.Case, payments []models.Payment, technicianID uint) (float64, []models.Case) {
	unpaid := UnpaidFinishedCases(cases, payments, technicianID)
	var total float64
	for _, c := range unpaid {
		total += CaseCost(c.Orders)
	}
	return total, unpaid
}

package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moustafa-dental/dental-lab-api/config"
	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/moustafa-dental/dental-lab-api/services"
)

// CreatePaymentRequest represents the request body for settling a
// technician's finished cases
type CreatePaymentRequest struct {
	TechnicianID uint `json:"technician_id" binding:"required"`
}

// TechnicianBalance is one row of the owed summary
type TechnicianBalance struct {
	Technician  models.Technician `json:"technician"`
	AmountOwed  float64           `json:"amount_owed"`
	UnpaidCases []models.Case     `json:"unpaid_cases"`
}

// ListPayments handles GET /api/v1/payments - admins see all payments,
// technicians their own
func ListPayments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Technician").Order("date DESC")

	if user.Role == models.RoleTechnician {
		var technician models.Technician
		if err := db.Where("user_id = ?", user.ID).First(&technician).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TECHNICIAN_NOT_FOUND",
					"message": "No technician record is linked to this account",
				},
			})
			return
		}
		query = query.Where("technician_id = ?", technician.ID)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch payments",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payments,
	})
}

// loadBalances computes the owed summary for every technician.
func loadBalances(c *gin.Context) ([]TechnicianBalance, bool) {
	db := config.GetDB()

	var technicians []models.Technician
	var cases []models.Case
	var payments []models.Payment
	if err := db.Order("name ASC").Find(&technicians).Error; err != nil ||
		db.Find(&cases).Error != nil ||
		db.Find(&payments).Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch payment data",
			},
		})
		return nil, false
	}

	balances := make([]TechnicianBalance, 0, len(technicians))
	for _, tech := range technicians {
		owed, unpaid := services.AmountOwed(cases, payments, tech.ID)
		balances = append(balances, TechnicianBalance{
			Technician:  tech,
			AmountOwed:  owed,
			UnpaidCases: unpaid,
		})
	}
	return balances, true
}

// GetOwed handles GET /api/v1/payments/owed - per-technician owed summary
// (admins only)
func GetOwed(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can view payment balances",
			},
		})
		return
	}

	balances, ok := loadBalances(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    balances,
	})
}

// CreatePayment handles POST /api/v1/payments - pays out everything owed to
// one technician, covering exactly their unpaid finished cases (admins only)
func CreatePayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can create payments",
			},
		})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, req.TechnicianID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	var cases []models.Case
	var payments []models.Payment
	if db.Find(&cases).Error != nil || db.Find(&payments).Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch payment data",
			},
		})
		return
	}

	owed, unpaid := services.AmountOwed(cases, payments, technician.ID)
	if owed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOTHING_OWED",
				"message": "This technician has no unpaid finished cases",
			},
		})
		return
	}

	caseIDs := make(models.UintList, 0, len(unpaid))
	for _, uc := range unpaid {
		caseIDs = append(caseIDs, uc.ID)
	}

	payment := models.Payment{
		TechnicianID: technician.ID,
		Amount:       owed,
		Date:         time.Now(),
		CaseIDs:      caseIDs,
	}
	if err := db.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create payment",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payment,
	})
}

// PaymentReportCSV handles GET /api/v1/payments/report - downloads the
// financial report as CSV (admins only). Optional from/to query parameters
// (YYYY-MM-DD) bound the "total paid" column.
func PaymentReportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can download the financial report",
			},
		})
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		from, _ = time.Parse("2006-01-02", v)
	}
	if v := c.Query("to"); v != "" {
		to, _ = time.Parse("2006-01-02", v)
	}

	balances, ok := loadBalances(c)
	if !ok {
		return
	}

	var payments []models.Payment
	if err := config.GetDB().Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch payments",
			},
		})
		return
	}

	paidInPeriod := make(map[uint]float64)
	for _, p := range payments {
		if !from.IsZero() && p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		paidInPeriod[p.TechnicianID] += p.Amount
	}

	filename := fmt.Sprintf("financial_report_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Technician Name", "Amount Owed", "Total Paid (Selected Period)", "Unpaid Cases Count"})
	for _, b := range balances {
		_ = w.Write([]string{
			b.Technician.Name,
			fmt.Sprintf("%.2f", b.AmountOwed),
			fmt.Sprintf("%.2f", paidInPeriod[b.Technician.ID]),
			fmt.Sprintf("%d", len(b.UnpaidCases)),
		})
	}
	w.Flush()
}

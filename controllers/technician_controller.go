package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moustafa-dental/dental-lab-api/config"
	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/moustafa-dental/dental-lab-api/services"
	"gorm.io/gorm"
)

// CreateTechnicianRequest represents the request body for creating a
// technician. When user_id is omitted a placeholder account is created and
// linked; it is claimed on first Auth0 sign-in with the same email.
type CreateTechnicianRequest struct {
	Name    string                `json:"name" binding:"required"`
	Email   string                `json:"email" binding:"required,email"`
	Phone   string                `json:"phone"`
	Skills  []string              `json:"skills"`
	Pricing []models.ServicePrice `json:"pricing"`
	UserID  *uint                 `json:"user_id"`
}

// UpdateTechnicianRequest represents the request body for updating a
// technician's contact details
type UpdateTechnicianRequest struct {
	Name   *string   `json:"name"`
	Email  *string   `json:"email" binding:"omitempty,email"`
	Phone  *string   `json:"phone"`
	Skills *[]string `json:"skills"`
}

// UpdatePricingRequest replaces a technician's price list. Existing case
// orders keep their snapshot prices.
type UpdatePricingRequest struct {
	Pricing []models.ServicePrice `json:"pricing" binding:"required"`
}

func technicianIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Technician ID must be numeric",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// canManageTechnician reports whether the user is an admin or the technician
// themselves.
func canManageTechnician(user *models.User, technician *models.Technician) bool {
	return user.Role == models.RoleAdmin || technician.UserID == user.ID
}

// ListTechnicians handles GET /api/v1/technicians (admins only)
func ListTechnicians(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can list technicians",
			},
		})
		return
	}

	var technicians []models.Technician
	if err := config.GetDB().Preload("User").Order("name ASC").Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch technicians",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technicians,
	})
}

// CreateTechnician handles POST /api/v1/technicians (admins only)
func CreateTechnician(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can create technicians",
			},
		})
		return
	}

	var req CreateTechnicianRequest
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

	pricing := models.ServicePriceList(req.Pricing)
	if len(pricing) == 0 {
		pricing = services.DefaultPricing()
	}

	db := config.GetDB()
	var technician models.Technician

	err := db.Transaction(func(tx *gorm.DB) error {
		var userID uint
		if req.UserID != nil {
			var account models.User
			if err := tx.First(&account, *req.UserID).Error; err != nil {
				return err
			}
			userID = account.ID
		} else {
			account := models.User{
				Auth0ID: fmt.Sprintf("pending|%s", req.Email),
				Name:    req.Name,
				Email:   req.Email,
				Role:    models.RoleTechnician,
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
			userID = account.ID
		}

		technician = models.Technician{
			UserID:  userID,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Skills:  req.Skills,
			Pricing: pricing,
		}
		return tx.Create(&technician).Error
	})
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TECHNICIAN_EXISTS",
					"message": "A technician with this email or account already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create technician",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    technician,
	})
}

// GetTechnician handles GET /api/v1/technicians/:id - admins or the
// technician themselves
func GetTechnician(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	techID, ok := technicianIDParam(c)
	if !ok {
		return
	}

	var technician models.Technician
	if err := config.GetDB().Preload("User").First(&technician, techID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	if !canManageTechnician(user, &technician) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this technician",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// UpdateTechnician handles PUT /api/v1/technicians/:id - admins or the
// technician themselves
func UpdateTechnician(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	techID, ok := technicianIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, techID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	if !canManageTechnician(user, &technician) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to update this technician",
			},
		})
		return
	}

	var req UpdateTechnicianRequest
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

	if req.Name != nil {
		technician.Name = *req.Name
	}
	if req.Email != nil {
		technician.Email = *req.Email
	}
	if req.Phone != nil {
		technician.Phone = *req.Phone
	}
	if req.Skills != nil {
		technician.Skills = *req.Skills
	}

	if err := db.Save(&technician).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update technician",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// UpdateTechnicianPricing handles PUT /api/v1/technicians/:id/pricing.
// Replacing the price list never rewrites the snapshot prices on existing
// case orders.
func UpdateTechnicianPricing(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	techID, ok := technicianIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, techID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	if !canManageTechnician(user, &technician) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to update this price list",
			},
		})
		return
	}

	var req UpdatePricingRequest
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

	technician.Pricing = req.Pricing
	if err := db.Save(&technician).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update price list",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

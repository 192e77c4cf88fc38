package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moustafa-dental/dental-lab-api/config"
	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/moustafa-dental/dental-lab-api/services"
	"github.com/moustafa-dental/dental-lab-api/utils"
)

// OrderRequest is one order line item in a create-case request
type OrderRequest struct {
	ServiceName string   `json:"service_name" binding:"required"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Teeth       []string `json:"teeth"`
}

// CreateCaseRequest represents the request body for creating a case
type CreateCaseRequest struct {
	CaseName     string         `json:"case_name"`
	DueDate      string         `json:"due_date"` // YYYY-MM-DD
	TechnicianID uint           `json:"technician_id"`
	Priority     string         `json:"priority"`
	Doctor       string         `json:"doctor"`
	Branch       string         `json:"branch"`
	Color        *string        `json:"color"`
	Orders       []OrderRequest `json:"orders"`
}

// UpdateCaseRequest represents the request body for the admin-only direct
// case update: reassignment, priority, or the downstream Milled/Delivered
// status set.
type UpdateCaseRequest struct {
	TechnicianID *uint   `json:"technician_id"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	Doctor       *string `json:"doctor"`
	Branch       *string `json:"branch"`
	Color        *string `json:"color"`
}

// AddNoteRequest represents the request body for adding a note to a case
type AddNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

func parseDueDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// presentCase fills in display-only fields before a case is served: derived
// orders for legacy cases with no structured order data, and presigned URLs
// for S3-backed attachments. Nothing here is persisted.
func presentCase(cs *models.Case) {
	if len(cs.Orders) == 0 {
		if derived := services.DeriveOrdersFromCaseName(cs.CaseName); derived != nil {
			cs.Orders = derived
		}
	}
	s3 := services.GetS3Service()
	if s3 == nil {
		return
	}
	for i := range cs.Files {
		if cs.Files[i].S3Key == "" {
			continue
		}
		url, err := s3.GetPresignedURL(cs.Files[i].S3Key)
		if err != nil {
			log.Printf("failed to presign %s: %v", cs.Files[i].S3Key, err)
			continue
		}
		cs.Files[i].URL = url
	}
}

// caseIDParam parses the :id URL parameter. Returns 0 and responds on error.
func caseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Case ID must be numeric",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// CreateCase handles POST /api/v1/cases - opens a new case (admins only)
func CreateCase(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can create cases",
			},
		})
		return
	}

	var req CreateCaseRequest
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

	dueDate, _ := parseDueDate(req.DueDate)

	orders := make([]models.Order, 0, len(req.Orders))
	for _, o := range req.Orders {
		quantity := o.Quantity
		if quantity == 0 {
			quantity = 1
		}
		orders = append(orders, models.Order{
			ServiceName: o.ServiceName,
			Price:       o.Price,
			Quantity:    quantity,
			Teeth:       o.Teeth,
		})
	}

	engine := services.NewWorkflowService(config.GetDB())
	created, err := engine.CreateCase(services.CreateCaseInput{
		CaseName:     req.CaseName,
		DueDate:      dueDate,
		TechnicianID: req.TechnicianID,
		Priority:     req.Priority,
		Doctor:       req.Doctor,
		Branch:       req.Branch,
		Color:        req.Color,
		Orders:       orders,
	}, actorFor(user))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	presentCase(created)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

// ListCases handles GET /api/v1/cases - admins see all cases, technicians
// only the ones assigned to them
func ListCases(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Technician").Order("created_at DESC")

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

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if branch := c.Query("branch"); branch != "" {
		query = query.Where("branch = ?", branch)
	}

	var cases []models.Case
	if err := query.Find(&cases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch cases",
			},
		})
		return
	}

	for i := range cases {
		presentCase(&cases[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cases,
	})
}

// GetCase handles GET /api/v1/cases/:id
func GetCase(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var caseItem models.Case
	if err := db.Preload("Technician").First(&caseItem, caseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	if user.Role == models.RoleTechnician {
		var technician models.Technician
		if err := db.Where("user_id = ?", user.ID).First(&technician).Error; err != nil || technician.ID != caseItem.TechnicianID {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You do not have permission to view this case",
				},
			})
			return
		}
	}

	presentCase(&caseItem)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    caseItem,
	})
}

// UpdateCase handles PATCH /api/v1/cases/:id - admin-only direct updates:
// technician reassignment, the Milled/Delivered status set, and descriptive
// fields
func UpdateCase(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can update cases directly",
			},
		})
		return
	}

	var req UpdateCaseRequest
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

	engine := services.NewWorkflowService(config.GetDB())
	actor := actorFor(user)

	var updated *models.Case
	var err error

	if req.TechnicianID != nil {
		updated, err = engine.Reassign(caseID, actor, *req.TechnicianID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
	}
	if req.Status != nil {
		updated, err = engine.SetStatus(caseID, actor, *req.Status)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
	}

	// Descriptive fields are not part of the workflow; save them directly.
	if req.Priority != nil || req.Doctor != nil || req.Branch != nil || req.Color != nil {
		db := config.GetDB()
		var caseItem models.Case
		if err := db.First(&caseItem, caseID).Error; err != nil {
			respondWorkflowError(c, services.ErrNotFound)
			return
		}
		if req.Priority != nil {
			caseItem.Priority = *req.Priority
		}
		if req.Doctor != nil {
			caseItem.Doctor = *req.Doctor
		}
		if req.Branch != nil {
			caseItem.Branch = *req.Branch
		}
		if req.Color != nil {
			caseItem.Color = req.Color
		}
		if err := db.Save(&caseItem).Error; err != nil {
			respondWorkflowError(c, &services.PersistenceError{Err: err})
			return
		}
		updated = &caseItem
	}

	if updated == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "No updatable fields supplied",
			},
		})
		return
	}

	presentCase(updated)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// AcceptCase handles POST /api/v1/cases/:id/accept - the assigned technician
// takes a New case into In Progress
func AcceptCase(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	engine := services.NewWorkflowService(config.GetDB())
	updated, err := engine.Accept(caseID, actorFor(user))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	presentCase(updated)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// collectUploadedFiles reads the multipart "files" field, validates each
// attachment and stores it in S3. Responds and returns ok=false on failure.
func collectUploadedFiles(c *gin.Context, user *models.User) ([]models.CaseFile, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all: treat as zero files and let the
		// engine decide whether that is acceptable.
		return nil, true
	}

	headers := form.File["files"]
	s3 := services.GetS3Service()

	files := make([]models.CaseFile, 0, len(headers))
	for _, fh := range headers {
		if err := utils.ValidateAttachment(fh); err != nil {
			uploadErr := err.(*utils.FileUploadError)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return nil, false
		}

		var s3Key string
		if s3 != nil {
			s3Key, err = s3.UploadFile(fh)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "UPLOAD_FAILED",
						"message": "Failed to store attachment",
					},
				})
				return nil, false
			}
		}

		files = append(files, models.CaseFile{
			ID:             utils.NewFileID(fh.Filename),
			Name:           fh.Filename,
			S3Key:          s3Key,
			UploadedByID:   user.ID,
			UploadedByName: user.Name,
		})
	}

	return files, true
}

// SubmitForReview handles POST /api/v1/cases/:id/submit - the assigned
// technician submits finished work with at least one attachment
func SubmitForReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	files, ok := collectUploadedFiles(c, user)
	if !ok {
		return
	}

	engine := services.NewWorkflowService(config.GetDB())
	updated, err := engine.SubmitForReview(caseID, actorFor(user), files)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	presentCase(updated)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// ApproveCase handles POST /api/v1/cases/:id/approve - an admin approves
// reviewed work, finishing the case
func ApproveCase(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	engine := services.NewWorkflowService(config.GetDB())
	updated, err := engine.Approve(caseID, actorFor(user))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	presentCase(updated)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// RequestRevision handles POST /api/v1/cases/:id/revision - an admin sends
// reviewed work back with mandatory notes and optional reference files
func RequestRevision(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	noteText := c.PostForm("notes")
	files, ok := collectUploadedFiles(c, user)
	if !ok {
		return
	}

	engine := services.NewWorkflowService(config.GetDB())
	updated, err := engine.RequestRevision(caseID, actorFor(user), noteText, files)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	presentCase(updated)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// AddNote handles POST /api/v1/cases/:id/notes
func AddNote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req AddNoteRequest
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

	engine := services.NewWorkflowService(config.GetDB())
	updated, err := engine.AddNote(caseID, actorFor(user), req.Content)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	presentCase(updated)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    updated,
	})
}

// UploadCaseFiles handles POST /api/v1/cases/:id/files - attaches files
// outside of a status transition
func UploadCaseFiles(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	files, ok := collectUploadedFiles(c, user)
	if !ok {
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_ATTACHMENT",
				"message": "No files supplied",
			},
		})
		return
	}

	engine := services.NewWorkflowService(config.GetDB())
	actor := actorFor(user)

	var updated *models.Case
	var err error
	for _, f := range files {
		updated, err = engine.AddFile(caseID, actor, f)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
	}

	presentCase(updated)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    updated,
	})
}

// RemoveCaseFile handles DELETE /api/v1/cases/:id/files/:fileId - detaches a
// file (admins only)
func RemoveCaseFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}
	fileID := c.Param("fileId")

	// Look the file up first so its S3 object can be cleaned up after the
	// engine confirms the removal.
	db := config.GetDB()
	var caseItem models.Case
	var s3Key string
	if err := db.First(&caseItem, caseID).Error; err == nil {
		for _, f := range caseItem.Files {
			if f.ID == fileID {
				s3Key = f.S3Key
				break
			}
		}
	}

	engine := services.NewWorkflowService(db)
	updated, err := engine.RemoveFile(caseID, actorFor(user), fileID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	if s3Key != "" {
		if s3 := services.GetS3Service(); s3 != nil {
			if err := s3.DeleteFile(s3Key); err != nil {
				log.Printf("failed to delete %s from S3: %v", s3Key, err)
			}
		}
	}

	presentCase(updated)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

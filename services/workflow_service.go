package services

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/moustafa-dental/dental-lab-api/models"
	"gorm.io/gorm"
)

// Actor is the already-authenticated user performing a workflow operation.
// The engine trusts it; credential checks happen in the auth middleware.
type Actor struct {
	ID   uint
	Name string
	Role string
}

// CreateCaseInput carries the fields an admin supplies when opening a case.
type CreateCaseInput struct {
	CaseName     string
	DueDate      time.Time
	TechnicianID uint
	Priority     string
	Doctor       string
	Branch       string
	Color        *string
	Orders       []models.Order
	Notes        []models.CaseNote
}

// WorkflowService is the case workflow engine. Every operation validates the
// actor and the case's current status first, computes the full new state in
// memory (case, audit entries, notifications), and only then writes it out.
// Validation failures leave the case untouched; storage failures come back as
// *PersistenceError so callers can tell them apart.
type WorkflowService struct {
	db *gorm.DB
}

// NewWorkflowService creates a workflow engine backed by the given database.
func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db}
}

var noteSeq uint64

func nextNoteID() string {
	return fmt.Sprintf("note-%d", atomic.AddUint64(&noteSeq, 1))
}

// CreateCase opens a new case in status New, writes the creation audit entry
// and notifies the assigned technician.
func (s *WorkflowService) CreateCase(input CreateCaseInput, actor Actor) (*models.Case, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenTransition
	}
	if input.CaseName == "" || input.DueDate.IsZero() || input.TechnicianID == 0 || len(input.Orders) == 0 {
		return nil, ErrIncompleteCase
	}

	var technician models.Technician
	if err := s.db.First(&technician, input.TechnicianID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Err: err}
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	newCase := models.Case{
		CaseName:     input.CaseName,
		DueDate:      input.DueDate,
		TechnicianID: input.TechnicianID,
		Status:       models.StatusNew,
		Priority:     priority,
		Doctor:       input.Doctor,
		Branch:       input.Branch,
		Color:        input.Color,
		Orders:       input.Orders,
		Notes:        input.Notes,
		Files:        models.FileList{},
		ActivityLog:  models.AuditLogList{CreationAudit(actor.Name, technician.Name)},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newCase).Error; err != nil {
			return err
		}
		notification := models.Notification{
			Message:     fmt.Sprintf("New case %q has been assigned to you.", newCase.CaseName),
			Link:        fmt.Sprintf("/technician/cases/%d", newCase.ID),
			RecipientID: &technician.UserID,
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return &newCase, nil
}

// Accept moves a New case to In Progress. Only the assigned technician may
// accept.
func (s *WorkflowService) Accept(caseID uint, actor Actor) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if before.Status != models.StatusNew {
		return nil, ErrForbiddenTransition
	}
	if err := s.requireAssignedTechnician(before, actor); err != nil {
		return nil, err
	}

	after := *before
	after.Status = models.StatusInProgress
	return s.apply(before, &after, actor)
}

// SubmitForReview moves an In Progress or Needs Edit case to Ready for
// Review. The assigned technician must attach at least one new file.
func (s *WorkflowService) SubmitForReview(caseID uint, actor Actor, files []models.CaseFile) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if before.Status != models.StatusInProgress && before.Status != models.StatusNeedsEdit {
		return nil, ErrForbiddenTransition
	}
	if err := s.requireAssignedTechnician(before, actor); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrMissingAttachment
	}

	after := *before
	after.Status = models.StatusReadyForReview
	after.Files = appendFiles(before.Files, files)
	return s.apply(before, &after, actor)
}

// Approve moves a Ready for Review case to Finished and stamps completedAt.
// Admin only. Re-approving a finished case is rejected, so completedAt is set
// exactly once.
func (s *WorkflowService) Approve(caseID uint, actor Actor) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin || before.Status != models.StatusReadyForReview {
		return nil, ErrForbiddenTransition
	}

	now := time.Now()
	after := *before
	after.Status = models.StatusFinished
	after.CompletedAt = &now
	return s.apply(before, &after, actor)
}

// RequestRevision moves a Ready for Review case to Needs Edit. Admin only;
// the note text is mandatory, reference files are optional.
func (s *WorkflowService) RequestRevision(caseID uint, actor Actor, noteText string, files []models.CaseFile) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin || before.Status != models.StatusReadyForReview {
		return nil, ErrForbiddenTransition
	}
	if strings.TrimSpace(noteText) == "" {
		return nil, ErrMissingNotes
	}

	after := *before
	after.Status = models.StatusNeedsEdit
	after.Notes = append(append(models.NoteList{}, before.Notes...), models.CaseNote{
		ID:         nextNoteID(),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Content:    "Revision Request: " + noteText,
		Timestamp:  time.Now(),
	})
	after.Files = appendFiles(before.Files, files)
	return s.apply(before, &after, actor)
}

// Reassign hands the case to a different technician. Admin only, any
// non-delivered status; the status itself is unchanged.
func (s *WorkflowService) Reassign(caseID uint, actor Actor, technicianID uint) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin || before.Status == models.StatusDelivered {
		return nil, ErrForbiddenTransition
	}

	var technician models.Technician
	if err := s.db.First(&technician, technicianID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Err: err}
	}

	after := *before
	after.TechnicianID = technicianID
	return s.apply(before, &after, actor)
}

// AddNote appends a note to the case. Admins and the assigned technician may
// comment; the audit entry quotes the first 40 characters.
func (s *WorkflowService) AddNote(caseID uint, actor Actor, content string) (*models.Case, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMissingNotes
	}
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if before.Status == models.StatusDelivered {
		return nil, ErrForbiddenTransition
	}
	if err := s.requireAdminOrAssigned(before, actor); err != nil {
		return nil, err
	}

	after := *before
	after.Notes = append(append(models.NoteList{}, before.Notes...), models.CaseNote{
		ID:         nextNoteID(),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Content:    content,
		Timestamp:  time.Now(),
	})
	return s.apply(before, &after, actor)
}

// AddFile attaches a file to the case. Admins and the assigned technician
// may attach.
func (s *WorkflowService) AddFile(caseID uint, actor Actor, file models.CaseFile) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if before.Status == models.StatusDelivered {
		return nil, ErrForbiddenTransition
	}
	if err := s.requireAdminOrAssigned(before, actor); err != nil {
		return nil, err
	}

	after := *before
	after.Files = appendFiles(before.Files, []models.CaseFile{file})
	return s.apply(before, &after, actor)
}

// RemoveFile detaches a file from the case. Admin only.
func (s *WorkflowService) RemoveFile(caseID uint, actor Actor, fileID string) (*models.Case, error) {
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin || before.Status == models.StatusDelivered {
		return nil, ErrForbiddenTransition
	}

	kept := make(models.FileList, 0, len(before.Files))
	for _, f := range before.Files {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(before.Files) {
		return nil, ErrNotFound
	}

	after := *before
	after.Files = kept
	return s.apply(before, &after, actor)
}

// SetStatus is the admin-only direct status update used for the downstream
// milling pipeline: Finished -> Milled -> Delivered. No other direct moves
// are allowed.
func (s *WorkflowService) SetStatus(caseID uint, actor Actor, status string) (*models.Case, error) {
	if !models.ValidStatus(status) {
		return nil, ErrForbiddenTransition
	}
	before, err := s.loadCase(caseID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenTransition
	}

	allowed := (before.Status == models.StatusFinished && status == models.StatusMilled) ||
		(before.Status == models.StatusMilled && status == models.StatusDelivered)
	if !allowed {
		return nil, ErrForbiddenTransition
	}

	after := *before
	after.Status = status
	return s.apply(before, &after, actor)
}

// apply derives audit entries from the before/after pair, appends them to the
// existing history and persists the result. The activity log only ever grows.
func (s *WorkflowService) apply(before, after *models.Case, actor Actor) (*models.Case, error) {
	entries := DeriveAudit(before, after, actor.Name, s.technicianName)
	after.ActivityLog = append(append(models.AuditLogList{}, before.ActivityLog...), entries...)

	if err := s.db.Save(after).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return after, nil
}

func (s *WorkflowService) loadCase(caseID uint) (*models.Case, error) {
	var c models.Case
	if err := s.db.First(&c, caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Err: err}
	}
	return &c, nil
}

// requireAssignedTechnician checks that the actor is a technician and is the
// one the case is assigned to.
func (s *WorkflowService) requireAssignedTechnician(c *models.Case, actor Actor) error {
	if actor.Role != models.RoleTechnician {
		return ErrForbiddenTransition
	}
	var technician models.Technician
	if err := s.db.First(&technician, c.TechnicianID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return &PersistenceError{Err: err}
	}
	if technician.UserID != actor.ID {
		return ErrForbiddenTransition
	}
	return nil
}

func (s *WorkflowService) requireAdminOrAssigned(c *models.Case, actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	return s.requireAssignedTechnician(c, actor)
}

// technicianName resolves a technician id for audit text.
func (s *WorkflowService) technicianName(id uint) string {
	if id == 0 {
		return "Unassigned"
	}
	var technician models.Technician
	if err := s.db.First(&technician, id).Error; err != nil {
		return "Unassigned"
	}
	return technician.Name
}

func appendFiles(existing models.FileList, added []models.CaseFile) models.FileList {
	out := make(models.FileList, 0, len(existing)+len(added))
	out = append(out, existing...)
	out = append(out, added...)
	return out
}

package services

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/moustafa-dental/dental-lab-api/models"
)

var auditSeq uint64

// nextAuditID returns a process-unique id for an audit log entry. Uniqueness
// within a single case's log is what keeps display order stable.
func nextAuditID(suffix string) string {
	return fmt.Sprintf("log-%d-%s", atomic.AddUint64(&auditSeq, 1), suffix)
}

// noteAuditPreview is how much of a note is quoted in its audit entry.
const noteAuditPreview = 40

// TechnicianNamer resolves a technician id to a display name for audit text.
type TechnicianNamer func(id uint) string

// DeriveAudit compares a case before and after a mutation and produces the
// audit entries describing what changed. Entries come out in a fixed order:
// status change, technician reassignment, newest note, file additions, file
// removals. The function never touches its inputs; callers append the result
// to the existing log.
func DeriveAudit(before, after *models.Case, actorName string, techName TechnicianNamer) []models.AuditLog {
	var entries []models.AuditLog
	now := time.Now()

	if before.Status != after.Status {
		entries = append(entries, models.AuditLog{
			ID:         nextAuditID("status"),
			Timestamp:  now,
			Activity:   fmt.Sprintf("changed status from %q to %q", before.Status, after.Status),
			AuthorName: actorName,
			Type:       models.AuditStatusChange,
		})
	}

	if before.TechnicianID != after.TechnicianID {
		entries = append(entries, models.AuditLog{
			ID:         nextAuditID("tech"),
			Timestamp:  now,
			Activity:   fmt.Sprintf("reassigned case from %s to %s", techName(before.TechnicianID), techName(after.TechnicianID)),
			AuthorName: actorName,
			Type:       models.AuditGeneral,
		})
	}

	if len(after.Notes) > len(before.Notes) {
		newNote := after.Notes[len(after.Notes)-1]
		entries = append(entries, models.AuditLog{
			ID:         nextAuditID("note"),
			Timestamp:  now,
			Activity:   fmt.Sprintf("added a note: %q", truncateNote(newNote.Content)),
			AuthorName: newNote.AuthorName,
			Type:       models.AuditNote,
		})
	}

	for _, f := range after.Files {
		if !containsFile(before.Files, f.ID) {
			entries = append(entries, models.AuditLog{
				ID:         nextAuditID("file-add"),
				Timestamp:  now,
				Activity:   fmt.Sprintf("added a file: %s", f.Name),
				AuthorName: actorName,
				Type:       models.AuditFileChange,
			})
		}
	}
	for _, f := range before.Files {
		if !containsFile(after.Files, f.ID) {
			entries = append(entries, models.AuditLog{
				ID:         nextAuditID("file-remove"),
				Timestamp:  now,
				Activity:   fmt.Sprintf("removed a file: %s", f.Name),
				AuthorName: actorName,
				Type:       models.AuditFileChange,
			})
		}
	}

	return entries
}

// CreationAudit builds the mandatory first entry of a case's activity log.
func CreationAudit(actorName, technicianName string) models.AuditLog {
	return models.AuditLog{
		ID:         nextAuditID("creation"),
		Timestamp:  time.Now(),
		Activity:   fmt.Sprintf("created the case and assigned it to %s.", technicianName),
		AuthorName: actorName,
		Type:       models.AuditCreation,
	}
}

func truncateNote(content string) string {
	runes := []rune(content)
	if len(runes) <= noteAuditPreview {
		return content
	}
	return string(runes[:noteAuditPreview]) + "..."
}

func containsFile(files []models.CaseFile, id string) bool {
	for _, f := range files {
		if f.ID == id {
			return true
		}
	}
	return false
}

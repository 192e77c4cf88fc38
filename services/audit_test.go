package services

import (
	"strings"
	"testing"

	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/stretchr/testify/assert"
)

func namerFor(names map[uint]string) TechnicianNamer {
	return func(id uint) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "Unassigned"
	}
}

func TestDeriveAuditNoChange(t *testing.T) {
	before := &models.Case{Status: models.StatusNew, TechnicianID: 1}
	after := &models.Case{Status: models.StatusNew, TechnicianID: 1}

	entries := DeriveAudit(before, after, "Dr Moustafa", namerFor(nil))
	assert.Empty(t, entries)
}

func TestDeriveAuditOrdering(t *testing.T) {
	before := &models.Case{
		Status:       models.StatusInProgress,
		TechnicianID: 1,
		Files: []models.CaseFile{
			{ID: "file-a", Name: "old-scan.stl"},
		},
	}
	after := &models.Case{
		Status:       models.StatusReadyForReview,
		TechnicianID: 2,
		Notes: []models.CaseNote{
			{ID: "note-1", Content: "resubmitted after polishing", AuthorName: "Sara"},
		},
		Files: []models.CaseFile{
			{ID: "file-b", Name: "crown.stl"},
		},
	}

	entries := DeriveAudit(before, after, "Sara", namerFor(map[uint]string{1: "Sara", 2: "Omar"}))

	// Fixed order: status, technician, note, file add, file remove
	assert.Len(t, entries, 5)
	assert.Equal(t, models.AuditStatusChange, entries[0].Type)
	assert.Contains(t, entries[0].Activity, `"In Progress"`)
	assert.Contains(t, entries[0].Activity, `"Ready for Review"`)

	assert.Equal(t, models.AuditGeneral, entries[1].Type)
	assert.Contains(t, entries[1].Activity, "from Sara to Omar")

	assert.Equal(t, models.AuditNote, entries[2].Type)
	assert.Equal(t, "Sara", entries[2].AuthorName)

	assert.Equal(t, models.AuditFileChange, entries[3].Type)
	assert.Contains(t, entries[3].Activity, "added a file: crown.stl")

	assert.Equal(t, models.AuditFileChange, entries[4].Type)
	assert.Contains(t, entries[4].Activity, "removed a file: old-scan.stl")
}

func TestDeriveAuditNotePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "short note quoted verbatim",
			content: "shade A2 confirmed",
			want:    `"shade A2 confirmed"`,
		},
		{
			name:    "exactly forty runes not truncated",
			content: strings.Repeat("a", 40),
			want:    `"` + strings.Repeat("a", 40) + `"`,
		},
		{
			name:    "long note truncated with ellipsis",
			content: strings.Repeat("b", 41),
			want:    `"` + strings.Repeat("b", 40) + `..."`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := &models.Case{}
			after := &models.Case{
				Notes: []models.CaseNote{{ID: "note-1", Content: tt.content, AuthorName: "Sara"}},
			}
			entries := DeriveAudit(before, after, "Sara", namerFor(nil))
			assert.Len(t, entries, 1)
			assert.Contains(t, entries[0].Activity, tt.want)
		})
	}
}

func TestDeriveAuditOnlyNewestNote(t *testing.T) {
	before := &models.Case{
		Notes: []models.CaseNote{{ID: "note-1", Content: "first", AuthorName: "Sara"}},
	}
	after := &models.Case{
		Notes: []models.CaseNote{
			{ID: "note-1", Content: "first", AuthorName: "Sara"},
			{ID: "note-2", Content: "second", AuthorName: "Dr Moustafa"},
		},
	}

	entries := DeriveAudit(before, after, "Dr Moustafa", namerFor(nil))
	assert.Len(t, entries, 1)
	assert.Contains(t, entries[0].Activity, `"second"`)
	assert.Equal(t, "Dr Moustafa", entries[0].AuthorName)
}

func TestDeriveAuditDoesNotMutateInputs(t *testing.T) {
	before := &models.Case{Status: models.StatusNew, ActivityLog: []models.AuditLog{{ID: "log-0-creation"}}}
	after := &models.Case{Status: models.StatusInProgress, ActivityLog: []models.AuditLog{{ID: "log-0-creation"}}}

	DeriveAudit(before, after, "Sara", namerFor(nil))

	assert.Len(t, before.ActivityLog, 1)
	assert.Len(t, after.ActivityLog, 1)
	assert.Equal(t, models.StatusNew, before.Status)
}

func TestCreationAudit(t *testing.T) {
	entry := CreationAudit("Dr Moustafa", "Sara")

	assert.Equal(t, models.AuditCreation, entry.Type)
	assert.Equal(t, "Dr Moustafa", entry.AuthorName)
	assert.Equal(t, "created the case and assigned it to Sara.", entry.Activity)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestAuditIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		entry := CreationAudit("Dr Moustafa", "Sara")
		assert.False(t, seen[entry.ID], "duplicate audit id %s", entry.ID)
		seen[entry.ID] = true
	}
}

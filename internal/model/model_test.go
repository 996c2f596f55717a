package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"JournalInfo", &JournalInfo{}, "journal_infos"},
		{"Session", &Session{}, "sessions"},
		{"Placement", &Placement{}, "placements"},
		{"Attachment", &Attachment{}, "attachments"},
		{"Upload", &Upload{}, "uploads"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelsCoverEveryTable(t *testing.T) {
	assert.Len(t, DatabaseModels, 5)
}

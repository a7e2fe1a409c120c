package azdo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapThreads_FullThread(t *testing.T) {
	threads := []Thread{{
		ID:     42,
		Status: "active",
		ThreadContext: &ThreadContext{
			FilePath:       "/src/app.go",
			RightFileStart: &Position{Line: 10, Offset: 1},
			RightFileEnd:   &Position{Line: 12, Offset: 5},
		},
		Comments: []Comment{{
			Content:       "Possible bug here",
			Author:        IdentityRef{DisplayName: "Project Build Service", UniqueName: "build@example.com"},
			PublishedDate: "2026-08-20T10:30:00Z",
		}},
		PublishedDate: "2026-08-20T10:30:00Z",
	}}

	mapped := MapThreads(threads)
	require.Len(t, mapped, 1)

	d := mapped[0]
	assert.Equal(t, 42, d.ID)
	assert.Equal(t, "/src/app.go", d.File)
	assert.Equal(t, 10, d.RightFileStart)
	assert.Equal(t, 12, d.RightFileEnd)
	assert.Equal(t, 0, d.LeftFileStart)
	assert.Equal(t, "Possible bug here", d.Content)
	assert.Equal(t, "build@example.com", d.AuthorUniqueName)
	assert.Equal(t, "Project Build Service", d.AuthorDisplayName)
	assert.True(t, d.Open())
	assert.Equal(t, time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC), d.PublishedAt)
}

func TestMapThreads_GeneralThreadHasNoFile(t *testing.T) {
	mapped := MapThreads([]Thread{{
		ID:       7,
		Status:   "closed",
		Comments: []Comment{{Content: "summary text"}},
	}})

	require.Len(t, mapped, 1)
	assert.Empty(t, mapped[0].File)
	assert.Empty(t, mapped[0].LineEndpoints())
	assert.False(t, mapped[0].Open())
}

func TestMapThreads_DeletedFirstCommentMarksThreadDeleted(t *testing.T) {
	mapped := MapThreads([]Thread{{
		ID:       3,
		Status:   "active",
		Comments: []Comment{{Content: "gone", IsDeleted: true}},
	}})

	require.Len(t, mapped, 1)
	assert.False(t, mapped[0].Open())
}

func TestParseAPITime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"rfc3339", "2026-08-20T10:30:00Z", false},
		{"fractional seconds", "2026-08-20T10:30:00.1234567Z", false},
		{"empty", "", true},
		{"garbage", "yesterday-ish", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAPITime(tt.input)
			assert.Equal(t, tt.zero, got.IsZero())
		})
	}
}

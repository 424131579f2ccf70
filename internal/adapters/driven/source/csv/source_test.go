package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

func writeTable(t *testing.T, dir, table, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, table+Extension), []byte(content), 0600))
}

func TestSource_Read(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "grades", "user_id,course_name,grade\n1,CMPSC461,A\n2,\"CMPSC 311, Intro\",B+\n")
	src := New(dir)

	records, err := src.Read(context.Background(), "grades")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "grades", records[0].Table)
	assert.Equal(t, 0, records[0].RowID)
	assert.Equal(t, []string{"user_id", "course_name", "grade"}, records[0].Columns)
	assert.Equal(t, "CMPSC461", records[0].Get("course_name"))
	assert.Equal(t, 1, records[1].RowID)
	assert.Equal(t, "CMPSC 311, Intro", records[1].Get("course_name"))
	assert.Equal(t, "user_id: 2\ncourse_name: CMPSC 311, Intro\ngrade: B+", records[1].Text())
}

func TestSource_Read_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, records []domain.Record)
	}{
		{
			name:    "empty file",
			content: "",
			check: func(t *testing.T, records []domain.Record) {
				assert.NotNil(t, records)
				assert.Empty(t, records)
			},
		},
		{
			name:    "header only",
			content: "id,name\n",
			check: func(t *testing.T, records []domain.Record) {
				assert.Empty(t, records)
			},
		},
		{
			name:    "byte order mark",
			content: "\ufeffid,name\n7,Ada\n",
			check: func(t *testing.T, records []domain.Record) {
				require.Len(t, records, 1)
				assert.Equal(t, "7", records[0].Get("id"))
			},
		},
		{
			name:    "short row padded",
			content: "id,name,email\n7,Ada\n",
			check: func(t *testing.T, records []domain.Record) {
				require.Len(t, records, 1)
				v, ok := records[0].Values["email"]
				assert.True(t, ok)
				assert.Equal(t, "", v)
			},
		},
		{
			name:    "long row truncated",
			content: "id\n7,extra\n",
			check: func(t *testing.T, records []domain.Record) {
				require.Len(t, records, 1)
				assert.Len(t, records[0].Values, 1)
			},
		},
		{
			name:    "multiline cell",
			content: "id,full_text\n1,\"line one\nline two\"\n",
			check: func(t *testing.T, records []domain.Record) {
				require.Len(t, records, 1)
				assert.True(t, strings.Contains(records[0].Get("full_text"), "\n"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTable(t, dir, "users", tt.content)

			records, err := New(dir).Read(context.Background(), "users")
			require.NoError(t, err)
			tt.check(t, records)
		})
	}
}

func TestSource_Read_Errors(t *testing.T) {
	dir := t.TempDir()
	src := New(dir)

	_, err := src.Read(context.Background(), "users")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = src.Read(context.Background(), "../users")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	writeTable(t, dir, "courses", "id\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Read(ctx, "courses")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_ExistsLocation(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "courses", "id\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "grades"+Extension), 0700))
	src := New(dir)

	assert.True(t, src.Exists("courses"))
	assert.False(t, src.Exists("users"))
	assert.False(t, src.Exists("grades"), "directories are not tables")
	assert.Equal(t, filepath.Join(dir, "courses.csv"), src.Location("courses"))
	assert.Equal(t, dir, src.Dir())
}

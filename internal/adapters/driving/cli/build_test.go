package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

func TestBuildCmd_SingleTable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "build", "grades")

	require.NoError(t, err)
	assert.Equal(t, []string{"grades"}, ts.build.built)
	assert.Contains(t, out, "Built grades: 3 documents")
}

func TestBuildCmd_UnknownTable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "build", "user_settings")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, ts.build.built)
}

func TestBuildCmd_All(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: []string{"build"}},
		{name: "all flag", args: []string{"build", "--all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()
			ts.build.reports = []driving.BuildReport{
				{Name: "users", Documents: 12},
				{Name: "courses", Skipped: true},
			}

			out, err := execute(t, tt.args...)

			require.NoError(t, err)
			assert.Contains(t, out, "users")
			assert.Contains(t, out, "12 documents")
			assert.Contains(t, out, "skipped (not exported)")
		})
	}
}

func TestBuildCmd_AllReportsFailures(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	boom := errors.New("embedding down")
	ts.build.reports = []driving.BuildReport{{Name: "grades", Err: boom}}
	ts.build.err = boom

	out, err := execute(t, "build")

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, out, "failed: embedding down")
}

func TestFormatReport(t *testing.T) {
	tests := []struct {
		name   string
		report driving.BuildReport
		want   string
	}{
		{name: "built", report: driving.BuildReport{Name: "users", Documents: 4}, want: "4 documents"},
		{name: "skipped", report: driving.BuildReport{Name: "users", Skipped: true}, want: "skipped"},
		{name: "failed", report: driving.BuildReport{Name: "users", Err: errors.New("x")}, want: "failed: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatReport(tt.report)
			assert.Contains(t, got, "users")
			assert.Contains(t, got, tt.want)
		})
	}
}

package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCommitments(t *testing.T) {
	commitments := newFakeCommitmentRepo()
	seedSeries(t, commitments, "g1", "Arriendo", "2025-11-01", 3)
	s := NewExportService(commitments, newTestEngine(commitments))

	data, name, apierr := s.ExportCommitments(context.Background(), 2025)
	require.Nil(t, apierr)
	assert.Equal(t, "compromisos_2025.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus the two 2025 instances")
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Arriendo", rows[1][0])
	assert.Equal(t, "2025-11-01", rows[1][4])
	assert.Equal(t, "Mensual", rows[1][5])
	assert.Equal(t, "pending", rows[1][6])
	assert.Equal(t, "g1", rows[2][7])

	_, name, apierr = s.ExportCommitments(context.Background(), 0)
	require.Nil(t, apierr)
	assert.Equal(t, "compromisos.xlsx", name)
}

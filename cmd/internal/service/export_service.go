package service

import (
	"bytes"
	"context"
	"fmt"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
	"github.com/xuri/excelize/v2"
)

const (
	ExportSheetName = "Compromisos"
	MIMEXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"Concepto", "Empresa", "Beneficiario", "Monto", "Fecha de vencimiento",
	"Periodicidad", "Estado", "Grupo recurrente",
}

type DefaultExportService struct {
	CommitmentRepo CommitmentRepository
	Engine         *recurring.Engine
}

func NewExportService(commitmentRepo CommitmentRepository, engine *recurring.Engine) *DefaultExportService {
	return &DefaultExportService{
		CommitmentRepo: commitmentRepo,
		Engine:         engine,
	}
}

// ExportCommitments renders the commitments of a year as an xlsx workbook.
// A zero year exports everything.
func (s *DefaultExportService) ExportCommitments(ctx context.Context, year int) ([]byte, string, apierror.ErrorResponse) {
	commitments, err := s.CommitmentRepo.FindAll(ctx, &entity.CommitmentFilter{Year: year})
	if err != nil {
		log.Errorf("failed to fetch commitments for export: %v", err)
		return nil, "", apierror.InternalServerError
	}

	data, err := s.renderWorkbook(commitments)
	if err != nil {
		log.Errorf("failed to render commitments workbook: %v", err)
		return nil, "", apierror.InternalServerError
	}

	name := "compromisos.xlsx"
	if year > 0 {
		name = fmt.Sprintf("compromisos_%d.xlsx", year)
	}
	return data, name, nil
}

func (s *DefaultExportService) renderWorkbook(commitments []*entity.Commitment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Reuse the default sheet so the workbook has a single tab
	err := f.SetSheetName(f.GetSheetName(0), ExportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err = f.SetCellValue(ExportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err = f.SetCellStyle(ExportSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}

	today := s.Engine.Today()
	for i, c := range commitments {
		row := i + 2
		amount, _ := c.Amount.Float64()
		values := []any{
			c.Concept,
			c.CompanyName,
			c.Beneficiary,
			amount,
			utils.FormatDate(c.DueDate),
			c.Periodicity.Description(),
			string(c.EffectiveStatus(today)),
			c.RecurringGroup.String(),
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err = f.SetCellValue(ExportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err = f.SetColWidth(ExportSheetName, "A", "H", 22); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err = f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

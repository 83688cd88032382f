package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/pkg/export"
)

// ExportFormat enumerates supported pipeline export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title    string
	Location *time.Location
}

// ExportResult is a rendered export ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Format      ExportFormat
	Data        []byte
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders pipeline rows into downloadable files.
type ExportService struct {
	csv    renderer
	pdf    renderer
	logger *zap.Logger
	cfg    ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(cfg ExportConfig, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Admission Pipeline"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

var pipelineColumns = []export.Column{
	{Header: "Name", Weight: 2.2},
	{Header: "Phone", Weight: 1.4},
	{Header: "Campus", Weight: 1},
	{Header: "Status", Weight: 1.3},
	{Header: "Stage", Weight: 1.3},
	{Header: "Slot Date", Weight: 1.1},
	{Header: "Slot Time", Weight: 0.8},
	{Header: "Applied At", Weight: 1.4},
}

var pipelineHeaders = export.Dataset{Columns: pipelineColumns}.Headers()

// RenderPipeline renders the rows in the requested format. Timestamps use the configured location.
func (s *ExportService) RenderPipeline(entries []models.PipelineEntry, format ExportFormat) (*ExportResult, error) {
	dataset := export.Dataset{
		Title:       s.cfg.Title,
		Columns:     pipelineColumns,
		Rows:        make([][]string, 0, len(entries)),
		GeneratedAt: time.Now().In(s.cfg.Location),
	}
	for _, entry := range entries {
		var slotDate, slotTime string
		if entry.Reservation != nil {
			slotDate, slotTime = entry.Reservation.Date, entry.Reservation.Time
		}
		dataset.Rows = append(dataset.Rows, []string{
			entry.Name,
			entry.Phone,
			entry.Campus,
			string(entry.Status),
			string(entry.Stage),
			slotDate,
			slotTime,
			entry.CreatedAt.In(s.cfg.Location).Format("2006-01-02 15:04"),
		})
	}

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Warn("pipeline export failed", zap.String("format", string(format)), zap.Int("rows", len(entries)), zap.Error(err))
		return nil, err
	}

	return &ExportResult{
		Filename:    s.buildFilename(format),
		ContentType: contentType,
		Format:      format,
		Data:        payload,
	}, nil
}

func (s *ExportService) buildFilename(format ExportFormat) string {
	timestamp := time.Now().In(s.cfg.Location).Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", sanitizeFilename(strings.ToLower(s.cfg.Title)), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

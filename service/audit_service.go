package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/ghost-shift-audit/client"
	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/utils"
)

const (
	minPDFTextChars = 20
	minOCRTextChars = 10
)

// ErrUnreadableSheet is returned when no engine could read any text from an
// uploaded sheet.
var ErrUnreadableSheet = errors.New("sign-in sheet is unreadable")

type OCREngine interface {
	Name() string
	ExtractText(ctx context.Context, imageData []byte) (string, error)
}

type QRDecoder interface {
	DecodeBytes(data []byte) (string, error)
}

type SheetVerifier interface {
	Verify(ctx context.Context, imageData []byte, mimeType string, entries []dto.PaperLogEntry) ([]dto.PaperLogEntry, error)
}

type RosterSource interface {
	Shifts() []dto.DigitalShift
}

type AuditHistory interface {
	Add(ctx context.Context, rec dto.HistoryRecord) error
	UpdateReports(ctx context.Context, id string, reports []dto.DiscrepancyReport) error
}

type AuditTracker interface {
	TrackAudit(ctx context.Context) error
}

// AuditDeps wires the collaborators of an AuditService. Verifier, QR and
// Tracker are optional.
type AuditDeps struct {
	PDF      PDFProcessor
	Primary  OCREngine
	Fallback OCREngine
	QR       QRDecoder
	Verifier SheetVerifier
	Roster   RosterSource
	History  AuditHistory
	Tracker  AuditTracker
}

type AuditService struct {
	reconciler *Reconciler
	deps       AuditDeps
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewAuditService(reconciler *Reconciler, deps AuditDeps, logger *zerolog.Logger) *AuditService {
	return &AuditService{
		reconciler: reconciler,
		deps:       deps,
		logger:     logger,
		now:        time.Now,
	}
}

// ExtractedSheet is the structured result of reading an uploaded sheet.
type ExtractedSheet struct {
	Text     string
	Entries  []dto.PaperLogEntry
	SheetRef string
	Engine   string
	Verified bool
}

// ExtractSheet reads a PDF, PNG or JPEG sign-in sheet into paper log entries.
func (s *AuditService) ExtractSheet(ctx context.Context, filename string, data []byte) (*ExtractedSheet, error) {
	var (
		sheet    ExtractedSheet
		image    []byte
		mimeType string
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, img, engine, err := s.readPDF(ctx, data)
		if err != nil {
			return nil, err
		}
		sheet.Text, sheet.Engine = text, engine
		image, mimeType = img, "image/png"
	case ".png":
		image, mimeType = data, "image/png"
	case ".jpg", ".jpeg":
		image, mimeType = data, "image/jpeg"
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", dto.ErrInvalidRequest, filepath.Ext(filename))
	}

	if sheet.Text == "" && image != nil {
		text, engine, err := s.ocr(ctx, image)
		if err != nil {
			return nil, err
		}
		sheet.Text, sheet.Engine = text, engine
	}
	if strings.TrimSpace(sheet.Text) == "" {
		return nil, ErrUnreadableSheet
	}

	sheet.Entries = utils.ParseSignSheet(sheet.Text)

	if s.deps.QR != nil && image != nil {
		if ref, err := s.deps.QR.DecodeBytes(image); err == nil {
			sheet.SheetRef = ref
		} else if !errors.Is(err, client.ErrNoQRCode) {
			s.logger.Debug().Err(err).Msg("QR decode failed")
		}
	}

	if s.deps.Verifier != nil && image != nil && len(sheet.Entries) > 0 {
		verified, err := s.deps.Verifier.Verify(ctx, image, mimeType, sheet.Entries)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Sheet verification failed, using OCR result")
		} else {
			sheet.Entries = verified
			sheet.Verified = true
		}
	}

	s.logger.Info().
		Str("file", filename).
		Str("engine", sheet.Engine).
		Int("entries", len(sheet.Entries)).
		Bool("verified", sheet.Verified).
		Msg("Sign-in sheet extracted")

	return &sheet, nil
}

// readPDF prefers the embedded text layer and falls back to OCR over the
// page scans. The first page image is returned for QR and verification.
func (s *AuditService) readPDF(ctx context.Context, data []byte) (string, []byte, string, error) {
	if s.deps.PDF == nil {
		return "", nil, "", errors.New("pdf processing is not configured")
	}

	text, err := s.deps.PDF.ExtractText(data)
	if err != nil {
		s.logger.Debug().Err(err).Msg("PDF text extraction failed")
	}

	images, imgErr := s.deps.PDF.ExtractImages(data)
	if imgErr != nil {
		s.logger.Debug().Err(imgErr).Msg("PDF image extraction failed")
	}

	var first []byte
	if len(images) > 0 {
		if first, err = client.EncodePNG(images[0]); err != nil {
			return "", nil, "", err
		}
	}

	if len(strings.TrimSpace(text)) >= minPDFTextChars {
		return text, first, "pdf-text", nil
	}
	if len(images) == 0 {
		return "", nil, "", ErrUnreadableSheet
	}

	var (
		sb     strings.Builder
		engine string
	)
	for i, img := range images {
		encoded := first
		if i > 0 {
			if encoded, err = client.EncodePNG(img); err != nil {
				return "", nil, "", err
			}
		}
		pageText, name, err := s.ocr(ctx, encoded)
		if err != nil {
			s.logger.Warn().Err(err).Int("page", i+1).Msg("OCR failed for PDF page")
			continue
		}
		engine = name
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), first, engine, nil
}

func (s *AuditService) ocr(ctx context.Context, image []byte) (string, string, error) {
	if s.deps.Primary != nil {
		text, err := s.deps.Primary.ExtractText(ctx, image)
		if err == nil && len(strings.TrimSpace(text)) >= minOCRTextChars {
			return text, s.deps.Primary.Name(), nil
		}
		s.logger.Warn().Err(err).Str("engine", s.deps.Primary.Name()).Msg("Primary OCR unusable, falling back")
	}

	if s.deps.Fallback == nil {
		return "", "", ErrUnreadableSheet
	}

	text, err := s.deps.Fallback.ExtractText(ctx, image)
	if err != nil {
		if errors.Is(err, client.ErrNoText) {
			return "", "", ErrUnreadableSheet
		}
		return "", "", fmt.Errorf("%s: %w", s.deps.Fallback.Name(), err)
	}
	return text, s.deps.Fallback.Name(), nil
}

// Scan extracts an uploaded sheet, reconciles it against the current roster
// and records the run in history.
func (s *AuditService) Scan(ctx context.Context, filename string, data []byte) (*dto.AuditResponse, error) {
	sheet, err := s.ExtractSheet(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	var shifts []dto.DigitalShift
	if s.deps.Roster != nil {
		shifts = s.deps.Roster.Shifts()
	}

	reports := s.reconciler.Reconcile(shifts, sheet.Entries)
	summary := dto.Summarize(reports)
	now := s.now()

	resp := &dto.AuditResponse{
		AuditID:        uuid.NewString(),
		SheetRef:       sheet.SheetRef,
		GeminiVerified: sheet.Verified,
		Shifts:         shifts,
		Logs:           sheet.Entries,
		Reports:        reports,
		Summary:        summary,
		ProcessedAt:    now.Format(time.RFC3339),
	}

	if s.deps.History != nil {
		err := s.deps.History.Add(ctx, dto.HistoryRecord{
			ID:          resp.AuditID,
			Timestamp:   now,
			SourceFile:  filename,
			SheetRef:    sheet.SheetRef,
			WorkerCount: summary.WorkerCount,
			IssueCount:  summary.IssueCount,
			Shifts:      shifts,
			Logs:        sheet.Entries,
			Reports:     reports,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("audit_id", resp.AuditID).Msg("Failed to save audit history")
		}
	}
	s.trackAudit(ctx)

	s.logger.Info().
		Str("audit_id", resp.AuditID).
		Int("workers", summary.WorkerCount).
		Int("issues", summary.IssueCount).
		Msg("Audit scan complete")

	return resp, nil
}

// Reconcile runs the engine over caller-supplied records. When an audit ID is
// given, the stored history record is updated with the new reports.
func (s *AuditService) Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.AuditResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reports := s.reconciler.Reconcile(req.Shifts, req.Logs)

	if req.AuditID != "" && s.deps.History != nil {
		if err := s.deps.History.UpdateReports(ctx, req.AuditID, reports); err != nil {
			return nil, fmt.Errorf("failed to update audit %s: %w", req.AuditID, err)
		}
	}
	s.trackAudit(ctx)

	return &dto.AuditResponse{
		AuditID:     req.AuditID,
		Shifts:      req.Shifts,
		Logs:        req.Logs,
		Reports:     reports,
		Summary:     dto.Summarize(reports),
		ProcessedAt: s.now().Format(time.RFC3339),
	}, nil
}

func (s *AuditService) trackAudit(ctx context.Context) {
	if s.deps.Tracker == nil {
		return
	}
	if err := s.deps.Tracker.TrackAudit(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count audit")
	}
}

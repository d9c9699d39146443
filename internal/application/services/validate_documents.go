package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	apperrors "github.com/reglet-dev/rxforge/internal/application/errors"
	"github.com/reglet-dev/rxforge/internal/domain/document"
)

// ValidateDocumentsUseCase decodes and validates payload files.
type ValidateDocumentsUseCase struct {
	decoder  *ResponseDecoder
	readFile func(string) ([]byte, error)
	logger   *slog.Logger
}

// NewValidateDocumentsUseCase creates a new validate use case.
func NewValidateDocumentsUseCase(decoder *ResponseDecoder, logger *slog.Logger) *ValidateDocumentsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateDocumentsUseCase{
		decoder:  decoder,
		readFile: os.ReadFile,
		logger:   logger,
	}
}

// Execute validates every file concurrently. Per-file failures end up in
// the reports; only cancellation fails the whole batch.
func (uc *ValidateDocumentsUseCase) Execute(ctx context.Context, req dto.ValidateRequest) (*dto.ValidateResponse, error) {
	start := time.Now()

	expected := document.KindAny
	if req.Kind != "" {
		k, ok := document.KindByName(req.Kind)
		if !ok {
			return nil, apperrors.NewConfigurationError("kind", fmt.Sprintf("unknown document kind %q", req.Kind), nil)
		}
		expected = k
	}

	reports := make([]dto.DocumentReport, len(req.Paths))
	g, ctx := errgroup.WithContext(ctx)
	if req.MaxConcurrent > 0 {
		g.SetLimit(req.MaxConcurrent)
	}
	for i, path := range req.Paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = uc.validateFile(path, expected)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.ValidateResponse{
		Reports: reports,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(start),
		},
	}, nil
}

func (uc *ValidateDocumentsUseCase) validateFile(path string, expected document.Kind) dto.DocumentReport {
	report := dto.DocumentReport{Path: path}

	data, err := uc.readFile(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	w, err := uc.decoder.Decode(RawResponse{StatusCode: 200, Body: string(data)}, expected)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	if res := w.Resource(); res != nil {
		report.Kind = res.Kind().String()
		report.Profile = res.Profile().String()
	}
	// invalid documents are reported through their messages below
	var invalid *apperrors.StructuralValidationError
	if _, err := w.Payload(); err != nil && !errors.As(err, &invalid) {
		report.Error = err.Error()
		return report
	}

	result := w.Validation()
	report.Valid = result.IsSuccessful()
	report.Messages = result.Messages()
	uc.logger.Debug("validated document", "path", path, "kind", report.Kind, "valid", report.Valid)
	return report
}

package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
	"github.com/custodia-labs/docwatch/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultCommitMessage is used for updates made through docwatch.
const DefaultCommitMessage = "Update README.md via docwatch"

// DocumentService performs one-off reads and writes of the watched document.
type DocumentService struct {
	source driven.DocumentSource
	writer driven.DocumentWriter
	rate   driven.RateLimitReader
}

// NewDocumentService creates a document service. writer and rate may be nil.
func NewDocumentService(
	source driven.DocumentSource,
	writer driven.DocumentWriter,
	rate driven.RateLimitReader,
) *DocumentService {
	return &DocumentService{
		source: source,
		writer: writer,
		rate:   rate,
	}
}

// Fetch reads the current document.
func (s *DocumentService) Fetch(ctx context.Context) (*domain.DocumentSnapshot, error) {
	if s.source == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.source.FetchDocument(ctx)
}

// Update commits new content.
func (s *DocumentService) Update(ctx context.Context, content string) (*domain.DocumentSnapshot, error) {
	if s.writer == nil {
		return nil, domain.ErrNotImplemented
	}
	snap, err := s.writer.WriteDocument(ctx, content, DefaultCommitMessage)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	logger.Info("document written", "version", snap.Version.Short())
	return snap, nil
}

// RateLimit reports the remaining API quota.
func (s *DocumentService) RateLimit(ctx context.Context) (*domain.RateLimitInfo, error) {
	if s.rate == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.rate.RateLimit(ctx)
}

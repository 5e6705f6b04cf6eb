package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/hila-planner/internal/domain"
)

// Extractor turns one link into an asset candidate.
// extract.HeuristicExtractor is the default implementation.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (domain.AssetCandidate, error)
}

// URLParser splits pasted text into links. extract.ParseURLs satisfies it.
type URLParser func(text string) []string

// ImportResult reports the outcome of importing one item.
// Source is the link the item came from, empty for direct candidates.
type ImportResult struct {
	Index   int
	Source  string
	Status  ItemStatus
	AssetID uuid.UUID
	Title   string
	Error   string
}

// ImportService adds batches of externally supplied assets to the library.
// Each item succeeds or fails on its own.
type ImportService struct {
	assets    *AssetService
	extractor Extractor
	parse     URLParser
	limit     int
	log       *slog.Logger
}

// NewImportService constructs an ImportService. limit bounds concurrent
// extractions; values below 1 mean 1.
func NewImportService(assets *AssetService, extractor Extractor, parse URLParser, limit int, log *slog.Logger) *ImportService {
	if limit < 1 {
		limit = 1
	}
	return &ImportService{assets: assets, extractor: extractor, parse: parse, limit: limit, log: log}
}

// ImportCandidates normalises and adds each candidate in order.
func (s *ImportService) ImportCandidates(ctx context.Context, candidates []domain.AssetCandidate) []ImportResult {
	results := make([]ImportResult, len(candidates))
	for i, c := range candidates {
		results[i] = s.add(ctx, i, "", c)
	}
	return results
}

// ImportURLs extracts a candidate from every link found in text, running up
// to limit extractions at once, and adds the successful ones to the library
// in link order. Extraction failures are reported per item.
func (s *ImportService) ImportURLs(ctx context.Context, text string) ([]ImportResult, error) {
	urls := s.parse(text)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no links found", domain.ErrValidation)
	}

	candidates := make([]domain.AssetCandidate, len(urls))
	errs := make([]error, len(urls))
	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, u := range urls {
		g.Go(func() error {
			candidates[i], errs[i] = s.extractor.Extract(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]ImportResult, len(urls))
	for i, u := range urls {
		if errs[i] != nil {
			s.log.WarnContext(ctx, "import extraction failed", "url", u, "error", errs[i])
			results[i] = ImportResult{Index: i, Source: u, Status: ItemError, Error: "לא הצלחנו לחלץ מידע מהקישור"}
			continue
		}
		results[i] = s.add(ctx, i, u, candidates[i])
	}
	return results, nil
}

func (s *ImportService) add(ctx context.Context, i int, source string, c domain.AssetCandidate) ImportResult {
	res := ImportResult{Index: i, Source: source, Title: c.Title}
	asset, err := s.assets.AddCandidate(ctx, c)
	if err != nil {
		s.log.WarnContext(ctx, "import item rejected", "index", i, "source", source, "error", err)
		res.Status = ItemError
		res.Error = err.Error()
		return res
	}
	res.Status = ItemDone
	res.AssetID = asset.ID
	res.Title = asset.Title
	return res
}

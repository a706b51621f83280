package report

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/panorama/internal/common"
	"github.com/bobmcallan/panorama/internal/interfaces"
	"github.com/bobmcallan/panorama/internal/models"
	"github.com/bobmcallan/panorama/internal/signals"
)

// Options configures digest assembly and the role roster
type Options struct {
	Anchors       []string            // symbols polled for headlines
	NewsPerAnchor int                 // headlines requested per anchor
	Roles         []common.RoleConfig // analysis roles, rendered in order
	Location      *time.Location      // timezone for run timestamps
}

// Service implements ReportService: fetch, compute, assemble, generate,
// notify
type Service struct {
	instruments []models.Instrument
	market      interfaces.MarketService
	news        interfaces.NewsProvider
	generator   interfaces.TextGenerator
	notifier    interfaces.Notifier
	opts        Options
	logger      *common.Logger
	now         func() time.Time
}

// NewService creates a new report service
func NewService(instruments []models.Instrument, market interfaces.MarketService, news interfaces.NewsProvider,
	generator interfaces.TextGenerator, notifier interfaces.Notifier, opts Options, logger *common.Logger) *Service {
	if opts.NewsPerAnchor <= 0 {
		opts.NewsPerAnchor = 3
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		instruments: instruments,
		market:      market,
		news:        news,
		generator:   generator,
		notifier:    notifier,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one full pipeline pass. It always produces a report: failed
// instruments render as unavailable lines, failed generation renders as
// placeholder sections, and a failed notification is logged without failing
// the run.
func (s *Service) Run(ctx context.Context) (*models.Report, error) {
	runID := uuid.NewString()
	start := s.now().In(s.opts.Location)

	s.logger.Info().
		Str("run_id", runID).
		Int("instruments", len(s.instruments)).
		Msg("Starting report run")

	fetched := s.market.FetchAll(ctx, s.instruments)

	bundles := make(map[string]*models.SignalBundle, len(fetched))
	for code, series := range fetched {
		bundle, err := signals.Compute(series)
		if err != nil {
			s.logger.Warn().
				Str("code", code).
				Int("sessions", len(series)).
				Err(err).
				Msg("Signals not computed")
			continue
		}
		bundles[code] = bundle
	}

	digest := AssembleDigest(s.instruments, fetched, bundles)
	digest.News = s.collectNews(ctx)

	prompts := BuildPrompts(start, digest, s.opts.Roles)
	sections := s.generateSections(ctx, prompts)

	title := fmt.Sprintf("Global Macro Review (%s)", start.Format("2006-01-02 15:04"))
	document := renderDocument(title, digest, sections)

	report := &models.Report{
		RunID:       runID,
		GeneratedAt: start,
		Title:       title,
		Digest:      digest,
		Sections:    sections,
		Document:    document,
	}

	if err := s.notifier.Send(ctx, title, document); err != nil {
		s.logger.Warn().
			Str("run_id", runID).
			Err(err).
			Msg("Notification delivery failed")
	} else {
		s.logger.Info().
			Str("run_id", runID).
			Msg("Report delivered")
	}

	return report, nil
}

// generateSections runs all role prompts concurrently. Each goroutine writes
// its own slot so the section order always matches the role order.
func (s *Service) generateSections(ctx context.Context, prompts []models.RolePrompt) []models.RoleSection {
	sections := make([]models.RoleSection, len(prompts))

	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func(i int, prompt models.RolePrompt) {
			defer wg.Done()
			sections[i] = models.RoleSection{
				Role: prompt.Role,
				Text: s.generator.Generate(ctx, prompt.Prompt),
			}
		}(i, prompt)
	}
	wg.Wait()

	return sections
}

// collectNews polls each anchor symbol for headlines and de-duplicates
// repeated titles across anchors. Anchor failures are logged and skipped.
func (s *Service) collectNews(ctx context.Context) []models.NewsItem {
	var items []models.NewsItem
	seen := make(map[string]bool)

	for _, anchor := range s.opts.Anchors {
		headlines, err := s.news.Headlines(ctx, anchor, s.opts.NewsPerAnchor)
		if err != nil {
			s.logger.Warn().
				Str("anchor", anchor).
				Err(err).
				Msg("Headline fetch failed")
			continue
		}
		for _, item := range headlines {
			if seen[item.Title] {
				continue
			}
			seen[item.Title] = true
			items = append(items, item)
		}
	}

	return items
}

func renderDocument(title string, digest models.Digest, sections []models.RoleSection) string {
	var sb strings.Builder

	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString("Market Panorama\n")
	sb.WriteString(digest.Rendered)
	sb.WriteString("\n\n")

	sb.WriteString("Headlines\n")
	for _, line := range FormatNews(digest.News) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	for _, section := range sections {
		fmt.Fprintf(&sb, "\n== %s ==\n%s\n", section.Role, section.Text)
	}

	return sb.String()
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)

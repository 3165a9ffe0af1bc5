// Package watch ingests EMWIN text products and GOES-R image files as they
// appear in the configured directories.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/config"
	"emwin_parser/internal/emwin"
	"emwin_parser/internal/goes"
	"emwin_parser/internal/ledger"
	"emwin_parser/internal/observability"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/storage"
	"emwin_parser/internal/wmo"
)

// Actions holds what to do with a file after each outcome.
type Actions struct {
	Unrecognized config.FileAction
	Failure      config.FileAction
	Done         config.FileAction
}

// Ingester handles one file at a time. It is safe for concurrent use when
// its sink is.
type Ingester struct {
	registry *registry.Registry
	sink     storage.Sink
	ledger   *ledger.Ledger
	actions  Actions
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    clockwork.Clock
}

// IngesterOptions configures an Ingester. Ledger may be nil; Clock and
// Logger default to the real clock and slog.Default.
type IngesterOptions struct {
	Registry *registry.Registry
	Sink     storage.Sink
	Ledger   *ledger.Ledger
	Actions  Actions
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Clock    clockwork.Clock
}

// NewIngester sorts the registry and returns an Ingester.
func NewIngester(opts IngesterOptions) *Ingester {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Registry.Sort()
	return &Ingester{
		registry: opts.Registry,
		sink:     opts.Sink,
		ledger:   opts.Ledger,
		actions:  opts.Actions,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		clock:    opts.Clock,
	}
}

// ignored reports whether name is a partial upload or hidden file that
// must not be touched.
func ignored(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tmp", ".part":
		return true
	}
	return false
}

// Process handles the file at path. Files already in the ledger are
// skipped. The returned error is also logged and reflected in metrics; the
// file action for the outcome has been applied when Process returns.
func (in *Ingester) Process(ctx context.Context, path string) error {
	if ignored(filepath.Base(path)) {
		return nil
	}
	if in.ledger != nil {
		seen, err := in.ledger.Seen(path)
		if err != nil {
			return fmt.Errorf("ledger lookup %s: %w", path, err)
		}
		if seen {
			in.metrics.FilesSkipped.Inc()
			return nil
		}
	}

	if emwin.IsText(path) {
		in.metrics.FilesSeen.WithLabelValues("text").Inc()
		return in.processText(ctx, path)
	}
	if fn, err := goes.Parse(path); err == nil {
		in.metrics.FilesSeen.WithLabelValues("image").Inc()
		return in.processImage(ctx, path, fn)
	}

	in.metrics.FilesSeen.WithLabelValues("unrecognized").Inc()
	in.logger.Info("unrecognized file", "path", path)
	in.record(path, ledger.Entry{Outcome: ledger.Unrecognized})
	return in.apply(in.actions.Unrecognized, path)
}

func (in *Ingester) processImage(ctx context.Context, path string, fn goes.FileName) error {
	id := uuid.New()
	if err := in.sink.StoreImage(ctx, storage.ImageRecord{ID: id, Path: path, FileName: fn}); err != nil {
		in.metrics.DecodeFailures.WithLabelValues("store").Inc()
		in.logger.Error("failed to store image record", "path", path, "error", err)
		return err
	}
	in.logger.Debug("image recorded", "path", path, "short_name", fn.ShortName.String(), "satellite", fn.Satellite.String())
	// Images stay where they are; other tools serve them.
	in.record(path, ledger.Entry{ID: id, Outcome: ledger.Image, Detail: fn.ShortName.String()})
	return nil
}

func (in *Ingester) processText(ctx context.Context, path string) error {
	start := in.clock.Now()

	fn, err := emwin.Parse(path)
	var derr *wmo.DesignatorError
	if err != nil && !errors.As(err, &derr) {
		in.logger.Info("unrecognized EMWIN file name", "path", path, "error", err)
		in.record(path, ledger.Entry{Outcome: ledger.Unrecognized, Detail: err.Error()})
		return in.apply(in.actions.Unrecognized, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return in.fail(path, "bulletin", uuid.Nil, fmt.Errorf("read %s: %w", path, err))
	}

	received := in.clock.Now().UTC()
	b, err := bulletin.Parse(raw, bulletin.Options{
		Source:     path,
		Received:   received,
		Reference:  fn.Reference(),
		Designator: fn.Designator(),
	})
	switch {
	case b == nil:
		// No usable heading in the body; the file name carries one.
		b = &bulletin.Bulletin{
			ID:         uuid.New(),
			Source:     path,
			Received:   received,
			Reference:  fn.Reference(),
			Heading:    fn.Heading,
			Designator: fn.Designator(),
			Body:       bulletin.Normalise(raw),
		}
	case err != nil:
		in.logger.Debug("heading did not classify", "path", path, "error", err)
	}

	res, err := in.registry.Dispatch(b)
	if errors.Is(err, registry.ErrUnsupported) {
		in.metrics.Unsupported.Inc()
		in.logger.Debug("unsupported product", "path", path, "ttaaii", b.Heading.TTAAii)
		in.record(path, ledger.Entry{ID: b.ID, Outcome: ledger.Unsupported, Detail: b.Heading.TTAAii})
		return in.apply(in.actions.Unrecognized, path)
	}
	var decErr *registry.DecodeError
	if errors.As(err, &decErr) {
		in.logRecovered(path, decErr.Parser, decErr.Recovered)
		return in.fail(path, "decode", b.ID, err)
	}
	if err != nil {
		return in.fail(path, "decode", b.ID, err)
	}

	reportType := res.Report.Type()
	in.logRecovered(path, res.Parser, res.Recovered)
	in.metrics.RecoveredGroups.WithLabelValues(reportType).Add(float64(len(res.Recovered)))

	rec, err := storage.NewRecord(b, res)
	if err != nil {
		return in.fail(path, "store", b.ID, err)
	}
	if err := in.sink.StoreReport(ctx, rec); err != nil {
		return in.fail(path, "store", b.ID, err)
	}

	in.metrics.BulletinsDecoded.WithLabelValues(reportType).Inc()
	in.metrics.DecodeDuration.Observe(in.clock.Since(start).Seconds())
	in.logger.Info("bulletin decoded",
		"path", path,
		"id", b.ID,
		"report_type", reportType,
		"stations", len(rec.Stations),
		"recovered", len(res.Recovered),
	)
	in.record(path, ledger.Entry{ID: b.ID, Outcome: ledger.Decoded, Detail: reportType})
	return in.apply(in.actions.Done, path)
}

func (in *Ingester) logRecovered(path, parser string, recovered []*codec.Recovered) {
	for _, r := range recovered {
		in.logger.Warn("skipped malformed input",
			"path", path,
			"parser", parser,
			"offset", r.Offset,
			"skipped", r.Skipped,
			"error", r.Message,
		)
	}
}

func (in *Ingester) fail(path, stage string, id uuid.UUID, err error) error {
	in.metrics.DecodeFailures.WithLabelValues(stage).Inc()
	in.logger.Error("failed to process file", "path", path, "stage", stage, "error", err)
	in.record(path, ledger.Entry{ID: id, Outcome: ledger.Failed, Detail: err.Error()})
	if aerr := in.apply(in.actions.Failure, path); aerr != nil {
		return errors.Join(err, aerr)
	}
	return err
}

func (in *Ingester) record(path string, e ledger.Entry) {
	if in.ledger == nil {
		return
	}
	e.ProcessedAt = in.clock.Now().UTC()
	if err := in.ledger.Record(path, e); err != nil {
		in.logger.Error("failed to update ledger", "path", path, "error", err)
	}
}

func (in *Ingester) apply(a config.FileAction, path string) error {
	if err := a.Apply(path); err != nil {
		in.metrics.DecodeFailures.WithLabelValues("action").Inc()
		in.logger.Error("file action failed", "path", path, "action", string(a.On), "error", err)
		return err
	}
	return nil
}

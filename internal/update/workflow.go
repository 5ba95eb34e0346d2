package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/modtools/modup/internal/manifest"
	"github.com/modtools/modup/internal/progress"
)

// BatchCompleteMarker is the final line reported after every scan.
const BatchCompleteMarker = "=== batch complete ==="

// Options control a single batch run.
type Options struct {
	// Backup creates a .bak copy of each container before replacing it.
	Backup bool
	// CheckOnly stops after the version decision; nothing is downloaded.
	CheckOnly bool
	// Confirm, when non-nil, is asked before each replacement. Returning
	// false skips the module.
	Confirm func(id string, local, remote int64) bool
}

// Workflow runs the per-module decision/update pipeline. A failure in one
// module never stops the batch; every module reaches a terminal outcome.
type Workflow struct {
	descriptors DescriptorClient
	fetcher     Fetcher
	replacer    Replacer
	sink        progress.Sink
	logger      *log.Logger
}

// Option configures a Workflow during construction.
type Option func(*Workflow)

// WithDescriptorClient overrides the remote descriptor client.
func WithDescriptorClient(c DescriptorClient) Option {
	return func(w *Workflow) { w.descriptors = c }
}

// WithFetcher overrides the archive fetcher.
func WithFetcher(f Fetcher) Option {
	return func(w *Workflow) { w.fetcher = f }
}

// WithReplacer overrides the file replacer.
func WithReplacer(r Replacer) Option {
	return func(w *Workflow) { w.replacer = r }
}

// WithLogger overrides the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// NewWorkflow creates a workflow reporting progress to sink.
func NewWorkflow(sink progress.Sink, opts ...Option) *Workflow {
	w := &Workflow{
		descriptors: NewDescriptorClient(),
		fetcher:     NewHTTPFetcher(),
		replacer:    NewFileReplacer(),
		sink:        sink,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes each container path in order and returns one outcome per
// path. The batch-complete marker is reported after the last module.
func (w *Workflow) Run(ctx context.Context, paths []string, opts Options) []Outcome {
	outcomes := make([]Outcome, 0, len(paths))
	for _, path := range paths {
		outcomes = append(outcomes, w.Process(ctx, path, opts))
	}
	w.sink.Line(BatchCompleteMarker)
	return outcomes
}

// fail reports a module failure line and builds the failed outcome.
func (w *Workflow) fail(o Outcome, err error, line string) Outcome {
	o.Status = StatusFailed
	o.Err = err
	o.Reason = err.Error()
	w.sink.Line(line)
	return o
}

// Process runs one container through the pipeline to a terminal outcome.
func (w *Workflow) Process(ctx context.Context, path string, opts Options) Outcome {
	o := Outcome{Path: path}
	w.sink.Line(fmt.Sprintf("Checking %s ...", path))

	m, err := manifest.ExtractFromZip(path)
	if err != nil {
		return w.fail(o, fmt.Errorf("%w: %v", ErrManifestMissing, err),
			"  no module.prop found or unreadable, skipping")
	}

	id := m.ID()
	if id == "" {
		return w.fail(o, fmt.Errorf("%w: missing id", ErrManifestIncomplete),
			"  missing module id, skipping")
	}
	o.ModuleID = id

	updateURL := m.UpdateJSON()
	if updateURL == "" {
		return w.fail(o, fmt.Errorf("%w: missing updateJson", ErrManifestIncomplete),
			fmt.Sprintf("  module %s has no updateJson, skipping", id))
	}

	local, present, err := m.VersionCode()
	if !present {
		return w.fail(o, fmt.Errorf("%w: missing versionCode", ErrManifestIncomplete),
			fmt.Sprintf("  module %s has no versionCode, skipping", id))
	}
	if err != nil {
		return w.fail(o, fmt.Errorf("%w: local versionCode: %v", ErrVersionFormatInvalid, err),
			fmt.Sprintf("  invalid local versionCode for module %s, skipping", id))
	}
	o.LocalVersion = local

	w.sink.Line(fmt.Sprintf("  module %s, local version %d", id, local))
	w.logger.Debug("manifest parsed", "module", id, "versionCode", local, "updateJson", updateURL)

	desc, err := w.descriptors.Fetch(ctx, updateURL)
	if err != nil {
		return w.fail(o, err, fmt.Sprintf("  failed to fetch update descriptor: %v", err))
	}

	remote, err := desc.Version()
	if err != nil {
		return w.fail(o, err, fmt.Sprintf("  invalid remote versionCode for module %s, skipping", id))
	}
	o.RemoteVersion = remote
	o.RemoteLabel = desc.VersionName
	o.Changelog = desc.Changelog

	if Decide(local, remote) == DecisionUpToDate {
		o.Status = StatusUpToDate
		w.sink.Line(fmt.Sprintf("  module %s is up to date (local %d, remote %d)", id, local, remote))
		return o
	}

	if opts.CheckOnly {
		o.Status = StatusUpdateAvailable
		w.sink.Line(fmt.Sprintf("  update available for %s: %d > %d (check only)", id, remote, local))
		return o
	}

	if opts.Confirm != nil && !opts.Confirm(id, local, remote) {
		o.Status = StatusSkipped
		o.Reason = "declined"
		w.sink.Line(fmt.Sprintf("  update for %s declined, skipping", id))
		return o
	}

	w.sink.Line(fmt.Sprintf("  new version available: %d > %d, downloading ...", remote, local))

	staged, err := w.fetcher.Fetch(ctx, desc.ZipURL, filepath.Dir(path))
	if err != nil {
		return w.fail(o, err, fmt.Sprintf("  download failed: %v", err))
	}

	// The replacer consumes the staged file; every earlier exit must
	// discard it so no staging artifact outlives this attempt.
	consumed := false
	defer func() {
		if !consumed {
			_ = os.Remove(staged)
		}
	}()

	if sum, err := Checksum(staged); err == nil {
		w.logger.Debug("downloaded archive", "module", id, "sha256", sum)
	}

	if !w.fetcher.VerifyIdentity(staged, id) {
		return w.fail(o, fmt.Errorf("%w: staged archive is not module %s", ErrIdentityMismatch, id),
			fmt.Sprintf("  downloaded archive does not match module %s, aborting", id))
	}

	err = w.replacer.Apply(staged, path, opts.Backup)
	consumed = true // Apply removes the staged file on every path
	if err != nil {
		return w.fail(o, err, fmt.Sprintf("  update failed: %v", err))
	}

	if opts.Backup {
		w.sink.Line(fmt.Sprintf("  backup created: %s", BackupPath(path)))
	}

	o.Status = StatusUpdated
	w.sink.Line(fmt.Sprintf("  updated %s to version %d", path, remote))
	return o
}

// Package export regenerates loadable source modules from entities known to an
// introspector. One file is written per entity into a flat directory, and every
// sibling entity a module refers to is exported transitively in the same run.
package export

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/logger"
)

// Default option values.
const (
	DefaultOutputDir = "tmp"
	DefaultExtension = ".py"
)

// Options configure an Exporter.
type Options struct {
	OutputDir     string
	Extension     string
	TypingModule  string
	FormatCommand string
}

func (o Options) withDefaults() Options {
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.TypingModule == "" {
		o.TypingModule = entity.TypingModule
	}
	return o
}

// Exporter classifies entities, builds their units and writes them, following
// deferred siblings until the transitive closure has been handled.
type Exporter struct {
	in     entity.Introspector
	opts   Options
	writer *ModuleWriter
	log    *zap.SugaredLogger
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger warnings and progress are reported to.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Exporter reading entities from in.
func New(in entity.Introspector, opts Options, options ...Option) (*Exporter, error) {
	opts = opts.withDefaults()
	writer, err := NewModuleWriter(opts.OutputDir, opts.Extension, in.MainModule(), opts.FormatCommand)
	if err != nil {
		return nil, err
	}
	e := &Exporter{
		in:     in,
		opts:   opts,
		writer: writer,
		log:    logger.Logger,
	}
	for _, o := range options {
		o(e)
	}
	e.log = logger.ChildLogger(e.log, logger.FieldComponent, "export")
	return e, nil
}

// Writer exposes the module writer, for callers that need output paths.
func (e *Exporter) Writer() *ModuleWriter {
	return e.writer
}

// Export exports ref and everything it transitively references.
func (e *Exporter) Export(ctx context.Context, ref entity.Ref) (*Summary, error) {
	return e.ExportAll(ctx, []entity.Ref{ref})
}

// ExportAll exports several roots in one run. Entity failures are recorded in the
// summary; the returned error is only set when ctx is done.
func (e *Exporter) ExportAll(ctx context.Context, refs []entity.Ref) (*Summary, error) {
	r := newRun(e.log)
	r.log.Infow("Starting export", logger.FieldCount, len(refs), "output_dir", e.opts.OutputDir)

	for _, ref := range refs {
		if err := e.visit(ctx, r, ref); err != nil {
			return r.summary, err
		}
	}

	r.log.Infow("Export finished",
		"written", len(r.summary.Written),
		"skipped", len(r.summary.Skipped),
		"failed", len(r.summary.Failed))
	return r.summary, nil
}

// run is the bookkeeping shared by every unit of one export run.
type run struct {
	emitted  map[entity.Ref]bool
	inFlight map[entity.Ref]bool
	failed   map[entity.Ref]bool
	// claims maps a folded destination module name to the entity that owns it.
	claims  map[string]entity.Ref
	summary *Summary
	log     *zap.SugaredLogger
}

func newRun(log *zap.SugaredLogger) *run {
	id := uuid.New().String()
	return &run{
		emitted:  make(map[entity.Ref]bool),
		inFlight: make(map[entity.Ref]bool),
		failed:   make(map[entity.Ref]bool),
		claims:   make(map[string]entity.Ref),
		summary:  &Summary{RunID: id},
		log:      logger.ChildLogger(log, logger.FieldRunID, id),
	}
}

func (e *Exporter) visit(ctx context.Context, r *run, ref entity.Ref) error {
	if r.emitted[ref] || r.inFlight[ref] || r.failed[ref] {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.inFlight[ref] = true
	defer delete(r.inFlight, ref)

	name := e.in.DeclaredName(ref)
	module := ModuleName(name)
	kind := entity.Classify(e.in, ref)
	log := logger.ChildLogger(r.log, logger.FieldEntity, entity.Qualified(e.in, ref), logger.FieldKind, kind.String())

	key := collisionKey(module)
	if owner, ok := r.claims[key]; ok && owner != ref {
		err := errors.DestinationCollision(module, entity.Qualified(e.in, owner), entity.Qualified(e.in, ref))
		e.fail(r, log, ref, kind, module, err)
		return nil
	}
	r.claims[key] = ref

	unit, err := e.build(ref, kind)
	if err != nil {
		delete(r.claims, key)
		e.fail(r, log, ref, kind, module, err)
		return nil
	}
	base := unit.Base()

	path, err := e.writer.Write(unit)
	if err != nil {
		delete(r.claims, key)
		e.fail(r, log, ref, kind, module, err)
		return nil
	}
	r.emitted[ref] = true

	warnings := append([]error(nil), base.Warnings...)
	if err := e.writer.Format(ctx, path); err != nil {
		warnings = append(warnings, err)
	}
	for _, w := range warnings {
		log.Warnw("Exported with warning", logger.FieldError, w.Error())
	}
	for _, s := range base.Skipped {
		log.Warnw("Skipped member", logger.FieldMember, s.Member, logger.FieldError, s.Reason.Error())
		r.summary.Skipped = append(r.summary.Skipped, Outcome{
			Entity: name + "." + s.Member,
			Kind:   "method",
			Module: module,
			Err:    s.Reason,
		})
	}
	log.Infow("Wrote module", logger.FieldModule, module, logger.FieldPath, path,
		logger.FieldDeferred, base.Deferred.Len())
	r.summary.Written = append(r.summary.Written, Outcome{
		Entity:   name,
		Kind:     kind.String(),
		Module:   module,
		Path:     path,
		Warnings: warnings,
	})

	for _, next := range base.Deferred.Refs() {
		if err := e.visit(ctx, r, next); err != nil {
			return err
		}
	}
	return nil
}

// build routes ref to the exporter for its kind.
func (e *Exporter) build(ref entity.Ref, kind entity.Kind) (Renderer, error) {
	switch kind {
	case entity.TupleLike:
		return BuildRecord(e.in, ref, e.opts.TypingModule)
	case entity.Structured:
		return BuildClass(e.in, ref, e.opts.TypingModule)
	case entity.Callable:
		return BuildFunction(e.in, ref, e.opts.TypingModule)
	default:
		return nil, errors.Unclassifiable(entity.Qualified(e.in, ref), e.in.Flags(ref).String())
	}
}

func (e *Exporter) fail(r *run, log *zap.SugaredLogger, ref entity.Ref, kind entity.Kind, module string, err error) {
	r.failed[ref] = true
	log.Errorw("Export failed", logger.FieldModule, module, logger.FieldError, err.Error())
	r.summary.Failed = append(r.summary.Failed, Outcome{
		Entity: e.in.DeclaredName(ref),
		Kind:   kind.String(),
		Module: module,
		Err:    err,
	})
}

// Package generate runs the schemats pipeline: introspect the database, map
// every column through typemap, and assemble the emit.Document.
package generate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/schemats/internal/emit"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/logger"
	"github.com/koustreak/schemats/internal/schema"
	"github.com/koustreak/schemats/internal/typemap"
)

const defaultConcurrency = 4

// Options controls how a schema becomes a document.
type Options struct {
	// ForceOptional marks every field optional.
	ForceOptional bool

	// Namespace overrides the namespace derived from the database name.
	Namespace string

	// Naming selects how table names become interface names.
	Naming emit.Naming

	// Concurrency caps how many tables are mapped at once. Zero means 4.
	Concurrency int
}

// Generator produces TypeScript declarations for one database.
type Generator struct {
	reader schema.Reader
	opts   Options
}

// New creates a Generator reading metadata through reader.
func New(reader schema.Reader, opts Options) *Generator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Generator{reader: reader, opts: opts}
}

// Options returns the generator's options.
func (g *Generator) Options() Options {
	return g.opts
}

// WithForceOptional returns a copy of g with ForceOptional set to v.
func (g *Generator) WithForceOptional(v bool) *Generator {
	cp := *g
	cp.opts.ForceOptional = v
	return &cp
}

// Run introspects database and builds its document.
func (g *Generator) Run(ctx context.Context, database string) (*emit.Document, error) {
	s, err := g.reader.InspectSchema(ctx, database)
	if err != nil {
		return nil, err
	}
	return Build(ctx, s, g.opts)
}

// Render introspects database and returns the document text.
func (g *Generator) Render(ctx context.Context, database string) (string, error) {
	doc, err := g.Run(ctx, database)
	if err != nil {
		return "", err
	}
	return emit.EmitDocument(doc), nil
}

// RenderTable returns the interface block for a single table.
func (g *Generator) RenderTable(ctx context.Context, database, table string) (string, error) {
	ok, err := g.reader.TableExists(ctx, database, table)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %s.%s does not exist", database, table))
	}

	ti, err := g.reader.InspectTable(ctx, database, table)
	if err != nil {
		return "", err
	}
	frags, err := typemap.MapColumns(ti.Columns, g.opts.ForceOptional)
	if err != nil {
		return "", err
	}
	return emit.EmitTable(emit.InterfaceName(ti.Name, g.opts.Naming), frags), nil
}

// Build maps every table of s concurrently. Table and column order in the
// document match s exactly. The first unsupported column aborts the build.
func Build(ctx context.Context, s *schema.Schema, opts Options) (*emit.Document, error) {
	log := logger.FromContext(ctx)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	tables := make([]emit.Table, len(s.Tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ti := range s.Tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frags, err := typemap.MapColumns(ti.Columns, opts.ForceOptional)
			if err != nil {
				return err
			}
			for j, col := range ti.Columns {
				if col.DataType == "enum" && frags[j].Type == typemap.StringType {
					log.With().Str("table", ti.Name).Str("column", col.Name).Logger().
						Warn("enum literal contains every quote character, typed as string")
				}
			}
			tables[i] = emit.Table{
				Name:      emit.InterfaceName(ti.Name, opts.Naming),
				Fragments: frags,
			}
			log.With().Str("table", ti.Name).Int("columns", len(frags)).Logger().Debug("table mapped")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ns := opts.Namespace
	if ns == "" {
		ns = emit.Namespace(s.Name)
	}
	return &emit.Document{
		Namespace: ns,
		Source:    fmt.Sprintf("MySQL database %q", s.Name),
		Tables:    tables,
	}, nil
}

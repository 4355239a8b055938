// Package output persists generated declaration files.
package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/filestore"
	"github.com/koustreak/schemats/internal/logger"
)

// ContentType is the MIME type used for uploaded declaration files.
const ContentType = "application/typescript"

// Stdout is the path that sends the document to standard output.
const Stdout = "-"

// Writer persists one generated document.
type Writer interface {
	Write(ctx context.Context, doc []byte) error
}

// DefaultFileName is the file name used when no path is configured.
func DefaultFileName(database string) string {
	return database + ".d.ts"
}

// FileWriter writes the document to a local path, creating parent
// directories as needed.
type FileWriter struct {
	Path string
	Out  io.Writer // used when Path is "-"; nil means os.Stdout
}

// NewFileWriter returns a FileWriter for path, falling back to
// DefaultFileName(database) when path is empty.
func NewFileWriter(path, database string) *FileWriter {
	if path == "" {
		path = DefaultFileName(database)
	}
	return &FileWriter{Path: path}
}

func (w *FileWriter) Write(ctx context.Context, doc []byte) error {
	if w.Path == Stdout {
		out := w.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write(doc); err != nil {
			return errs.Wrap(errs.ErrKindWriteFailed, "write to stdout", err)
		}
		return nil
	}

	if dir := filepath.Dir(w.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.ErrKindWriteFailed, fmt.Sprintf("create directory %s", dir), err)
		}
	}
	if err := os.WriteFile(w.Path, doc, 0o644); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, fmt.Sprintf("write %s", w.Path), err)
	}

	logger.FromContext(ctx).With().Str("path", w.Path).Int("bytes", len(doc)).Logger().Info("declarations written")
	return nil
}

// ObjectWriter uploads the document to an object store bucket.
type ObjectWriter struct {
	Store      filestore.Store
	Bucket     string
	Key        string
	PresignTTL time.Duration
}

// NewObjectWriter builds an ObjectWriter from cfg for the given file name.
func NewObjectWriter(store filestore.Store, cfg *filestore.Config, fileName string) *ObjectWriter {
	return &ObjectWriter{
		Store:      store,
		Bucket:     cfg.Bucket,
		Key:        cfg.Prefix + filepath.Base(fileName),
		PresignTTL: cfg.PresignTTL,
	}
}

func (w *ObjectWriter) Write(ctx context.Context, doc []byte) error {
	log := logger.FromContext(ctx)

	if err := w.Store.EnsureBucket(ctx, w.Bucket); err != nil {
		return err
	}
	info, err := w.Store.PutObject(ctx, w.Bucket, w.Key, bytes.NewReader(doc), int64(len(doc)), ContentType)
	if err != nil {
		return err
	}
	log.With().Str("bucket", info.Bucket).Str("key", info.Key).Str("etag", info.ETag).Logger().Info("declarations uploaded")

	if w.PresignTTL > 0 {
		u, err := w.Store.PresignGetURL(ctx, w.Bucket, w.Key, w.PresignTTL)
		if err != nil {
			return err
		}
		log.With().Str("url", u).Logger().Info("download link")
	}
	return nil
}

// Multi writes to every writer in order and stops at the first failure.
type Multi []Writer

func (m Multi) Write(ctx context.Context, doc []byte) error {
	for _, w := range m {
		if err := w.Write(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

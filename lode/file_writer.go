package lode

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/justapithecus/lode/lode"
)

// FileWriter stores sidecar files (run reports, raw dumps) next to a
// run's records, bypassing the dataset's snapshot machinery.
type FileWriter interface {
	// PutFile writes a file under the run's files/ prefix.
	// The filename must not contain path separators or "..".
	PutFile(ctx context.Context, filename, contentType string, data []byte) error
}

var _ FileWriter = (*LodeClient)(nil)

// PutFile writes a sidecar file at the run's Hive path.
func (c *LodeClient) PutFile(ctx context.Context, filename, _ string, data []byte) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid sidecar filename %q", filename)
	}

	store, err := c.getOrCreateStore()
	if err != nil {
		return WrapInitError(err, c.config.Dataset)
	}

	path := c.buildFilePath(filename)
	if err := store.Put(ctx, path, bytes.NewReader(data)); err != nil {
		return NewStorageError(classifyError(err), "put", path, err)
	}
	return nil
}

func (c *LodeClient) getOrCreateStore() (lode.Store, error) {
	c.storeOnce.Do(func() {
		c.store, c.storeErr = c.storeFactory()
	})
	return c.store, c.storeErr
}

// buildFilePath computes
// datasets/<dataset>/partitions/tool=<t>/day=<d>/run_id=<r>/files/<filename>.
func (c *LodeClient) buildFilePath(filename string) string {
	return fmt.Sprintf("datasets/%s/partitions/tool=%s/day=%s/run_id=%s/files/%s",
		c.config.Dataset,
		c.config.Tool,
		c.config.Day,
		c.config.RunID,
		filename,
	)
}

// StubFileWriter records PutFile calls for testing.
type StubFileWriter struct {
	mu    sync.Mutex
	Files []StubFileRecord
}

// StubFileRecord is a recorded file write.
type StubFileRecord struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewStubFileWriter creates a new stub file writer.
func NewStubFileWriter() *StubFileWriter {
	return &StubFileWriter{}
}

// PutFile implements FileWriter.
func (w *StubFileWriter) PutFile(_ context.Context, filename, contentType string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Files = append(w.Files, StubFileRecord{Filename: filename, ContentType: contentType, Data: data})
	return nil
}

var _ FileWriter = (*StubFileWriter)(nil)

// Package fileapi queries the cmake file-based API for the code model of a
// build directory.
//
// A query only gets answered by the next configure pass of its build
// directory, so the order is fixed: Enqueue, run the configure pass, call
// Resolve, then Await. A request enqueued after the configure pass has
// nothing to resolve it and Await blocks until its context ends.
package fileapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const codeModelQuery = "codemodel-v2"

var (
	// ErrQueryTimeout is returned by Await when its context ends before the
	// request was resolved.
	ErrQueryTimeout = errors.New("file api query was not resolved")

	// ErrNoReply is returned when a configure pass completed without
	// answering the query.
	ErrNoReply = errors.New("file api reply missing")
)

// APIDir returns the file-API root of buildDir.
func APIDir(buildDir string) string {
	return filepath.Join(buildDir, ".cmake", "api", "v1")
}

// ReplyDir returns the directory cmake writes replies to.
func ReplyDir(buildDir string) string {
	return filepath.Join(APIDir(buildDir), "reply")
}

// QueryDir returns the query directory of client in buildDir.
func QueryDir(buildDir, client string) string {
	return filepath.Join(APIDir(buildDir), "query", "client-"+client)
}

// Queue holds code-model requests keyed by build directory. It is safe for
// concurrent use by workers owning distinct build directories.
type Queue struct {
	client string

	mu      sync.Mutex
	pending map[string][]*Request
}

// NewQueue returns a Queue whose queries are filed under client.
func NewQueue(client string) *Queue {
	return &Queue{client: client, pending: make(map[string][]*Request)}
}

// Request is a pending code-model query.
type Request struct {
	buildDir string
	done     chan struct{}
	model    *CodeModel
	err      error
}

// Enqueue files a code-model query for buildDir. It must be called before
// the configure pass that is expected to answer it.
func (q *Queue) Enqueue(buildDir string) (*Request, error) {
	dir := QueryDir(buildDir, q.client)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, codeModelQuery), nil, 0o644); err != nil {
		return nil, err
	}
	r := &Request{buildDir: buildDir, done: make(chan struct{})}
	key := filepath.Clean(buildDir)

	q.mu.Lock()
	q.pending[key] = append(q.pending[key], r)
	q.mu.Unlock()
	return r, nil
}

// Pending returns the number of unresolved requests for buildDir.
func (q *Queue) Pending(buildDir string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[filepath.Clean(buildDir)])
}

// Resolve completes every request pending on buildDir. It is called by
// whoever ran the configure pass, with that pass's error.
func (q *Queue) Resolve(buildDir string, configureErr error) {
	key := filepath.Clean(buildDir)
	q.mu.Lock()
	reqs := q.pending[key]
	delete(q.pending, key)
	q.mu.Unlock()

	if len(reqs) == 0 {
		return
	}
	var model *CodeModel
	err := configureErr
	if err == nil {
		model, err = readCodeModel(buildDir, q.client)
	} else {
		err = fmt.Errorf("configure %s: %w", buildDir, err)
	}
	for _, r := range reqs {
		r.model, r.err = model, err
		close(r.done)
	}
}

// Await blocks until r is resolved or ctx ends.
func (r *Request) Await(ctx context.Context) (*CodeModel, error) {
	select {
	case <-r.done:
		return r.model, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w for %s: %v", ErrQueryTimeout, r.buildDir, ctx.Err())
	}
}

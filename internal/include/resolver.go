// SPDX-License-Identifier: MPL-2.0

package include

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bakebuild/bake/pkg/bakefile"
)

// remoteMarker classifies a reference as remote when it appears anywhere in it.
const remoteMarker = "http"

var (
	// ErrRootFileMissing is returned when the root rule file cannot be read.
	ErrRootFileMissing = errors.New("rule file not found")
	// ErrIncludeFileMissing is returned when a local include cannot be read.
	ErrIncludeFileMissing = errors.New("include file not found")
	// ErrInvalidIncludeURL is returned when a remote reference is not an absolute http(s) URL.
	ErrInvalidIncludeURL = errors.New("invalid include URL")
	// ErrIncludeFetch is returned when a remote include cannot be fetched or decoded.
	ErrIncludeFetch = errors.New("failed to fetch include")
)

type (
	// Resolver loads rule files and their transitive includes.
	Resolver struct {
		fetcher Fetcher
		timeout time.Duration
		logger  *slog.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)

	// pending is one queued include reference and the source that named it.
	pending struct {
		ref    string
		origin source
	}

	// source identifies where a rule file came from. Local sources carry the
	// directory relative references resolve against.
	source struct {
		key    string
		remote bool
	}
)

// WithFetcher sets the fetcher used for remote references.
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) {
		r.fetcher = f
	}
}

// WithTimeout bounds each remote fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithLogger sets the logger for include tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver. Without options it fetches with http.DefaultClient,
// no timeout, and logs through slog.Default().
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = NewHTTPFetcher(nil, "")
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Load parses the root rule file at path and resolves every include it
// reaches. The returned model is complete and ready for execution.
func (r *Resolver) Load(ctx context.Context, path string) (*bakefile.Bakefile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootFileMissing, path, err)
	}

	bf := bakefile.New()
	if err := bf.ParseSource(bytes.NewReader(data), path); err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, bf, localSource(path, "")); err != nil {
		return nil, err
	}
	return bf, nil
}

// Resolve drains bf's include work-list, most recently queued first. Entries
// already present are attributed to origin, which must be a local path or a
// URL; origin itself counts as visited.
func (r *Resolver) Resolve(ctx context.Context, bf *bakefile.Bakefile, origin string) error {
	return r.resolve(ctx, bf, canonical(origin, source{}))
}

func (r *Resolver) resolve(ctx context.Context, bf *bakefile.Bakefile, root source) error {
	visited := map[string]bool{root.key: true}

	stack := make([]pending, 0, len(bf.Includes))
	stack = queue(stack, bf, root)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("include resolution canceled: %w", err)
		}

		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ref := unquote(next.ref)
		if strings.Contains(ref, remoteMarker) {
			if err := validateURL(ref); err != nil {
				return err
			}
		}
		src := canonical(ref, next.origin)
		if visited[src.key] {
			r.logger.Debug("skipping already included source", "ref", ref, "source", src.key)
			continue
		}
		visited[src.key] = true

		data, err := r.read(ctx, src, ref)
		if err != nil {
			return err
		}

		r.logger.Debug("including source", "source", src.key, "from", next.origin.key)
		if err := bf.ParseSource(bytes.NewReader(data), src.key); err != nil {
			return err
		}

		stack = queue(stack, bf, src)
	}

	return nil
}

// queue moves bf's pending includes onto stack, attributed to origin. The
// last reference a source names ends up on top.
func queue(stack []pending, bf *bakefile.Bakefile, origin source) []pending {
	for _, ref := range bf.Includes {
		stack = append(stack, pending{ref: ref, origin: origin})
	}
	bf.Includes = bf.Includes[:0]
	return stack
}

func (r *Resolver) read(ctx context.Context, src source, ref string) ([]byte, error) {
	if !src.remote {
		data, err := os.ReadFile(src.key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrIncludeFileMissing, ref, err)
		}
		return data, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data, err := r.fetcher.Fetch(ctx, src.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIncludeFetch, src.key, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s: body is not valid UTF-8", ErrIncludeFetch, src.key)
	}
	return data, nil
}

// canonical returns the visited-set key for ref as named from origin.
// Relative local paths resolve against the directory of a local origin;
// from a remote origin they resolve against the working directory.
func canonical(ref string, origin source) source {
	if strings.Contains(ref, remoteMarker) {
		return source{key: ref, remote: true}
	}

	dir := ""
	if origin.key != "" && !origin.remote {
		dir = filepath.Dir(origin.key)
	}
	return localSource(ref, dir)
}

// localSource resolves path against dir (the working directory when empty).
func localSource(path, dir string) source {
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return source{key: filepath.Clean(path)}
}

// validateURL accepts absolute http and https URLs with a host.
func validateURL(ref string) error {
	u, err := url.ParseRequestURI(ref)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidIncludeURL, ref, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q: want an absolute http or https URL", ErrInvalidIncludeURL, ref)
	}
	return nil
}

// unquote strips one layer of matching surrounding quotes.
func unquote(ref string) string {
	if len(ref) >= 2 {
		first, last := ref[0], ref[len(ref)-1]
		if first == last && (first == '"' || first == '\'') {
			return ref[1 : len(ref)-1]
		}
	}
	return ref
}

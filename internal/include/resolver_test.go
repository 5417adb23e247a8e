// SPDX-License-Identifier: MPL-2.0

package include

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bakebuild/bake/internal/testutil"
	"github.com/bakebuild/bake/pkg/bakefile"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func quietResolver(opts ...Option) *Resolver {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func TestLoad_RootFileMissing(t *testing.T) {
	t.Parallel()

	_, err := quietResolver().Load(context.Background(), filepath.Join(t.TempDir(), "Bakefile"))
	require.ErrorIs(t, err, ErrRootFileMissing)
}

func TestLoad_LocalIncludeMerges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "common.bake", "CC=gcc\nbuild:\n\t$(CC) main.c\n")
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\tcommon.bake\nall: build\n\techo $(CC)\n")

	bf, err := quietResolver().Load(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, []bakefile.Variable{{Name: "CC", Value: "gcc"}}, bf.Variables)
	require.Equal(t, []string{"all", "build"}, bf.Targets())
	require.Empty(t, bf.Includes)
	require.Equal(t, []string{root, filepath.Join(dir, "common.bake")}, bf.Sources)
}

func TestLoad_RelativeToIncludingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, filepath.Join("lib", "leaf.bake"), "leaf:\n")
	testutil.MustWriteFile(t, dir, filepath.Join("lib", "mid.bake"), "include:\n\tleaf.bake\nmid:\n")
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\tlib/mid.bake\nroot:\n")

	bf, err := quietResolver().Load(context.Background(), root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"root", "mid", "leaf"}, bf.Targets())
}

func TestLoad_QuotedLocalReference(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "other.bake", "other:\n")
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\t\"other.bake\"\n\t'other.bake'\n")

	bf, err := quietResolver().Load(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, []string{"other"}, bf.Targets())
}

func TestLoad_IncludeFileMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\tnope.bake\n")

	_, err := quietResolver().Load(context.Background(), root)
	require.ErrorIs(t, err, ErrIncludeFileMissing)
	require.Contains(t, err.Error(), "nope.bake")
}

func TestLoad_IncludeCycleTerminates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "a.bake", "include:\n\tb.bake\na:\n")
	testutil.MustWriteFile(t, dir, "b.bake", "include:\n\ta.bake\n\tBakefile\nb:\n")
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\ta.bake\nroot:\n")

	bf, err := quietResolver().Load(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, []string{"root", "a", "b"}, bf.Targets())
	require.Len(t, bf.Sources, 3)
}

func TestLoad_DiamondIncludeParsedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "shared.bake", "V=1\n")
	testutil.MustWriteFile(t, dir, "left.bake", "include:\n\tshared.bake\n")
	testutil.MustWriteFile(t, dir, "right.bake", "include:\n\t./shared.bake\n")
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\tleft.bake\n\tright.bake\n")

	bf, err := quietResolver().Load(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, bf.Variables, 1)
}

func TestLoad_StackOrder(t *testing.T) {
	t.Parallel()

	// The most recently queued reference is resolved first, so second.bake's
	// definition lands before first.bake's and first.bake wins lookups.
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "first.bake", "V=first\n")
	testutil.MustWriteFile(t, dir, "second.bake", "V=second\n")
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\tfirst.bake\n\tsecond.bake\n")

	bf, err := quietResolver().Load(context.Background(), root)
	require.NoError(t, err)

	want := []bakefile.Variable{{Name: "V", Value: "second"}, {Name: "V", Value: "first"}}
	if diff := cmp.Diff(want, bf.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_RemoteInclude(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, "REMOTE=yes\nremote:\n\techo $(REMOTE)\n")
	}))
	defer srv.Close()

	dir := t.TempDir()
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\t\""+srv.URL+"/common.bake\"\nall: remote\n")

	r := quietResolver(WithFetcher(NewHTTPFetcher(srv.Client(), "bake-test")))
	bf, err := r.Load(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, []string{"all", "remote"}, bf.Targets())
	require.Equal(t, "bake-test", gotUA.Load())
	require.Contains(t, bf.Sources, srv.URL+"/common.bake")
}

func TestLoad_RemoteFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/binary":
			_, _ = w.Write([]byte{0xff, 0xfe, 0xfd})
		default:
			_, _ = io.WriteString(w, "ok:\n")
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		ref     string
		wantErr error
	}{
		{"not found", srv.URL + "/missing", ErrIncludeFetch},
		{"invalid utf8", srv.URL + "/binary", ErrIncludeFetch},
		{"relative url", "http-common.bake", ErrInvalidIncludeURL},
		{"wrong scheme", "ftp://example.com/http.bake", ErrInvalidIncludeURL},
		{"no host", "http:///common.bake", ErrInvalidIncludeURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\t"+tt.ref+"\n")

			r := quietResolver(WithFetcher(NewHTTPFetcher(srv.Client(), "")))
			_, err := r.Load(context.Background(), root)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_RemoteTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	dir := t.TempDir()
	root := testutil.MustWriteFile(t, dir, "Bakefile", "include:\n\t"+srv.URL+"/slow\n")

	r := quietResolver(WithFetcher(NewHTTPFetcher(srv.Client(), "")), WithTimeout(50*time.Millisecond))
	_, err := r.Load(context.Background(), root)
	require.ErrorIs(t, err, ErrIncludeFetch)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type fetcherFunc func(ctx context.Context, rawURL string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, rawURL string) ([]byte, error) { return f(ctx, rawURL) }

func TestResolve_RemoteRemoteCycle(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	fetch := fetcherFunc(func(_ context.Context, rawURL string) ([]byte, error) {
		calls.Add(1)
		switch rawURL {
		case "https://example.com/a.bake":
			return []byte("include:\n\thttps://example.com/b.bake\na:\n"), nil
		case "https://example.com/b.bake":
			return []byte("include:\n\thttps://example.com/a.bake\nb:\n"), nil
		}
		return nil, errors.New("unexpected url " + rawURL)
	})

	bf, err := bakefile.ParseString("include:\n\thttps://example.com/a.bake\n", "inline")
	require.NoError(t, err)

	err = quietResolver(WithFetcher(fetch)).Resolve(context.Background(), bf, filepath.Join(t.TempDir(), "inline"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, bf.Targets())
	require.EqualValues(t, 2, calls.Load())
}

func TestResolve_RemoteOriginRelativeToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "local.bake", "local:\n")
	defer testutil.MustChdir(t, dir)()

	fetch := fetcherFunc(func(context.Context, string) ([]byte, error) {
		return []byte("include:\n\tlocal.bake\nremote:\n"), nil
	})

	bf, err := bakefile.ParseString("include:\n\thttps://example.com/r.bake\n", "inline")
	require.NoError(t, err)

	origin := filepath.Join(t.TempDir(), "elsewhere", "Bakefile")
	err = quietResolver(WithFetcher(fetch)).Resolve(context.Background(), bf, origin)
	require.NoError(t, err)
	require.Equal(t, []string{"remote", "local"}, bf.Targets())
}

func TestResolve_Canceled(t *testing.T) {
	t.Parallel()

	bf, err := bakefile.ParseString("include:\n\tanything.bake\n", "inline")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = quietResolver().Resolve(ctx, bf, "inline")
	require.ErrorIs(t, err, context.Canceled)
}

func TestUnquote(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		`"a.bake"`:   "a.bake",
		`'a.bake'`:   "a.bake",
		`"a.bake'`:   `"a.bake'`,
		`""`:         "",
		`"`:          `"`,
		`a.bake`:     "a.bake",
		`""x.bake""`: `"x.bake"`,
	}
	for in, want := range tests {
		if got := unquote(in); got != want {
			t.Errorf("unquote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"http://example.com/x", "https://example.com:8443/a/b.bake?v=1"} {
		require.NoError(t, validateURL(ok), ok)
	}
	for _, bad := range []string{"httpfoo", "http//example.com", "mailto:http@example.com", "https://"} {
		err := validateURL(bad)
		require.ErrorIs(t, err, ErrInvalidIncludeURL, bad)
		require.True(t, strings.Contains(err.Error(), bad), bad)
	}
}

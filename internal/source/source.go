// Package source resolves --schema references to schema text.
//
// Supported reference formats:
//   - "builtin:cdba": a schema embedded in the binary
//   - "boards" or "boards@v2.0.0": an alias from the config file, optionally
//     pinned to another ref
//   - "./schema.yaml", "/etc/cdba/schema.json", "board.cue": a local file
//   - "https://...", "git::...", "github.com/acme/lab//schema.yaml": a remote
//     go-getter source, fetched once and cached
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cfgcheck/cfgcheck/internal/builtin"
	"github.com/cfgcheck/cfgcheck/internal/cache"
	"github.com/cfgcheck/cfgcheck/internal/getter"
)

// ErrNoSchema is returned when no schema reference was given.
var ErrNoSchema = errors.New("no schema given: pass --schema or set default_schema in the config file")

// Source is resolved schema text.
type Source struct {
	// Ref is the reference as the user wrote it.
	Ref string

	// Name is the location the schema is compiled under: a local path, a
	// cached copy of a remote file, or a builtin location.
	Name string

	Data []byte
}

// Remote is a go-getter source pinned to an optional ref and, optionally,
// to the SHA-256 of its content.
type Remote struct {
	URL      string
	Ref      string
	Checksum string
}

// Fetcher downloads a single remote file.
type Fetcher interface {
	FetchFile(ctx context.Context, src, dest string, opts getter.FetchOpts) error
}

// Resolver turns schema references into Sources.
type Resolver struct {
	// Fs reads local schema files. Defaults to the OS filesystem.
	Fs afero.Fs

	// Aliases maps names from the config file to remote sources.
	Aliases map[string]Remote

	// Fetcher and Cache are required only for remote references.
	Fetcher Fetcher
	Cache   *cache.Cache

	// Refresh discards cached copies before fetching.
	Refresh bool

	Logger *slog.Logger
}

// Resolve loads the schema named by ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Source, error) {
	if r.Fs == nil {
		r.Fs = afero.NewOsFs()
	}

	if r.Logger == nil {
		r.Logger = slog.Default()
	}

	if strings.TrimSpace(ref) == "" {
		return nil, ErrNoSchema
	}

	if name, ok := strings.CutPrefix(ref, builtin.Prefix); ok {
		data, err := builtin.Lookup(name)
		if err != nil {
			return nil, err
		}

		r.Logger.Debug("using builtin schema", "name", name)

		return &Source{Ref: ref, Name: builtin.Location(name), Data: data}, nil
	}

	if name, pin := splitAtRef(ref); name != "" {
		if alias, ok := r.Aliases[name]; ok {
			// The alias checksum describes its own ref, not a pinned one.
			if pin != "" {
				alias.Ref, alias.Checksum = pin, ""
			}

			r.Logger.Debug("resolved schema alias", "name", name, "url", alias.URL, "ref", alias.Ref)

			return r.fetch(ctx, ref, alias)
		}
	}

	isRemote := getter.IsRemote(ref)

	exists, err := afero.Exists(r.Fs, ref)
	if err != nil {
		// URLs are often not valid paths at all (too long, odd characters).
		if !isRemote {
			return nil, fmt.Errorf("checking %s: %w", ref, err)
		}

		r.Logger.Debug("schema reference is not a readable local path", "ref", ref, "err", err)
	}

	if !exists && isRemote {
		return r.fetch(ctx, ref, Remote{URL: ref})
	}

	data, err := afero.ReadFile(r.Fs, filepath.Clean(ref))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}

	return &Source{Ref: ref, Name: ref, Data: data}, nil
}

func (r *Resolver) fetch(ctx context.Context, ref string, remote Remote) (*Source, error) {
	if r.Fetcher == nil || r.Cache == nil {
		return nil, fmt.Errorf("cannot fetch remote schema %s: no fetcher configured", remote.URL)
	}

	if r.Refresh {
		if err := r.Cache.Invalidate(remote.URL); err != nil {
			return nil, err
		}
	}

	// A changed checksum invalidates the entry like a changed ref does.
	version := remote.Ref
	if remote.Checksum != "" {
		version += "+sha256:" + remote.Checksum
	}

	path, err := r.Cache.GetOrFetch(remote.URL, version, getter.FileName(remote.URL), func(dest string) error {
		return r.Fetcher.FetchFile(ctx, remote.URL, dest, getter.FetchOpts{Ref: remote.Ref, Checksum: remote.Checksum})
	})
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading cached schema %s: %w", path, err)
	}

	return &Source{Ref: ref, Name: path, Data: data}, nil
}

// splitAtRef splits "boards@v2.1.0" into ("boards", "v2.1.0").
// If no @ is present, ref is empty.
func splitAtRef(input string) (name, ref string) {
	idx := strings.LastIndex(input, "@")
	if idx < 0 {
		return input, ""
	}

	return input[:idx], input[idx+1:]
}

package getter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgcheck/cfgcheck/internal/getter"
)

func TestNew(t *testing.T) {
	t.Parallel()

	g := getter.New(nil)
	assert.NotNil(t, g)
}

func TestFetchFile_HTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schemas/boards.yaml" {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte("type: object\n"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "boards.yaml")

	err := getter.New(nil).FetchFile(context.Background(), srv.URL+"/schemas/boards.yaml", dest, getter.FetchOpts{})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "type: object\n", string(data))
}

func TestFetchFile_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "missing.yaml")

	err := getter.New(nil).FetchFile(context.Background(), srv.URL+"/missing.yaml", dest, getter.FetchOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching file")
}

func TestFetchFile_Checksum(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("type: object\n"))
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name     string
		checksum string
		wantErr  bool
	}{
		{name: "match", checksum: "34ea4d90d89b8e77e1a6c1c6c5e16b5fc7b08ad25b5d244a4a3822c27e7c740d"},
		{name: "mismatch", checksum: strings.Repeat("0", 64), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dest := filepath.Join(t.TempDir(), "boards.yaml")

			err := getter.New(nil).FetchFile(context.Background(), srv.URL+"/boards.yaml", dest, getter.FetchOpts{Checksum: tt.checksum})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "fetching file")

				return
			}

			require.NoError(t, err)
		})
	}
}

package geography

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

func TestHTTPDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenants/T1/nodes", r.URL.Path)
		switch r.URL.Query().Get("path") {
		case "np.bagmati":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":4821,"level":2,"parent_id":1,"path":"NP.Bagmati","selectable":true}`))
		case "np.broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL, 0)
	ctx := context.Background()

	entry, err := dir.Lookup(ctx, "T1", "np.bagmati")
	require.NoError(t, err)
	assert.Equal(t, Entry{Path: "np.bagmati", Selectable: true}, entry)

	_, err = dir.Lookup(ctx, "T1", "np.unknown")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = dir.Lookup(ctx, "T1", "np.broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sentinel.ErrNotFound)
}

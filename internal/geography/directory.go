package geography

import (
	"context"
	"strings"
	"sync"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

// Entry is the directory's answer for one path. Only Path ever leaves this
// package, wrapped in a Reference.
type Entry struct {
	Path       string
	Selectable bool
}

// Directory looks up a canonical path in the external geography subsystem.
// Implementations return sentinel.ErrNotFound for unknown paths and any other
// error for transport or server failures.
type Directory interface {
	Lookup(ctx context.Context, tenantID id.TenantID, path string) (Entry, error)
}

// StaticDirectory serves a fixed per-tenant set of paths. Used in development
// and tests in place of the external service.
type StaticDirectory struct {
	mu    sync.RWMutex
	paths map[id.TenantID]map[string]bool
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{paths: make(map[id.TenantID]map[string]bool)}
}

// Add registers selectable paths for a tenant.
func (d *StaticDirectory) Add(tenantID id.TenantID, paths ...string) {
	d.set(tenantID, true, paths...)
}

// AddGrouping registers paths that exist but cannot be assigned to a member,
// e.g. a country root.
func (d *StaticDirectory) AddGrouping(tenantID id.TenantID, paths ...string) {
	d.set(tenantID, false, paths...)
}

func (d *StaticDirectory) set(tenantID id.TenantID, selectable bool, paths ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	byPath, ok := d.paths[tenantID]
	if !ok {
		byPath = make(map[string]bool)
		d.paths[tenantID] = byPath
	}
	for _, p := range paths {
		byPath[strings.ToLower(strings.TrimSpace(p))] = selectable
	}
}

func (d *StaticDirectory) Lookup(_ context.Context, tenantID id.TenantID, path string) (Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	selectable, ok := d.paths[tenantID][path]
	if !ok {
		return Entry{}, sentinel.ErrNotFound
	}
	return Entry{Path: path, Selectable: selectable}, nil
}

package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

// InMemoryDirectory is a tenant-partitioned account store for development and tests.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[id.TenantID]map[id.IdentityRef]Account
	seq      int
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{accounts: make(map[id.TenantID]map[id.IdentityRef]Account)}
}

// Seed registers an existing account.
func (d *InMemoryDirectory) Seed(tenantID id.TenantID, ref id.IdentityRef, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(Account{Ref: ref, TenantID: tenantID, Email: strings.ToLower(email)})
}

func (d *InMemoryDirectory) put(a Account) {
	byRef, ok := d.accounts[a.TenantID]
	if !ok {
		byRef = make(map[id.IdentityRef]Account)
		d.accounts[a.TenantID] = byRef
	}
	byRef[a.Ref] = a
}

func (d *InMemoryDirectory) GetUser(_ context.Context, tenantID id.TenantID, ref id.IdentityRef) (Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[tenantID][ref]
	if !ok {
		return Account{}, sentinel.ErrNotFound
	}
	return a, nil
}

func (d *InMemoryDirectory) FindByEmail(_ context.Context, tenantID id.TenantID, email string) (Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	email = strings.ToLower(email)
	for _, a := range d.accounts[tenantID] {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, sentinel.ErrNotFound
}

func (d *InMemoryDirectory) CreateUser(_ context.Context, tenantID id.TenantID, account NewAccount) (Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	a := Account{
		Ref:      id.IdentityRef(fmt.Sprintf("%s-acct-%d", tenantID, d.seq)),
		TenantID: tenantID,
		Email:    strings.ToLower(account.Email),
	}
	d.put(a)
	return a, nil
}

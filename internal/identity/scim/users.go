package scim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dr-roshyara/public-digit-sub005/internal/identity"
	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/email"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

const contentType = "application/scim+json"

type emailValue struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary,omitempty"`
}

type phoneValue struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type tenantExtension struct {
	Tenant string `json:"tenant"`
}

type userResource struct {
	Schemas  []string     `json:"schemas,omitempty"`
	ID       string       `json:"id,omitempty"`
	UserName string       `json:"userName"`
	Emails   []emailValue `json:"emails"`
	Phones   []phoneValue `json:"phoneNumbers,omitempty"`
	Name     struct {
		GivenName  string `json:"givenName"`
		FamilyName string `json:"familyName"`
	} `json:"name"`
	Tenant *tenantExtension `json:"urn:scim:schemas:extension:membership:2.0:User,omitempty"`
}

type listResponse struct {
	TotalResults int            `json:"totalResults"`
	Resources    []userResource `json:"Resources"`
}

func userName(tenantID id.TenantID, addr string) string {
	return tenantID.String() + "/" + strings.ToLower(addr)
}

func (u userResource) toAccount() identity.Account {
	a := identity.Account{Ref: id.IdentityRef(u.ID)}
	if u.Tenant != nil {
		a.TenantID = id.TenantID(u.Tenant.Tenant)
	}
	if len(u.Emails) > 0 {
		a.Email = u.Emails[0].Value
	}
	return a
}

// GetUser fetches an account and checks it belongs to tenantID.
func (c *Client) GetUser(ctx context.Context, tenantID id.TenantID, ref id.IdentityRef) (identity.Account, error) {
	endpoint := fmt.Sprintf("%s/scim2/Users/%s", c.BaseURL, url.PathEscape(ref.String()))
	var res userResource
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return identity.Account{}, err
	}
	account := res.toAccount()
	if account.TenantID != tenantID {
		return identity.Account{}, sentinel.ErrNotFound
	}
	return account, nil
}

// FindByEmail searches by the tenant-qualified user name.
func (c *Client) FindByEmail(ctx context.Context, tenantID id.TenantID, addr string) (identity.Account, error) {
	filter := fmt.Sprintf(`userName eq "%s"`, userName(tenantID, addr))
	endpoint := fmt.Sprintf("%s/scim2/Users?filter=%s", c.BaseURL, url.QueryEscape(filter))
	var res listResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return identity.Account{}, err
	}
	for _, u := range res.Resources {
		if account := u.toAccount(); account.TenantID == tenantID {
			return account, nil
		}
	}
	return identity.Account{}, sentinel.ErrNotFound
}

// CreateUser creates an account and asks the provider to send a password setup mail.
func (c *Client) CreateUser(ctx context.Context, tenantID id.TenantID, account identity.NewAccount) (identity.Account, error) {
	body := userResource{
		Schemas:  []string{"urn:ietf:params:scim:schemas:core:2.0:User", tenantSchema},
		UserName: userName(tenantID, account.Email),
		Emails:   []emailValue{{Value: strings.ToLower(account.Email), Primary: true}},
		Tenant:   &tenantExtension{Tenant: tenantID.String()},
	}
	body.Name.GivenName, body.Name.FamilyName = email.SplitFullName(account.FullName)
	if account.Phone != "" {
		body.Phones = []phoneValue{{Value: account.Phone, Type: "mobile"}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return identity.Account{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	var res userResource
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/scim2/Users", payload, &res); err != nil {
		return identity.Account{}, err
	}
	if res.ID == "" {
		return identity.Account{}, fmt.Errorf("provider returned account without id")
	}
	return res.toAccount(), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentType)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, res.Body)
		return sentinel.ErrNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("scim %s failed, status code: %d", method, res.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package storeclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/balanoilmart/ledger_backend/models"
)

func accountsPath(kind models.AccountKind) string {
	return "/api/" + kind.ResourceName()
}

func accountPath(kind models.AccountKind, id string) string {
	return accountsPath(kind) + "/" + url.PathEscape(id)
}

func (c *Client) ListAccounts(ctx context.Context, kind models.AccountKind) ([]*models.LedgerAccount, error) {
	var out []*models.LedgerAccount
	if err := c.do(ctx, "list "+kind.ResourceName(), http.MethodGet, accountsPath(kind), kind.ResourceName(), "", nil, &out); err != nil {
		return nil, err
	}
	for _, a := range out {
		a.Normalize(kind)
	}
	return out, nil
}

func (c *Client) GetAccount(ctx context.Context, kind models.AccountKind, id string) (*models.LedgerAccount, error) {
	var out models.LedgerAccount
	if err := c.do(ctx, "get "+kind.ResourceName(), http.MethodGet, accountPath(kind, id), kind.ResourceName(), id, nil, &out); err != nil {
		return nil, err
	}
	return out.Normalize(kind), nil
}

func (c *Client) CreateAccount(ctx context.Context, kind models.AccountKind, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	var out models.LedgerAccount
	if err := c.do(ctx, "create "+kind.ResourceName(), http.MethodPost, accountsPath(kind), kind.ResourceName(), "", input, &out); err != nil {
		return nil, err
	}
	return out.Normalize(kind), nil
}

func (c *Client) AddCredit(ctx context.Context, kind models.AccountKind, id string, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	var out models.LedgerAccount
	if err := c.do(ctx, "add credit", http.MethodPost, accountPath(kind, id)+"/add-credit", kind.ResourceName(), id, input, &out); err != nil {
		return nil, err
	}
	return out.Normalize(kind), nil
}

func (c *Client) AddPayment(ctx context.Context, kind models.AccountKind, id string, input *models.NewLedgerEntry) (*models.LedgerAccount, error) {
	var out models.LedgerAccount
	if err := c.do(ctx, "add payment", http.MethodPost, accountPath(kind, id)+"/add-payment", kind.ResourceName(), id, input, &out); err != nil {
		return nil, err
	}
	return out.Normalize(kind), nil
}

func (c *Client) AddManufacturerProduct(ctx context.Context, id string, input *models.NewManufacturerProduct) (*models.LedgerAccount, error) {
	kind := models.AccountKindManufacturer
	var out models.LedgerAccount
	if err := c.do(ctx, "add product", http.MethodPost, accountPath(kind, id)+"/add-product", kind.ResourceName(), id, input, &out); err != nil {
		return nil, err
	}
	return out.Normalize(kind), nil
}

package exchange

import (
	"context"
	"fmt"
	"net/url"
)

// userResponse is the raw response for the current-user endpoint.
type userResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// accountsResponse is the raw response for the accounts endpoint.
type accountsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	Pagination pagination `json:"pagination"`
}

// transactionsResponse is the raw response for an account's transactions page.
type transactionsResponse struct {
	Data       []apiTransaction `json:"data"`
	Pagination pagination       `json:"pagination"`
}

type pagination struct {
	NextURI string `json:"next_uri"`
}

// apiTransaction is one raw transaction entry.
type apiTransaction struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Amount apiAmount `json:"amount"`
	Native apiAmount `json:"native_amount"`
	// RFC3339 UTC, e.g. "2024-01-02T15:04:05Z"
	CreatedAt string `json:"created_at"`
}

type apiAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// GetUserID retrieves the authenticated account identifier.
func (c *Client) GetUserID(ctx context.Context) (string, error) {
	var resp userResponse
	if err := c.get(ctx, "user", &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("%w: empty user id in response", ErrUnreachable)
	}
	return resp.Data.ID, nil
}

// GetAccountIDs retrieves the ids of all wallet accounts.
func (c *Client) GetAccountIDs(ctx context.Context) ([]string, error) {
	var resp accountsResponse
	if err := c.get(ctx, "accounts", &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Data))
	for _, a := range resp.Data {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// GetTransactionsPage retrieves one page of an account's transactions.
// Returns the page and the cursor for the next page, empty when exhausted.
func (c *Client) GetTransactionsPage(ctx context.Context, accountID, startingAfter string) ([]apiTransaction, string, error) {
	endpoint := fmt.Sprintf("accounts/%s/transactions", url.PathEscape(accountID))
	if startingAfter != "" {
		endpoint += "?starting_after=" + url.QueryEscape(startingAfter)
	}

	var resp transactionsResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, "", err
	}
	return resp.Data, nextCursor(resp.Pagination.NextURI), nil
}

// nextCursor extracts the starting_after cursor from a next_uri value.
// Returns "" when there is no further page.
func nextCursor(nextURI string) string {
	if nextURI == "" {
		return ""
	}
	u, err := url.Parse(nextURI)
	if err != nil {
		return ""
	}
	return u.Query().Get("starting_after")
}

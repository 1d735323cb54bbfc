package contact

import "net/http"

func (c *Client) fakeReceipt() Receipt {
	if c == nil {
		c = NewClient("")
	}
	return Receipt{
		ID:     c.newID(),
		Status: http.StatusOK,
		Fake:   true,
	}
}

package apiclient

import (
	"context"
	"encoding/json"
)

// Caller is a per-request identity: where the credential comes from and
// where refreshed tokens go. tokenstore.Handle implements it.
type Caller interface {
	Credential() (Credential, bool)
	TokenKeeper
}

// Call issues method path on behalf of caller. A nil caller, or one without
// a stored token, sends the request unauthenticated.
func (c *Client) Call(ctx context.Context, caller Caller, method, path string, payload any) (json.RawMessage, error) {
	return c.Do(ctx, requestFor(caller, method, path, payload))
}

// CallInto is Call followed by decoding the data into out.
func (c *Client) CallInto(ctx context.Context, caller Caller, method, path string, payload, out any) error {
	return c.DoInto(ctx, requestFor(caller, method, path, payload), out)
}

func requestFor(caller Caller, method, path string, payload any) Request {
	req := Request{Path: path, Method: method, Payload: payload}
	if caller == nil {
		return req
	}
	if cred, ok := caller.Credential(); ok {
		req.Credential = cred
	}
	req.Keeper = caller
	return req
}

package shinydb

import (
	"encoding/json"

	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/shinyerr"
	"github.com/shinydb/shinydb-go/wire"
)

// Flush sends a durability barrier; the server acknowledges once all prior
// writes on the connection are durable.
func (c *Client) Flush() error {
	_, err := c.DoOperation(wire.Operation{Kind: wire.OpFlush})
	return err
}

// Ping uses Flush as a health probe.
func (c *Client) Ping() error {
	return c.Flush()
}

// authPayload is the credential encoding sent to the server for both
// authenticate and authenticate_api_key; the exact wire form is a server
// concern, so this stays a small private JSON object rather than a public
// type.
type authPayload struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// Authenticate logs in with a username and password.
func (c *Client) Authenticate(username, password string) (AuthResult, error) {
	payload, _ := json.Marshal(authPayload{Username: username, Password: password})
	reply, err := c.DoOperation(wire.Operation{Kind: wire.OpAuthenticate, Payload: payload})
	if err != nil {
		return AuthResult{}, err
	}
	if reply.Op.Status != wire.StatusOK {
		return AuthResult{}, shinyerr.ErrOperationFailed
	}
	return ParseAuthResult(reply.Op.Payload)
}

// AuthenticateAPIKey logs in with a pre-issued API key.
func (c *Client) AuthenticateAPIKey(apiKey string) (AuthResult, error) {
	payload, _ := json.Marshal(authPayload{APIKey: apiKey})
	reply, err := c.DoOperation(wire.Operation{Kind: wire.OpAuthenticateApiKey, Payload: payload})
	if err != nil {
		return AuthResult{}, err
	}
	if reply.Op.Status != wire.StatusOK {
		return AuthResult{}, shinyerr.ErrOperationFailed
	}
	return ParseAuthResult(reply.Op.Payload)
}

// Logout ends the current session.
func (c *Client) Logout() error {
	_, err := c.DoOperation(wire.Operation{Kind: wire.OpLogout})
	return err
}

// Create declares a new entity (space, store, or index) named by namespace.
func (c *Client) Create(namespace string) error {
	reply, err := c.DoOperation(wire.Operation{Kind: wire.OpCreate, Namespace: namespace})
	if err != nil {
		return err
	}
	if reply.Op.Status != wire.StatusOK {
		return shinyerr.ErrOperationFailed
	}
	return nil
}

// Drop removes docType (a space, store, or index) named by name.
func (c *Client) Drop(docType, name string) error {
	reply, err := c.DoOperation(wire.Operation{Kind: wire.OpDrop, Namespace: queryir.Namespace(docType, name, "")})
	if err != nil {
		return err
	}
	if reply.Op.Status != wire.StatusOK {
		return shinyerr.ErrOperationFailed
	}
	return nil
}

// List enumerates entities of docType, optionally scoped to namespace.
func (c *Client) List(docType, namespace string) ([]string, error) {
	ns := docType
	if namespace != "" {
		ns = queryir.Namespace(docType, namespace, "")
	}
	reply, err := c.DoOperation(wire.Operation{Kind: wire.OpList, Namespace: ns})
	if err != nil {
		return nil, err
	}
	if reply.Op.Status != wire.StatusOK {
		return nil, shinyerr.ErrOperationFailed
	}

	var names []string
	if len(reply.Op.Payload) > 0 {
		if err := json.Unmarshal(reply.Op.Payload, &names); err != nil {
			return nil, shinyerr.ErrInvalidResponse
		}
	}
	return names, nil
}

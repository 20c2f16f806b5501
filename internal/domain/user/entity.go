// internal/domain/user/entity.go
package user

import (
	"bytes"
	"encoding/json"
)

// Row is one line of the users table.
type Row struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	IsActive  bool        `json:"isActive"`
	LastLogin *string     `json:"lastLogin,omitempty"`
}

// DecodeRows accepts both listing shapes the backend uses: a bare array or
// an object with a rows array. Anything else is an empty list.
func DecodeRows(data json.RawMessage) ([]Row, error) {
	data = bytes.TrimSpace(data)
	rows := []Row{}
	if len(data) == 0 {
		return rows, nil
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var wrapped struct {
		Rows []Row `json:"rows"`
	}
	if data[0] == '{' {
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Rows != nil {
			rows = wrapped.Rows
		}
	}
	return rows, nil
}

// internal/domain/user/dto.go
package user

import (
	"fmt"
	"regexp"
	"strings"
)

type ListType string

const (
	Clients ListType = "clients"
	Members ListType = "members"
)

// ListQuery selects one page of the clients or members listing.
type ListQuery struct {
	Type    ListType `form:"type"`
	Search  string   `form:"search"`
	Page    int      `form:"page"`
	PerPage int      `form:"per_page"`
}

func (q *ListQuery) Normalize() error {
	switch q.Type {
	case "":
		q.Type = Clients
	case Clients, Members:
	default:
		return fmt.Errorf("unknown user list type %q", q.Type)
	}
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 50
	}
	return nil
}

// Path is the backend resource for the listing.
func (q ListQuery) Path() string {
	return "users/" + string(q.Type)
}

// Params are the query parameters sent with the listing.
func (q ListQuery) Params() map[string]any {
	return map[string]any{
		"search":   q.Search,
		"page":     q.Page,
		"per_page": q.PerPage,
	}
}

// RegisterForm is the admin "new user" form as the page posts it.
type RegisterForm struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeatPassword"`
	Phone          string `json:"phone"`
	DNI            string `json:"dni"`
	BirthDate      string `json:"birthDate"`
	Province       string `json:"province"`
	PostalCode     string `json:"postalCode"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Country        string `json:"country"`
}

// RegisterPayload is the snake_case body the backend's users endpoint takes.
type RegisterPayload struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Role                 string `json:"role"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Phone                string `json:"phone"`
	DNI                  string `json:"dni"`
	BirthDate            string `json:"birth_date"`
	Province             string `json:"province"`
	PostalCode           string `json:"postal_code"`
	Address              string `json:"address"`
	City                 string `json:"city"`
	Country              string `json:"country"`
	IsActive             bool   `json:"is_active"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Validate runs the checks done before anything is sent. The result is
// keyed by form field.
func (f RegisterForm) Validate() map[string][]string {
	if f.Password != f.RepeatPassword {
		return map[string][]string{"repeatPassword": {"passwords do not match"}}
	}
	return nil
}

// Payload normalizes the form into the backend's shape.
func (f RegisterForm) Payload() RegisterPayload {
	role := f.Role
	if role == "" {
		role = "client"
	}
	country := f.Country
	if country == "" {
		country = "España"
	}
	return RegisterPayload{
		FirstName:            strings.TrimSpace(f.FirstName),
		LastName:             strings.TrimSpace(f.LastName),
		Email:                strings.ToLower(strings.TrimSpace(f.Email)),
		Role:                 role,
		Password:             f.Password,
		PasswordConfirmation: f.RepeatPassword,
		Phone:                whitespace.ReplaceAllString(f.Phone, ""),
		DNI:                  strings.ToUpper(strings.TrimSpace(f.DNI)),
		BirthDate:            f.BirthDate,
		Province:             strings.TrimSpace(f.Province),
		PostalCode:           strings.TrimSpace(f.PostalCode),
		Address:              strings.TrimSpace(f.Address),
		City:                 strings.TrimSpace(f.City),
		Country:              country,
		IsActive:             true,
	}
}

// backendToForm maps the backend's snake_case field names onto the form's.
// Fields not listed keep their name.
var backendToForm = map[string]string{
	"first_name":            "firstName",
	"last_name":             "lastName",
	"password_confirmation": "repeatPassword",
	"birth_date":            "birthDate",
	"postal_code":           "postalCode",
}

// FormFieldErrors renames backend validation errors to form field names,
// keeping only the first message of each.
func FormFieldErrors(errs map[string][]string) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string][]string, len(errs))
	for k, msgs := range errs {
		if mapped, ok := backendToForm[k]; ok {
			k = mapped
		}
		if len(msgs) > 0 {
			out[k] = msgs[:1]
		}
	}
	return out
}

// UpdateForm is the edit form of a user record. Pointers distinguish
// "absent" from "empty".
type UpdateForm struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	DNI        *string `json:"dni"`
	Role       string  `json:"role"`
	IsActive   bool    `json:"isActive"`
	Status     string  `json:"status"`
}

// Payload keeps the backend's camelCase names and drops fields that are
// absent or blank.
func (f UpdateForm) Payload() map[string]any {
	out := map[string]any{"isActive": f.IsActive}
	put := func(key string, v *string) {
		if v == nil {
			return
		}
		if s := strings.TrimSpace(*v); s != "" {
			out[key] = s
		}
	}
	put("firstName", f.FirstName)
	put("lastName", f.LastName)
	put("email", f.Email)
	put("phone", f.Phone)
	put("address", f.Address)
	put("city", f.City)
	put("postalCode", f.PostalCode)
	put("country", f.Country)
	put("dni", f.DNI)
	if e, ok := out["email"].(string); ok {
		out["email"] = strings.ToLower(e)
	}
	if f.Role != "" {
		out["role"] = f.Role
	}
	if f.Status != "" {
		out["status"] = f.Status
	}
	return out
}

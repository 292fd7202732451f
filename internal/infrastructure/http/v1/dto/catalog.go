package dto

import (
	"strings"

	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/domain/catalogs/contact"
)

// --- Accounts ---

type CreateAccountRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

func (r CreateAccountRequest) ToEntity() *account.Account {
	return account.NewAccount(r.Code, r.Name)
}

type UpdateAccountRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Version int    `json:"version" binding:"required"`
}

func (r UpdateAccountRequest) ApplyTo(a *account.Account) *account.Account {
	a.Code = strings.TrimSpace(r.Code)
	a.Name = strings.TrimSpace(r.Name)
	a.Version = r.Version
	return a
}

type AccountResponse struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Code    string `json:"code"`
	Name    string `json:"name"`
}

func FromAccount(a *account.Account) any {
	return AccountResponse{ID: a.ID.String(), Version: a.Version, Code: a.Code, Name: a.Name}
}

// --- Contacts ---

type CreateContactRequest struct {
	Code      string `json:"code" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r CreateContactRequest) ToEntity() *contact.Contact {
	return contact.NewContact(r.Code, r.FirstName, r.LastName)
}

type UpdateContactRequest struct {
	Code      string `json:"code" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Version   int    `json:"version" binding:"required"`
}

func (r UpdateContactRequest) ApplyTo(c *contact.Contact) *contact.Contact {
	c.Code = strings.TrimSpace(r.Code)
	c.FirstName = strings.TrimSpace(r.FirstName)
	c.LastName = strings.TrimSpace(r.LastName)
	c.Version = r.Version
	return c
}

type ContactResponse struct {
	ID          string `json:"id"`
	Version     int    `json:"version"`
	Code        string `json:"code"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
}

func FromContact(c *contact.Contact) any {
	return ContactResponse{
		ID:          c.ID.String(),
		Version:     c.Version,
		Code:        c.Code,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DisplayName: c.DisplayName(),
	}
}

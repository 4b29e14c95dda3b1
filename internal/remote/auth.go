package remote

import (
	"context"
	"fmt"

	"github.com/xaenox/vfied-bot/internal/models"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=80"`
}

type authResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (models.User, error) {
	if err := c.validate.Struct(creds); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials: %w", err)
	}
	return c.authenticate(ctx, c.paths.Login, creds)
}

func (c *Client) Register(ctx context.Context, reg Registration) (models.User, error) {
	if err := c.validate.Struct(reg); err != nil {
		return models.User{}, fmt.Errorf("invalid registration: %w", err)
	}
	return c.authenticate(ctx, c.paths.Register, reg)
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (models.User, error) {
	var resp authResponse
	status, err := c.postJSON(ctx, path, payload, &resp)
	if err != nil {
		return models.User{}, err
	}
	if status < 200 || status > 299 || !resp.Success || resp.User == nil {
		return models.User{}, rejection(resp.Message, "authentication failed")
	}
	return *resp.User, nil
}

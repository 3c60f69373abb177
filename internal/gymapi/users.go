package gymapi

import (
	"context"
	"net/http"
)

func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	users := []User{}
	if err := c.getJSON(ctx, token, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, token string, id ID) (*User, error) {
	var user User
	if err := c.getJSON(ctx, token, idPath("/users", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, user User) (*User, error) {
	var created User
	if err := c.sendJSON(ctx, token, http.MethodPost, "/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id ID, user User) (*User, error) {
	user.ID = ""
	var updated User
	if err := c.sendJSON(ctx, token, http.MethodPut, idPath("/users", id), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id ID) error {
	_, err := c.Do(ctx, token, http.MethodDelete, idPath("/users", id), nil)
	return err
}

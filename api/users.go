package api

import "context"

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
	UserBlocked  UserStatus = "BLOCKED"
)

// User is a backend account. Distinct from token.User, which is the
// identity decoded out of the access token.
type User struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenantId"`
	Username       string     `json:"username"`
	Email          *string    `json:"email,omitempty"`
	FullName       string     `json:"fullName"`
	Status         UserStatus `json:"status"`
	FailedAttempts *int       `json:"failedAttempts,omitempty"`
	LockedUntil    *string    `json:"lockedUntil,omitempty"`
	LastLoginAt    *string    `json:"lastLoginAt,omitempty"`
	Language       *string    `json:"language,omitempty"`
	Timezone       *string    `json:"timezone,omitempty"`
	SystemAdmin    bool       `json:"systemAdmin"`
	Roles          []string   `json:"roles,omitempty"`
	RoleIDs        []int      `json:"roleIds,omitempty"`
}

// CreateUserRequest carries the one field (password) that never appears
// in a User response.
type CreateUserRequest struct {
	TenantID string     `json:"tenantId"`
	Username string     `json:"username"`
	Email    *string    `json:"email,omitempty"`
	Password string     `json:"password"`
	FullName string     `json:"fullName"`
	Status   UserStatus `json:"status,omitempty"`
	RoleIDs  []int      `json:"roleIds,omitempty"`
}

// Role is an assignable permission group.
type Role struct {
	ID          int    `json:"id"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// Permission is a single grantable capability.
type Permission struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.get(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.get(ctx, "/users/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	var out User
	if err := c.post(ctx, "/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in User) (*User, error) {
	var out User
	if err := c.put(ctx, "/users/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.del(ctx, "/users/"+id)
}

func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.get(ctx, "/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPermissions(ctx context.Context) ([]Permission, error) {
	var out []Permission
	if err := c.get(ctx, "/permissions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

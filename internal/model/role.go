package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is a member's access level within a tenant. The declaration order is
// the permission order: RoleAgent < RoleManager < RoleAdmin.
type Role int8

const (
	RoleAgent Role = iota
	RoleManager
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleAgent:   "AGENT",
	RoleManager: "MANAGER",
	RoleAdmin:   "ADMIN",
}

// ParseRole converts the stored/wire form into a Role
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleAgent, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "AGENT"
}

// AtLeast reports whether r grants the permissions of min
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Value implements driver.Valuer so roles are stored as text
func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan implements sql.Scanner
func (r *Role) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", value)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

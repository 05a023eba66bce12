package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Principal types carried in the vault "type" field
const (
	PrincipalUser   = "user"
	PrincipalTenant = "tenant"
)

// RoleTenant marks legacy vaults where user_id holds the tenant id
const RoleTenant = "tenant"

var errNotInteger = errors.New("value is not an integer")

// RawID is an identifier as it appears in a vault or token: a JSON number,
// a numeric string, or null/absent. Coercion is deferred to Int64 so that a
// malformed id is reported against the field that needed it.
type RawID struct {
	raw json.RawMessage
}

// IDOf wraps an integer id
func IDOf(v int64) RawID {
	return RawID{raw: json.RawMessage(strconv.FormatInt(v, 10))}
}

// IDPtr wraps an optional integer id; nil gives an unset RawID
func IDPtr(v *int64) RawID {
	if v == nil {
		return RawID{}
	}
	return IDOf(*v)
}

func (r *RawID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		r.raw = nil
		return nil
	}
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r RawID) MarshalJSON() ([]byte, error) {
	if r.raw == nil {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// IsZero reports an unset id (absent or null)
func (r RawID) IsZero() bool {
	return r.raw == nil
}

// Int64 coerces the id to an integer. Integral numbers and decimal strings
// are accepted; booleans, fractions, objects and arrays are not.
func (r RawID) Int64() (int64, error) {
	if r.raw == nil {
		return 0, errNotInteger
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(r.raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("%w: %s", errNotInteger, t)
		}
		return int64(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotInteger, t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s", errNotInteger, string(r.raw))
	}
}

func (r RawID) String() string {
	if r.raw == nil {
		return "null"
	}
	return string(r.raw)
}

// Vault is the session payload stored under session:<id>
type Vault struct {
	AccessToken string `json:"access_token"`
	UserID      RawID  `json:"user_id,omitzero"`
	TenantID    RawID  `json:"tenant_id,omitzero"`
	Role        string `json:"role,omitempty"`
	Type        string `json:"type,omitempty"`
}

// DecodeVault parses a vault blob. Wrong-typed fields are rejected rather than
// defaulted. A missing access token decodes as empty and fails verification.
func DecodeVault(data []byte) (*Vault, error) {
	var v Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Encode serializes the vault for the session store
func (v *Vault) Encode() ([]byte, error) {
	return json.Marshal(v)
}

// IsTenantPrincipal reports whether the vault's user_id names a tenant
func (v *Vault) IsTenantPrincipal() bool {
	return v.Role == RoleTenant || v.Type == PrincipalTenant
}

package models

import (
	"fmt"

	"github.com/julianstephens/mellow/internal/constants"
)

// Owner identifies whose logs are being read or written: a tenant (guild or
// the DM sentinel) and a member within it.
type Owner struct {
	TenantID string
	UserID   string
}

func NewOwner(guildID, userID string) Owner {
	tenant := guildID
	if tenant == "" {
		tenant = constants.DMTenant
	}
	return Owner{TenantID: tenant, UserID: userID}
}

// IsDM reports whether the owner is scoped to direct messages.
func (o Owner) IsDM() bool {
	return o.TenantID == constants.DMTenant
}

func (o Owner) String() string {
	return o.TenantID + "/" + o.UserID
}

// Validate rejects identifiers that are not snowflakes. Owners are turned
// into file paths, so nothing but digits (or the DM sentinel) is allowed.
func (o Owner) Validate() error {
	if o.TenantID != constants.DMTenant && !isSnowflake(o.TenantID) {
		return fmt.Errorf("invalid tenant id: %q", o.TenantID)
	}
	if !isSnowflake(o.UserID) {
		return fmt.Errorf("invalid user id: %q", o.UserID)
	}
	return nil
}

func isSnowflake(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

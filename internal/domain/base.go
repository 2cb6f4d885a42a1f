package domain

import (
	"time"
)

type BaseModel struct {
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PrivateString string

func (PrivateString) MarshalJSON() ([]byte, error) {
	return []byte(`""`), nil
}

func (PrivateString) String() string {
	return ""
}

const (
	DisabledReasonAdminEdit   = "admin edit action"
	DisabledReasonAdminCreate = "admin create action"
	DisabledReasonDeleted     = "deleted"
)

package entities

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditCreateUser              AuditAction = "CREATE_USER"
	AuditUpdateUser              AuditAction = "UPDATE_USER"
	AuditUpdateUserImage         AuditAction = "UPDATE_USER_IMAGE"
	AuditDeleteUser              AuditAction = "DELETE_USER"
	AuditLogin                   AuditAction = "LOGIN"
	AuditSetup2FA                AuditAction = "SETUP_2FA"
	AuditVerify2FA               AuditAction = "VERIFY_2FA"
	AuditCreateRole              AuditAction = "CREATE_ROLE"
	AuditCreatePermission        AuditAction = "CREATE_PERMISSION"
	AuditAssignRole              AuditAction = "ASSIGN_ROLE"
	AuditRevokeRole              AuditAction = "REVOKE_ROLE"
	AuditAssignPermission        AuditAction = "ASSIGN_PERMISSION"
	AuditRevokePermission        AuditAction = "REVOKE_PERMISSION"
	AuditCreateHymnBook          AuditAction = "CREATE_HYMN_BOOK"
	AuditUpdateHymnBook          AuditAction = "UPDATE_HYMN_BOOK"
	AuditUpdateHymnBookThumbnail AuditAction = "UPDATE_HYMN_BOOK_THUMBNAIL"
	AuditDeleteHymnBook          AuditAction = "DELETE_HYMN_BOOK"
	AuditCreateHymn              AuditAction = "CREATE_HYMN"
	AuditUpdateHymn              AuditAction = "UPDATE_HYMN"
	AuditDeleteHymn              AuditAction = "DELETE_HYMN"
	AuditCreateMapping           AuditAction = "CREATE_MAPPING"
	AuditUpdateMapping           AuditAction = "UPDATE_MAPPING"
	AuditDeleteMapping           AuditAction = "DELETE_MAPPING"
)

// AuditLog is append-only history of administrative actions. UserID is the
// acting user, nil for system actions.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	Action    AuditAction    `gorm:"index;size:50;not null" json:"action"`
	Details   string         `gorm:"size:1000" json:"details"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	Timestamp time.Time      `gorm:"index;not null" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

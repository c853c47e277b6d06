package model

// AuditStatus is the audit state of a protocol.
type AuditStatus string

const (
	AuditAudited   AuditStatus = "Audited"
	AuditUnaudited AuditStatus = "Unaudited"
	AuditUnknown   AuditStatus = "Unknown"
)

// Protocol describes a DeFi protocol hosting farms.
type Protocol struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Website     string      `json:"website"`
	LogoURL     string      `json:"logoUrl"`
	AuditStatus AuditStatus `json:"auditStatus"`
}

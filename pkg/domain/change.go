package domain

// Action indicates the type of modification performed on a record.
type Action string

// Change actions enumerate the mutations captured in the audit trail.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change describes one mutation applied to a stored record.
type Change struct {
	Kind   Kind
	Action Action
	ID     string
}

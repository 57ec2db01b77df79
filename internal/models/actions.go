package models

// Action names a gated mutation on an ownable entity.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

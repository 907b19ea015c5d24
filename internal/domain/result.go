package domain

import "time"

// NodeResult is the value produced by running one node through the
// executor template (spec §3, §4.2).
type NodeResult struct {
	NodeID        string        `json:"node_id"`
	Status        NodeStatus    `json:"status"`
	Output        any           `json:"output,omitempty"`
	Err           error         `json:"-"`
	ErrorMessage  string        `json:"error,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
}

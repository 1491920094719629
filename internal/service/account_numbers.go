package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// AccountNumberPrefix starts every generated account number
const AccountNumberPrefix = "ACCT"

// AccountNumberGenerator produces display account numbers
type AccountNumberGenerator interface {
	Next() string
}

// SnowflakeNumbers generates time-ordered, collision-free account numbers.
// Distinct processes sharing a ledger must use distinct node ids.
type SnowflakeNumbers struct {
	node *snowflake.Node
}

// NewSnowflakeNumbers creates a generator for the given node id (0-1023)
func NewSnowflakeNumbers(nodeID int64) (*SnowflakeNumbers, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account number node: %w", err)
	}
	return &SnowflakeNumbers{node: node}, nil
}

// Next returns a new account number such as ACCT1541815603606036480
func (g *SnowflakeNumbers) Next() string {
	return AccountNumberPrefix + g.node.Generate().String()
}

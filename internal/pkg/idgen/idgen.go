// Package idgen hands out the numeric ids stored as document _id values.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator produces time-ordered, process-unique int64 ids.
type Generator struct {
	node *snowflake.Node
}

// New returns a generator for the given snowflake node (0-1023). Every
// running instance must use a distinct node.
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Next returns a new id. Safe for concurrent use.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

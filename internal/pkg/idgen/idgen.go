// Package idgen issues sale ids. Ids are snowflakes: unique across nodes and
// ordered by creation time.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

type Generator struct {
	node *snowflake.Node
}

func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake.NewNode -> %w", err)
	}

	return &Generator{node: node}, nil
}

func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

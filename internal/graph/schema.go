// Package graph implements the GraphQL schema and its resolvers.
package graph

import (
	_ "embed"

	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

// maxQueryDepth bounds nesting of incoming queries.
const maxQueryDepth = 10

// NewSchema parses the schema and binds it to resolver.
func NewSchema(resolver *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, resolver, graphql.MaxDepth(maxQueryDepth))
}

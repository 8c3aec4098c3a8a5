package graphgw

import (
	"fmt"
	"regexp"
)

// Statement is a parameterized cypher query. Untrusted values travel only in
// Parameters; the text is assembled from fixed fragments and validated
// identifiers, never from interpolated values.
type Statement struct {
	Text       string
	Parameters map[string]any
}

// Result is the tabular answer of the gateway for a single statement.
type Result struct {
	Columns []string
	Rows    [][]any
}

// NodeRef addresses a node by (label, id-key, id-value), the only addressing
// scheme the gateway exposes.
type NodeRef struct {
	Label   string
	IDKey   string
	IDValue any
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(s string) error {
	if !identPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrBadIdentifier, s)
	}
	return nil
}

func validRef(ref NodeRef) error {
	if err := validIdent(ref.Label); err != nil {
		return err
	}
	return validIdent(ref.IDKey)
}

func mergeNodeStatement(ref NodeRef, props map[string]any) (Statement, error) {
	if err := validRef(ref); err != nil {
		return Statement{}, err
	}
	text := fmt.Sprintf(
		"MERGE (n:%s {%s: $id}) SET n += $props",
		ref.Label, ref.IDKey,
	)
	return Statement{Text: text, Parameters: map[string]any{"id": ref.IDValue, "props": props}}, nil
}

func relateStatement(from NodeRef, relType string, props map[string]any, to NodeRef) (Statement, error) {
	if err := validRef(from); err != nil {
		return Statement{}, err
	}
	if err := validRef(to); err != nil {
		return Statement{}, err
	}
	if err := validIdent(relType); err != nil {
		return Statement{}, err
	}
	text := fmt.Sprintf(
		"MATCH (a:%s {%s: $from_id}) MATCH (b:%s {%s: $to_id}) CREATE (a)-[r:%s]->(b) SET r = $props",
		from.Label, from.IDKey, to.Label, to.IDKey, relType,
	)
	return Statement{Text: text, Parameters: map[string]any{"from_id": from.IDValue, "to_id": to.IDValue, "props": props}}, nil
}

func deleteRelationshipsStatement(ref NodeRef) (Statement, error) {
	if err := validRef(ref); err != nil {
		return Statement{}, err
	}
	text := fmt.Sprintf("MATCH (n:%s {%s: $id})-[r]-() DELETE r", ref.Label, ref.IDKey)
	return Statement{Text: text, Parameters: map[string]any{"id": ref.IDValue}}, nil
}

func deleteNodeStatement(ref NodeRef) (Statement, error) {
	if err := validRef(ref); err != nil {
		return Statement{}, err
	}
	text := fmt.Sprintf("MATCH (n:%s {%s: $id}) DELETE n", ref.Label, ref.IDKey)
	return Statement{Text: text, Parameters: map[string]any{"id": ref.IDValue}}, nil
}

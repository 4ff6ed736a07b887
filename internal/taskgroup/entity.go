package taskgroup

import (
	"strings"
	"time"
)

// Type is the closed set of task group (shared fixture) types.
type Type string

const (
	TypeNone    Type = "none"
	TypeSQL     Type = "sql"
	TypeDatalog Type = "datalog"
	TypeXQuery  Type = "xquery"
)

func Types() []Type {
	return []Type{TypeNone, TypeSQL, TypeDatalog, TypeXQuery}
}

// Group is a named shared fixture referenced by task assignments of the same
// family. The name doubles as the namespace key at the dispatcher, so it is
// normalized before every dispatcher-facing use. DispatcherID holds whatever
// the dispatcher assigned: a connection id for SQL, a fact base id for
// Datalog, a file reference for XQuery.
type Group struct {
	Name         string `yaml:"name" json:"name"`
	Type         Type   `yaml:"type" json:"type"`
	DispatcherID string `yaml:"dispatcher_id,omitempty" json:"dispatcherId,omitempty"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`

	// SQL fixtures
	CreateStatements           string `yaml:"create_statements,omitempty" json:"createStatements,omitempty"`
	InsertStatementsDiagnose   string `yaml:"insert_statements_diagnose,omitempty" json:"insertStatementsDiagnose,omitempty"`
	InsertStatementsSubmission string `yaml:"insert_statements_submission,omitempty" json:"insertStatementsSubmission,omitempty"`

	// Datalog fixtures
	Facts string `yaml:"facts,omitempty" json:"facts,omitempty"`

	// XQuery fixtures
	DiagnoseXML   string `yaml:"diagnose_xml,omitempty" json:"diagnoseXML,omitempty"`
	SubmissionXML string `yaml:"submission_xml,omitempty" json:"submissionXML,omitempty"`

	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updatedAt"`
}

// NormalizeName makes a group name safe for dispatcher-side namespaces.
// The same normalization must be applied on every reference so the two
// stores never diverge.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

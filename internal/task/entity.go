package task

import "time"

// Type is the closed set of exercise types the platform knows about. Every
// type maps to exactly one task-type service; types without a dispatcher-side
// resource (none, upload, calc) map to the no-op service.
type Type string

const (
	TypeNone              Type = "none"
	TypeSQL               Type = "sql"
	TypeRelationalAlgebra Type = "ra"
	TypeDatalog           Type = "datalog"
	TypeXQuery            Type = "xquery"
	TypeDrools            Type = "drools"
	TypeProcessMining     Type = "pm"
	TypeBpmn              Type = "bpmn"
	TypeNormalForm        Type = "nf"
	TypeUpload            Type = "upload"
	TypeCalc              Type = "calc"
)

// Types lists every known task type. The registry is checked against this
// list so that adding an enum value without a service fails loudly.
func Types() []Type {
	return []Type{
		TypeNone,
		TypeSQL,
		TypeRelationalAlgebra,
		TypeDatalog,
		TypeXQuery,
		TypeDrools,
		TypeProcessMining,
		TypeBpmn,
		TypeNormalForm,
		TypeUpload,
		TypeCalc,
	}
}

// Assignment is a single exercise instance. DispatcherID is empty until a
// create call to the type's dispatcher has succeeded; it stores the
// dispatcher-assigned identifier verbatim (a number for most families).
// Type-specific parameters live in the flat fields below; which of them are
// required is decided by the task-type services.
type Assignment struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Type          Type   `yaml:"type" json:"type"`
	TaskGroupName string `yaml:"task_group_name,omitempty" json:"taskGroupName,omitempty"`
	DispatcherID  string `yaml:"dispatcher_id,omitempty" json:"dispatcherId,omitempty"`

	// SQL, relational algebra, Datalog, XQuery, Drools, normal form
	Solution string `yaml:"solution,omitempty" json:"solution,omitempty"`

	// Datalog
	Queries        string `yaml:"queries,omitempty" json:"queries,omitempty"`
	UncheckedTerms string `yaml:"unchecked_terms,omitempty" json:"uncheckedTerms,omitempty"`

	// XQuery
	SortExpression string `yaml:"sort_expression,omitempty" json:"sortExpression,omitempty"`

	// Drools
	MaxPoints       string `yaml:"max_points,omitempty" json:"maxPoints,omitempty"`
	RuleClasses     string `yaml:"rule_classes,omitempty" json:"ruleClasses,omitempty"`
	RuleObjects     string `yaml:"rule_objects,omitempty" json:"ruleObjects,omitempty"`
	ErrorWeighting  int    `yaml:"error_weighting,omitempty" json:"errorWeighting,omitempty"`
	ValidationClass string `yaml:"validation_class,omitempty" json:"validationClass,omitempty"`

	// Process mining
	MaxActivity int `yaml:"max_activity,omitempty" json:"maxActivity,omitempty"`
	MinActivity int `yaml:"min_activity,omitempty" json:"minActivity,omitempty"`
	MaxLogSize  int `yaml:"max_log_size,omitempty" json:"maxLogSize,omitempty"`
	MinLogSize  int `yaml:"min_log_size,omitempty" json:"minLogSize,omitempty"`
	ConfigNum   int `yaml:"config_num,omitempty" json:"configNum,omitempty"`

	// BPMN
	TestConfig string `yaml:"test_config,omitempty" json:"testConfig,omitempty"`

	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updatedAt"`
}

package run

import "context"

// DataModelArg is the reserved source string with which a profile
// document asks for a test-case callable's own TestCaseDataModel (see
// profile.ParamSpecDoc).
const DataModelArg = "$datamodel"

// ParamSource says where one argument of a test-case callable comes from:
// either the node's own data model, or a dependency's labeled result.
//
// Go has no equivalent to inspecting a callable's formal parameters and
// matching them by declared type the way the original implementation
// used introspection; instead each test-case node declares its argument
// sources explicitly at profile-construction time (see DESIGN NOTES in
// spec.md: "require each test-case node to declare an ordered list of
// (parameter_name, source)").
type ParamSource struct {
	dependencyLabel string
	fromDataModel   bool
}

// ParamFromDataModel sources an argument from the node's own data model.
func ParamFromDataModel() ParamSource {
	return ParamSource{fromDataModel: true}
}

// ParamFromDependency sources an argument from the result of whichever
// dependency carries the given parameter label.
func ParamFromDependency(label string) ParamSource {
	return ParamSource{dependencyLabel: label}
}

// ParamSpec binds one argument name of a test-case callable to a source.
type ParamSpec struct {
	ArgName string
	Source  ParamSource
}

// TestCaseFunc is the shape of a user-supplied test-case callable. args is
// built from the node's ParamSpecs immediately before invocation; the
// data model is present under the ArgName of every ParamSpec that
// requests it via ParamFromDataModel.
type TestCaseFunc func(ctx context.Context, args map[string]any) (any, error)

package pipeline

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Expr is an aggregation expression usable inside an AddFields stage.
// The set of implementations is closed to this package.
type Expr interface {
	exprBSON() (interface{}, error)
}

// Field is a named expression: an output field of AddFields or a key of an
// Object expression.
type Field struct {
	Name  string
	Value Expr
}

// Ref is a field path of the current document ("$path").
type Ref struct{ Path string }

// Var is a variable bound by Map, Filter or Let ("$$name.path").
type Var struct {
	Name string
	Path string
}

// Literal is a constant value, emitted through $literal.
type Literal struct{ Value interface{} }

// Remove evaluates to $$REMOVE, dropping the output field.
type Remove struct{}

// Avg is the arithmetic mean of an array expression. Null on empty input.
type Avg struct{ Input Expr }

// Size is the length of an array expression.
type Size struct{ Input Expr }

// IfNull returns Fallback when Input is null or missing.
type IfNull struct{ Input, Fallback Expr }

// Cond is a ternary.
type Cond struct{ If, Then, Else Expr }

// Gt compares Left > Right.
type Gt struct{ Left, Right Expr }

// Eq compares Left == Right.
type Eq struct{ Left, Right Expr }

// ArrayElemAt picks one element of an array expression.
type ArrayElemAt struct {
	Input Expr
	Index int
}

// Filter keeps the elements of Input for which Cond holds, binding each
// element to As.
type Filter struct {
	Input Expr
	As    string
	Cond  Expr
}

// Map transforms every element of Input, binding each element to As.
type Map struct {
	Input Expr
	As    string
	In    Expr
}

// Object builds an embedded document.
type Object struct{ Fields []Field }

// GetField reads one field of a document expression.
type GetField struct {
	Field string
	Input Expr
}

// SortArray sorts an array of documents by the given keys.
type SortArray struct {
	Input Expr
	By    []SortKey
}

func (e Ref) exprBSON() (interface{}, error) {
	if err := validateFieldPath(e.Path); err != nil {
		return nil, fmt.Errorf("ref: %w", err)
	}
	return "$" + e.Path, nil
}

func (e Var) exprBSON() (interface{}, error) {
	if err := validateVarName(e.Name); err != nil {
		return nil, err
	}
	if e.Path == "" {
		return "$$" + e.Name, nil
	}
	if err := validateFieldPath(e.Path); err != nil {
		return nil, fmt.Errorf("var %s: %w", e.Name, err)
	}
	return "$$" + e.Name + "." + e.Path, nil
}

func (e Literal) exprBSON() (interface{}, error) {
	return bson.D{{Key: "$literal", Value: e.Value}}, nil
}

func (Remove) exprBSON() (interface{}, error) {
	return "$$REMOVE", nil
}

func (e Avg) exprBSON() (interface{}, error) {
	return unary("$avg", e.Input)
}

func (e Size) exprBSON() (interface{}, error) {
	return unary("$size", e.Input)
}

func (e IfNull) exprBSON() (interface{}, error) {
	return nary("$ifNull", e.Input, e.Fallback)
}

func (e Gt) exprBSON() (interface{}, error) {
	return nary("$gt", e.Left, e.Right)
}

func (e Eq) exprBSON() (interface{}, error) {
	return nary("$eq", e.Left, e.Right)
}

func (e Cond) exprBSON() (interface{}, error) {
	ifV, err := render(e.If)
	if err != nil {
		return nil, err
	}
	thenV, err := render(e.Then)
	if err != nil {
		return nil, err
	}
	elseV, err := render(e.Else)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$cond", Value: bson.D{
		{Key: "if", Value: ifV},
		{Key: "then", Value: thenV},
		{Key: "else", Value: elseV},
	}}}, nil
}

func (e ArrayElemAt) exprBSON() (interface{}, error) {
	in, err := render(e.Input)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$arrayElemAt", Value: bson.A{in, e.Index}}}, nil
}

func (e Filter) exprBSON() (interface{}, error) {
	return bindingOp("$filter", e.Input, e.As, "cond", e.Cond)
}

func (e Map) exprBSON() (interface{}, error) {
	return bindingOp("$map", e.Input, e.As, "in", e.In)
}

func (e Object) exprBSON() (interface{}, error) {
	if len(e.Fields) == 0 {
		return nil, fmt.Errorf("object: no fields")
	}
	return renderFields(e.Fields)
}

func (e GetField) exprBSON() (interface{}, error) {
	if err := validateFieldPath(e.Field); err != nil {
		return nil, fmt.Errorf("getField: %w", err)
	}
	in, err := render(e.Input)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$getField", Value: bson.D{
		{Key: "field", Value: e.Field},
		{Key: "input", Value: in},
	}}}, nil
}

func (e SortArray) exprBSON() (interface{}, error) {
	in, err := render(e.Input)
	if err != nil {
		return nil, err
	}
	by, err := renderSortKeys(e.By)
	if err != nil {
		return nil, fmt.Errorf("sortArray: %w", err)
	}
	return bson.D{{Key: "$sortArray", Value: bson.D{
		{Key: "input", Value: in},
		{Key: "sortBy", Value: by},
	}}}, nil
}

func render(e Expr) (interface{}, error) {
	if e == nil {
		return nil, fmt.Errorf("missing expression")
	}
	return e.exprBSON()
}

func unary(op string, e Expr) (interface{}, error) {
	v, err := render(e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bson.D{{Key: op, Value: v}}, nil
}

func nary(op string, exprs ...Expr) (interface{}, error) {
	args := make(bson.A, 0, len(exprs))
	for _, e := range exprs {
		v, err := render(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		args = append(args, v)
	}
	return bson.D{{Key: op, Value: args}}, nil
}

func bindingOp(op string, input Expr, as, bodyKey string, body Expr) (interface{}, error) {
	if err := validateVarName(as); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	in, err := render(input)
	if err != nil {
		return nil, fmt.Errorf("%s input: %w", op, err)
	}
	b, err := render(body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, bodyKey, err)
	}
	return bson.D{{Key: op, Value: bson.D{
		{Key: "input", Value: in},
		{Key: "as", Value: as},
		{Key: bodyKey, Value: b},
	}}}, nil
}

func renderFields(fields []Field) (bson.D, error) {
	seen := make(map[string]bool, len(fields))
	doc := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if err := validateFieldPath(f.Name); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		v, err := render(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		doc = append(doc, bson.E{Key: f.Name, Value: v})
	}
	return doc, nil
}

func validateVarName(name string) error {
	if name == "" {
		return fmt.Errorf("variable name must not be empty")
	}
	if strings.ContainsAny(name, "$.") {
		return fmt.Errorf("invalid variable name %q", name)
	}
	return nil
}

// validateFieldPath rejects empty paths, operator-looking segments and
// empty segments such as "a..b".
func validateFieldPath(path string) error {
	if path == "" {
		return fmt.Errorf("field name must not be empty")
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("invalid field path %q", path)
		}
		if strings.HasPrefix(segment, "$") {
			return fmt.Errorf("field path %q must not reference an operator", path)
		}
	}
	return nil
}

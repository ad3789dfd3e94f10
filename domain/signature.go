package domain

import "strings"

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInt     ParamType = "int"
	TypeInt64   ParamType = "int64"
	TypeFloat64 ParamType = "float64"
	TypeBool    ParamType = "bool"
	TypeBytes   ParamType = "bytes"
	TypeUUID    ParamType = "uuid"
	TypeTime    ParamType = "time"
	TypeMap     ParamType = "map"
	TypeList    ParamType = "list"
	TypeAny     ParamType = "any"
)

// ParamDef describes one formal parameter of a method or event.
type ParamDef struct {
	Name string
	Type ParamType `validate:"required,oneof=string int int64 float64 bool bytes uuid time map list any"`
}

func Param(name string, t ParamType) ParamDef {
	return ParamDef{Name: name, Type: t}
}

// Signature is the ordered list of parameter types of a callable: the shape
// shared by every delegate compatible with it.
type Signature []ParamType

func SignatureOf(params []ParamDef) Signature {
	sig := make(Signature, len(params))
	for i, p := range params {
		sig[i] = p.Type
	}
	return sig
}

// Key is a stable string form usable as a map key.
func (s Signature) Key() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = string(t)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

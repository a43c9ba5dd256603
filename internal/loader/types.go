package loader

import (
	"cuelang.org/go/cue"

	"github.com/tmppy/tmppyc/internal/hir"
)

// parseType reads a type descriptor: one of the scalar names ("bool",
// "int64", "type", "bottom"), a declared custom-type name, or a
// structured form {list: T}, {set: T} or {fn: {args: [T...],
// returns: T}}.
func (ld *moduleLoader) parseType(v cue.Value, field string) (hir.ExprType, error) {
	if name, err := v.String(); err == nil {
		switch name {
		case "bool":
			return hir.BoolType{}, nil
		case "int64":
			return hir.IntType{}, nil
		case "type":
			return hir.TypeType{}, nil
		case "bottom":
			return hir.BottomType{}, nil
		}
		if ct, ok := ld.customTypes[name]; ok {
			return ct, nil
		}
		return nil, errAt(v, field, "unknown type %q", name)
	}

	if elemVal := v.LookupPath(cue.ParsePath("list")); elemVal.Exists() {
		elem, err := ld.parseType(elemVal, field+".list")
		if err != nil {
			return nil, err
		}
		return hir.ListType{Elem: elem}, nil
	}
	if elemVal := v.LookupPath(cue.ParsePath("set")); elemVal.Exists() {
		elem, err := ld.parseType(elemVal, field+".set")
		if err != nil {
			return nil, err
		}
		return hir.SetType{Elem: elem}, nil
	}
	if fnVal := v.LookupPath(cue.ParsePath("fn")); fnVal.Exists() {
		var argTypes []hir.ExprType
		argsVal := fnVal.LookupPath(cue.ParsePath("args"))
		if argsVal.Exists() {
			iter, err := argsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for iter.Next() {
				argType, err := ld.parseType(iter.Value(), field+".fn.args")
				if err != nil {
					return nil, err
				}
				argTypes = append(argTypes, argType)
			}
		}
		returnsVal := fnVal.LookupPath(cue.ParsePath("returns"))
		if !returnsVal.Exists() {
			return nil, errAt(fnVal, field, "fn type has no returns")
		}
		returns, err := ld.parseType(returnsVal, field+".fn.returns")
		if err != nil {
			return nil, err
		}
		return hir.FunctionType{ArgTypes: argTypes, Returns: returns}, nil
	}

	return nil, errAt(v, field, "not a type descriptor")
}

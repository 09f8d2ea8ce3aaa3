package repository

import (
	"encoding/json"

	"gorm.io/gorm"
)

// jsonbValue wraps a value for use inside an Updates map targeting a jsonb
// column. The explicit cast keeps the parameter type unambiguous in the
// extended query protocol.
func jsonbValue(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return gorm.Expr("?::jsonb", "null")
	}
	return gorm.Expr("?::jsonb", string(b))
}

// jsonbColumns rewrites the named columns of an updates map through
// jsonbValue, leaving absent columns and scalar values untouched. Update maps
// bypass the model serializers, so jsonb columns have to be cast explicitly.
func jsonbColumns(updates map[string]interface{}, cols ...string) map[string]interface{} {
	for _, col := range cols {
		if v, ok := updates[col]; ok {
			updates[col] = jsonbValue(v)
		}
	}
	return updates
}

// jsonbAppend builds an expression appending the marshalled value to a jsonb
// array column in place, treating a NULL column as the empty array.
func jsonbAppend(column string, v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return gorm.Expr("COALESCE(" + column + ", '[]'::jsonb)")
	}
	return gorm.Expr("COALESCE("+column+", '[]'::jsonb) || ?::jsonb", string(b))
}

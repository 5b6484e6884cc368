package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/nurkiewicz/partq/internal/clause"
)

// BindArgs pairs caller arguments with a compiled query's placeholder
// list, in placeholder creation order. Each argument is checked
// against its placeholder's declared type and coerced to a driver
// value. Text is NFC normalized so equal-looking strings compare
// equal regardless of how the caller composed them.
func BindArgs(placeholders []clause.Placeholder, args []any) ([]any, error) {
	if len(args) != len(placeholders) {
		return nil, fmt.Errorf("query takes %d arguments, got %d", len(placeholders), len(args))
	}
	bound := make([]any, len(args))
	for i, arg := range args {
		v, err := bindValue(placeholders[i], arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i+1, placeholders[i], err)
		}
		bound[i] = v
	}
	return bound, nil
}

// bindValue checks one argument against a placeholder type.
func bindValue(ph clause.Placeholder, arg any) (any, error) {
	if ph.Type.Kind == clause.KindList {
		return bindList(ph.Type, arg)
	}
	return bindScalar(ph.Type.Kind, arg)
}

func bindScalar(k clause.Kind, arg any) (any, error) {
	switch k {
	case clause.KindText:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", arg)
		}
		return norm.NFC.String(s), nil
	case clause.KindInt:
		switch v := arg.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		default:
			return nil, fmt.Errorf("expected int, got %T", arg)
		}
	case clause.KindBool:
		b, ok := arg.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", arg)
		}
		return b, nil
	case clause.KindTime:
		switch v := arg.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339Nano), nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q: %w", v, err)
			}
			return t.UTC().Format(time.RFC3339Nano), nil
		default:
			return nil, fmt.Errorf("expected time, got %T", arg)
		}
	case clause.KindBlob:
		b, ok := arg.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected blob, got %T", arg)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("placeholder has no usable type")
	}
}

// bindList checks a list argument element-wise. Typed slices and
// []any are both accepted; elements are coerced like scalars.
func bindList(t clause.ValueType, arg any) (any, error) {
	var elems []any
	switch v := arg.(type) {
	case []any:
		elems = v
	case []string:
		for _, e := range v {
			elems = append(elems, e)
		}
	case []int:
		for _, e := range v {
			elems = append(elems, e)
		}
	case []int64:
		for _, e := range v {
			elems = append(elems, e)
		}
	default:
		return nil, fmt.Errorf("expected list, got %T", arg)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("empty list argument")
	}

	elemKind := t.Elem
	bound := make([]any, len(elems))
	for i, e := range elems {
		k := elemKind
		if k == clause.KindInvalid {
			k = kindOf(e)
		}
		v, err := bindScalar(k, e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		bound[i] = v
	}
	return bound, nil
}

func kindOf(v any) clause.Kind {
	switch v.(type) {
	case string:
		return clause.KindText
	case int, int64:
		return clause.KindInt
	case bool:
		return clause.KindBool
	case time.Time:
		return clause.KindTime
	case []byte:
		return clause.KindBlob
	default:
		return clause.KindInvalid
	}
}

// ExpandLists rewrites a statement so each list-valued argument gets
// one ? per element: "x IN ?" with a 3-element list becomes
// "x IN (?, ?, ?)". Scalar arguments pass through untouched.
// Placeholders inside quoted SQL strings are left alone.
func ExpandLists(query string, args []any) (string, []any, error) {
	var sb strings.Builder
	var flat []any
	argIdx := 0
	inString := false

	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch == '\'' {
			inString = !inString
			sb.WriteByte(ch)
			continue
		}
		if ch != '?' || inString {
			sb.WriteByte(ch)
			continue
		}
		if argIdx >= len(args) {
			return "", nil, fmt.Errorf("statement has more placeholders than the %d arguments", len(args))
		}
		arg := args[argIdx]
		argIdx++
		if list, ok := arg.([]any); ok {
			marks := make([]string, len(list))
			for j := range list {
				marks[j] = "?"
			}
			sb.WriteString("(" + strings.Join(marks, ", ") + ")")
			flat = append(flat, list...)
		} else {
			sb.WriteByte('?')
			flat = append(flat, arg)
		}
	}
	if argIdx != len(args) {
		return "", nil, fmt.Errorf("statement has %d placeholders but %d arguments", argIdx, len(args))
	}
	return sb.String(), flat, nil
}

// ParseArg converts a command-line string to a typed argument for the
// given placeholder. Lists are comma-separated.
func ParseArg(ph clause.Placeholder, s string) (any, error) {
	if ph.Type.Kind == clause.KindList {
		parts := strings.Split(s, ",")
		elems := make([]any, 0, len(parts))
		for _, p := range parts {
			e, err := parseScalarArg(ph.Type.Elem, strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return elems, nil
	}
	return parseScalarArg(ph.Type.Kind, s)
}

func parseScalarArg(k clause.Kind, s string) (any, error) {
	switch k {
	case clause.KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q", s)
		}
		return n, nil
	case clause.KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", s)
		}
		return b, nil
	default:
		// Text, time, and untyped list elements bind as text; the
		// bind step validates time formats.
		return s, nil
	}
}

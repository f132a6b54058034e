package vm

import (
	"fmt"
	"math"
	"strings"

	"github.com/corintai/corint/internal/value"
)

// callBuiltin implements the OpCallBuiltin opcode's recognized function
// set, matching the analyzer's knownFunctions table (internal/analyzer).
func callBuiltin(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "abs":
		n, err := requireNumber(name, args)
		if err != nil {
			return nil, err
		}
		return value.Number(math.Abs(float64(n))), nil

	case "round":
		n, err := requireNumber(name, args)
		if err != nil {
			return nil, err
		}
		return value.Number(math.Round(float64(n))), nil

	case "len":
		if len(args) != 1 {
			return nil, fmt.Errorf("vm: %s expects 1 argument, got %d", name, len(args))
		}
		switch v := args[0].(type) {
		case value.String:
			return value.Number(float64(len(string(v)))), nil
		case value.Array:
			return value.Number(float64(len(v))), nil
		case value.Object:
			return value.Number(float64(len(v))), nil
		default:
			return nil, fmt.Errorf("vm: len requires a string, array, or object, got %s", v.Kind())
		}

	case "lower":
		s, err := requireString(name, args)
		if err != nil {
			return nil, err
		}
		return value.String(strings.ToLower(string(s))), nil

	case "upper":
		s, err := requireString(name, args)
		if err != nil {
			return nil, err
		}
		return value.String(strings.ToUpper(string(s))), nil

	default:
		return nil, fmt.Errorf("vm: unknown builtin function %q", name)
	}
}

func requireNumber(name string, args []value.Value) (value.Number, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("vm: %s expects 1 argument, got %d", name, len(args))
	}
	n, ok := args[0].(value.Number)
	if !ok {
		return 0, fmt.Errorf("vm: %s requires a number, got %s", name, args[0].Kind())
	}
	return n, nil
}

func requireString(name string, args []value.Value) (value.String, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("vm: %s expects 1 argument, got %d", name, len(args))
	}
	s, ok := args[0].(value.String)
	if !ok {
		return "", fmt.Errorf("vm: %s requires a string, got %s", name, args[0].Kind())
	}
	return s, nil
}

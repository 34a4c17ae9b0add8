package registry

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/kfusac/httpspec/internal/httperrors"
)

// Func is the callable shape every registry function entry has: positional
// args and keyword args, already resolved against vars/funcs by the
// substituter, producing a value or an error.
type Func func(args []any, kwargs map[string]any) (any, error)

const alphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var randSource = rand.New(rand.NewSource(time.Now().UnixNano()))

func builtinFuncs() map[string]Func {
	return map[string]Func{
		"gen_random_string": genRandomString,
		"get_timestamp":     getTimestamp,
		"sleep_N_secs":      sleepNSecs,
		"gen_uuid":          genUUID,
		"base64_encode":     base64Encode,
		"base64_decode":     base64Decode,
	}
}

// genRandomString generates a random alphanumeric ASCII string of the given
// length.
func genRandomString(args []any, kwargs map[string]any) (any, error) {
	n, ok := intArg(args, kwargs, "str_len", 0)
	if !ok {
		return nil, httperrors.NewParamError("gen_random_string expects an integer length argument")
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = alphaNumeric[randSource.Intn(len(alphaNumeric))]
	}
	return string(out), nil
}

// getTimestamp returns the digits of the current Unix time truncated/padded
// to str_len characters; str_len must be in (0, 17).
func getTimestamp(args []any, kwargs map[string]any) (any, error) {
	n, ok := intArg(args, kwargs, "str_len", 13)
	if !ok {
		n = 13
	}
	if n <= 0 || n >= 17 {
		return nil, httperrors.NewParamError("get_timestamp length must be between 0 and 17, got %d", n)
	}
	digits := fmt.Sprintf("%d", time.Now().UnixNano())
	if len(digits) < n {
		return digits, nil
	}
	return digits[:n], nil
}

// sleepNSecs pauses execution for n seconds; used as a setup/teardown hook.
func sleepNSecs(args []any, kwargs map[string]any) (any, error) {
	secs, ok := floatArg(args, kwargs, "n_secs")
	if !ok {
		return nil, httperrors.NewParamError("sleep_N_secs expects a numeric argument")
	}
	time.Sleep(time.Duration(secs * float64(time.Second)))
	return nil, nil
}

// genUUID returns a random UUIDv4 string, useful for idempotency keys and
// request correlation IDs in test bodies.
func genUUID(args []any, kwargs map[string]any) (any, error) {
	return uuid.NewString(), nil
}

func base64Encode(args []any, kwargs map[string]any) (any, error) {
	s, ok := stringArg(args, kwargs, "s")
	if !ok {
		return nil, httperrors.NewParamError("base64_encode expects a string argument")
	}
	return base64.StdEncoding.EncodeToString([]byte(s)), nil
}

func base64Decode(args []any, kwargs map[string]any) (any, error) {
	s, ok := stringArg(args, kwargs, "s")
	if !ok {
		return nil, httperrors.NewParamError("base64_decode expects a string argument")
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return string(decoded), nil
}

func intArg(args []any, kwargs map[string]any, name string, posIdx int) (int, bool) {
	if v, ok := kwargs[name]; ok {
		return asInt(v)
	}
	if len(args) > posIdx {
		return asInt(args[posIdx])
	}
	return 0, false
}

func floatArg(args []any, kwargs map[string]any, name string) (float64, bool) {
	if v, ok := kwargs[name]; ok {
		return asFloat(v)
	}
	if len(args) > 0 {
		return asFloat(args[0])
	}
	return 0, false
}

func stringArg(args []any, kwargs map[string]any, name string) (string, bool) {
	if v, ok := kwargs[name]; ok {
		s, ok := v.(string)
		return s, ok
	}
	if len(args) > 0 {
		s, ok := args[0].(string)
		return s, ok
	}
	return "", false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

package coerce

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NVIDIA/beanctl/pkg/bean"
)

var defaultConverters = map[string]ParseFunc{
	"java.lang.String":        parseString,
	"java.lang.StringBuffer":  parseString,
	"java.lang.StringBuilder": parseString,
	"java.io.File":            parseString,

	"char":                parseChar,
	"java.lang.Character": parseChar,

	"boolean":           parseBool,
	"java.lang.Boolean": parseBool,

	"byte":              parseInt8,
	"java.lang.Byte":    parseInt8,
	"short":             parseInt16,
	"java.lang.Short":   parseInt16,
	"int":               parseInt32,
	"java.lang.Integer": parseInt32,
	"long":              parseInt64,
	"java.lang.Long":    parseInt64,

	"float":            parseFloat32,
	"java.lang.Float":  parseFloat32,
	"double":           parseFloat64,
	"java.lang.Double": parseFloat64,

	"java.math.BigInteger": parseBigInteger,
	"java.math.BigDecimal": parseBigDecimal,

	"javax.management.ObjectName": parseObjectName,
	"java.net.URL":                parseURL,
	"java.net.URI":                parseURI,
	"java.util.Date":              parseDate,
}

func parseString(s string) (any, error) {
	return s, nil
}

func parseChar(s string) (any, error) {
	if utf8.RuneCountInString(s) != 1 {
		return nil, fmt.Errorf("expected a single character, got %d", utf8.RuneCountInString(s))
	}
	return s, nil
}

// parseBool accepts only true or false, case-insensitively.
func parseBool(s string) (any, error) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return nil, fmt.Errorf("expected true or false")
}

func parseInt8(s string) (any, error) {
	v, err := strconv.ParseInt(s, 10, 8)
	return int8(v), err
}

func parseInt16(s string) (any, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	return int16(v), err
}

func parseInt32(s string) (any, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

func parseInt64(s string) (any, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err
}

func parseFloat32(s string) (any, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func parseFloat64(s string) (any, error) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err
}

func parseBigInteger(s string) (any, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer")
	}
	return v, nil
}

// parseBigDecimal keeps the literal as written so no precision is lost on
// the way to the agent.
func parseBigDecimal(s string) (any, error) {
	if strings.Contains(s, "/") {
		return nil, fmt.Errorf("not a decimal number")
	}
	if _, ok := new(big.Rat).SetString(s); !ok {
		return nil, fmt.Errorf("not a decimal number")
	}
	return json.Number(s), nil
}

func parseObjectName(s string) (any, error) {
	return bean.ParseObjectName(s)
}

func parseURL(s string) (any, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("no protocol")
	}
	return u, nil
}

func parseURI(s string) (any, error) {
	return url.Parse(s)
}

// parseDate accepts RFC 3339 timestamps or milliseconds since the epoch.
func parseDate(s string) (any, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

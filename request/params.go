// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// A Param is a single key/value request parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of request parameters. Unlike url.Values
// and map[string]string, Params preserves insertion order both when
// form-url-encoded and when serialized to JSON.
type Params []Param

// P constructs Params from alternating key/value strings. It panics if
// given an odd number of arguments.
//
//	request.P("a", "1", "b", "2") // encodes as a=1&b=2
func P(kv ...string) Params {
	if len(kv)%2 != 0 {
		panic("reconn/request: odd number of arguments to P")
	}
	ps := make(Params, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		ps = append(ps, Param{Key: kv[i], Value: kv[i+1]})
	}
	return ps
}

// Add appends a key/value pair and returns the extended Params.
func (ps Params) Add(key, value string) Params {
	return append(ps, Param{Key: key, Value: value})
}

// Encode form-url-encodes ps in insertion order.
func (ps Params) Encode() string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// MarshalJSON serializes ps as a JSON object whose members appear in
// insertion order. If a key repeats, the member is repeated too.
func (ps Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func emptyParams(params interface{}) bool {
	switch x := params.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []byte:
		return len(x) == 0
	case Params:
		return len(x) == 0
	case url.Values:
		return len(x) == 0
	case map[string]string:
		return len(x) == 0
	}
	v := reflect.ValueOf(params)
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		return v.Len() == 0
	case reflect.Ptr:
		return v.IsNil()
	}
	return false
}

// formEncode form-url-encodes params. Raw strings and byte slices are
// returned verbatim, assumed to be encoded already.
func formEncode(params interface{}) (string, error) {
	switch x := params.(type) {
	case string:
		return strings.TrimPrefix(x, "?"), nil
	case []byte:
		return strings.TrimPrefix(string(x), "?"), nil
	case Params:
		return x.Encode(), nil
	case url.Values:
		return x.Encode(), nil
	case map[string]string:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ps := make(Params, 0, len(keys))
		for _, k := range keys {
			ps = append(ps, Param{Key: k, Value: x[k]})
		}
		return ps.Encode(), nil
	default:
		return "", &ArgumentError{Msg: fmt.Sprintf("params of type %T cannot be form-url-encoded", params)}
	}
}

func jsonEncode(params interface{}) ([]byte, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, &ArgumentError{Msg: "params cannot be serialized as JSON: " + err.Error()}
	}
	return b, nil
}

package codec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"autonym/internal/domain"
)

// Record is a structured value of named fields.
type Record map[string]any

// EncodingError names the field holding an unsupported value.
type EncodingError struct {
	Path string
	Type string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%v: field %q has type %s", domain.ErrEncoding, e.Path, e.Type)
}

// Unwrap returns domain.ErrEncoding.
func (e *EncodingError) Unwrap() error { return domain.ErrEncoding }

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	opts := cbor.CoreDetEncOptions()
	opts.NilContainers = cbor.NilContainerAsEmpty
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Errorf("codec: build encoder: %w", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("codec: build decoder: %w", err))
	}
}

// Encode returns the canonical bytes of r.
func Encode(r Record) ([]byte, error) {
	if err := checkRecord("", r); err != nil {
		return nil, err
	}
	return encMode.Marshal(map[string]any(r))
}

// Decode parses canonical bytes into v. Duplicate map keys, indefinite-length
// items and fields unknown to a struct target are rejected.
func Decode(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func checkRecord(prefix string, r map[string]any) error {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := checkValue(join(prefix, k), r[k]); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(path string, v any) error {
	switch x := v.(type) {
	case []byte, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case Record:
		return checkRecord(path, x)
	case map[string]any:
		return checkRecord(path, x)
	case []any:
		if x == nil {
			return &EncodingError{Path: path, Type: "nil sequence"}
		}
		for i, e := range x {
			if err := checkValue(fmt.Sprintf("%s[%d]", path, i), e); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return &EncodingError{Path: path, Type: "nil"}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		for i := 0; i < rv.Len(); i++ {
			if err := checkValue(fmt.Sprintf("%s[%d]", path, i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return &EncodingError{Path: path, Type: fmt.Sprintf("%T", v)}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// EncodeList returns the canonical encoding of a sequence of byte strings.
func EncodeList(items [][]byte) ([]byte, error) {
	if items == nil {
		items = [][]byte{}
	}
	return encMode.Marshal(items)
}

package codec_test

import (
	"encoding/hex"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonym/internal/codec"
	"autonym/internal/domain"
)

func TestEncode_KnownBytes(t *testing.T) {
	b, err := codec.Encode(codec.Record{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "a1616101", hex.EncodeToString(b))

	// Shorter keys sort first, then bytewise.
	b, err = codec.Encode(codec.Record{"aa": 2, "b": 1, "a": []byte{0xff}})
	require.NoError(t, err)
	assert.Equal(t, "a3616141ff616201626161"+"02", hex.EncodeToString(b))
}

func TestEncode_NilBytesAsEmpty(t *testing.T) {
	empty, err := codec.Encode(codec.Record{"k": []byte{}})
	require.NoError(t, err)
	assert.Equal(t, "a1616b40", hex.EncodeToString(empty))

	nilBytes, err := codec.Encode(codec.Record{"k": []byte(nil)})
	require.NoError(t, err)
	assert.Equal(t, empty, nilBytes)

	nested, err := codec.Encode(codec.Record{"k": []any{[]byte(nil)}})
	require.NoError(t, err)
	assert.Equal(t, "a1616b8140", hex.EncodeToString(nested))
}

func TestEncode_OrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("insertion order never changes the bytes", prop.ForAll(
		func(keys []string, vals []int64) bool {
			fwd := codec.Record{}
			rev := codec.Record{}
			n := len(keys)
			if len(vals) < n {
				n = len(vals)
			}
			for i := 0; i < n; i++ {
				fwd[keys[i]] = vals[i]
			}
			for i := n - 1; i >= 0; i-- {
				if _, ok := rev[keys[i]]; !ok {
					rev[keys[i]] = fwd[keys[i]]
				}
			}
			a, err1 := codec.Encode(fwd)
			b, err2 := codec.Encode(rev)
			return err1 == nil && err2 == nil && string(a) == string(b)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}

func TestEncode_RejectsUnsupported(t *testing.T) {
	cases := map[string]struct {
		rec  codec.Record
		path string
	}{
		"float":        {codec.Record{"x": 1.5}, "x"},
		"nil":          {codec.Record{"x": nil}, "x"},
		"struct":       {codec.Record{"x": struct{}{}}, "x"},
		"nested":       {codec.Record{"outer": codec.Record{"inner": 2.0}}, "outer.inner"},
		"in sequence":  {codec.Record{"list": []any{"ok", 3.0}}, "list[1]"},
		"nil sequence": {codec.Record{"list": []any(nil)}, "list"},
		"array":        {codec.Record{"key": [32]byte{}}, "key"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Encode(tc.rec)
			require.ErrorIs(t, err, domain.ErrEncoding)
			var ee *codec.EncodingError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tc.path, ee.Path)
		})
	}
}

func TestEncode_AcceptsSupported(t *testing.T) {
	_, err := codec.Encode(codec.Record{
		"bytes":  []byte{1},
		"text":   "t",
		"bool":   true,
		"uint":   uint64(7),
		"neg":    -3,
		"list":   []any{[]byte{}, "x", codec.Record{"n": 1}},
		"typed":  []string{"a", "b"},
		"nested": map[string]any{"k": false},
		"empty":  []any{},
	})
	require.NoError(t, err)
}

func TestDecode_Strict(t *testing.T) {
	var out map[string]any

	// {"a": 1, "a": 2}
	dup, _ := hex.DecodeString("a2616101616102")
	require.Error(t, codec.Decode(dup, &out))

	// Indefinite-length map {_ "a": 1}
	indef, _ := hex.DecodeString("bf616101ff")
	require.Error(t, codec.Decode(indef, &out))

	var target struct {
		A int `cbor:"a"`
	}
	unknown, _ := hex.DecodeString("a2616101616202")
	require.Error(t, codec.Decode(unknown, &target))

	ok, _ := hex.DecodeString("a1616101")
	require.NoError(t, codec.Decode(ok, &target))
	assert.Equal(t, 1, target.A)
}

func TestEncodeList(t *testing.T) {
	b, err := codec.EncodeList(nil)
	require.NoError(t, err)
	assert.Equal(t, "80", hex.EncodeToString(b))

	b, err = codec.EncodeList([][]byte{{1}, {}})
	require.NoError(t, err)
	assert.Equal(t, "82410140", hex.EncodeToString(b))

	var back [][]byte
	require.NoError(t, codec.Decode(b, &back))
	require.Len(t, back, 2)
	assert.Equal(t, []byte{1}, back[0])
	assert.Empty(t, back[1])
}

package clarity

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_UInt(t *testing.T) {
	v, err := Decode("0x01000000000000000000000000000f4240")
	require.NoError(t, err)
	assert.Equal(t, TypeUInt, v.Type)
	assert.Equal(t, uint64(1000000), v.Int.Uint64())
	assert.Equal(t, uint64(1000000), v.Interface())
}

func TestDecode_NegativeInt(t *testing.T) {
	v, err := Decode("00" + strings.Repeat("ff", 16))
	require.NoError(t, err)
	assert.Equal(t, TypeInt, v.Type)
	assert.Equal(t, int64(-1), v.Int.Int64())
	assert.Equal(t, int64(-1), v.Interface())
}

func TestDecode_Bools(t *testing.T) {
	v, err := Decode("03")
	require.NoError(t, err)
	assert.Equal(t, true, v.Interface())

	v, err = Decode("04")
	require.NoError(t, err)
	assert.Equal(t, false, v.Interface())
}

func TestDecode_Strings(t *testing.T) {
	v, err := Decode("0d0000000568656c6c6f")
	require.NoError(t, err)
	assert.Equal(t, TypeStringASCII, v.Type)
	assert.Equal(t, "hello", v.Str)

	v, err = Decode("0e0000000568656c6c6f")
	require.NoError(t, err)
	assert.Equal(t, TypeStringUTF8, v.Type)
	assert.Equal(t, "hello", v.Interface())
}

func TestDecode_Buffer(t *testing.T) {
	v, err := Decode("0200000004deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", v.Interface())
}

func TestDecode_StandardPrincipal(t *testing.T) {
	// Version 22 with a zero hash160 is the mainnet burn address.
	v, err := Decode("0516" + strings.Repeat("00", 20))
	require.NoError(t, err)
	assert.Equal(t, TypePrincipalStandard, v.Type)
	assert.Equal(t, "SP000000000000000000002Q6VF78", v.Principal())
}

func TestDecode_ContractPrincipal(t *testing.T) {
	name := "pulse-core"
	payload := "0616a46ff88886c2ef9762d970b4d2c63678835bd39d" +
		"0a" + hex.EncodeToString([]byte(name))

	v, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, TypePrincipalContract, v.Type)
	assert.Equal(t, "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7.pulse-core", v.Principal())
}

func TestDecode_OptionalAndResponse(t *testing.T) {
	v, err := Decode("09")
	require.NoError(t, err)
	assert.Nil(t, v.Interface())

	// (ok (some u5))
	v, err = Decode("070a01" + strings.Repeat("00", 15) + "05")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v.Interface())
}

func TestDecode_List(t *testing.T) {
	// (list u1 u2)
	v, err := Decode("0b00000002" +
		"01" + strings.Repeat("00", 15) + "01" +
		"01" + strings.Repeat("00", 15) + "02")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{uint64(1), uint64(2)}, v.Interface())
}

func TestDecode_Tuple(t *testing.T) {
	// {event: "test", amount: u42}
	payload := "0c00000002" +
		"056576656e74" + "0d0000000474657374" +
		"06616d6f756e74" + "01" + strings.Repeat("00", 15) + "2a"

	v, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"event", "amount"}, v.TupleKeys)
	assert.Equal(t, map[string]interface{}{
		"event":  "test",
		"amount": uint64(42),
	}, v.Interface())
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"bad hex":        "zz",
		"unknown tag":    "ff",
		"truncated int":  "01000000",
		"truncated str":  "0d00000005abcd",
		"trailing bytes": "0300",
		"huge list":      "0bffffffff",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(input)
			require.Error(t, err)
			var decErr *DecodeError
			assert.ErrorAs(t, err, &decErr)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	inputs := []string{
		"01000000000000000000000000000f4240",
		"00" + strings.Repeat("ff", 16),
		"03",
		"04",
		"09",
		"0200000004deadbeef",
		"0516" + strings.Repeat("00", 20),
		"0616a46ff88886c2ef9762d970b4d2c63678835bd39d0a70756c73652d636f7265",
		"070a01" + strings.Repeat("00", 15) + "05",
		"0b0000000201" + strings.Repeat("00", 15) + "0101" + strings.Repeat("00", 15) + "02",
		"0c00000002056576656e740d000000047465737406616d6f756e7401" + strings.Repeat("00", 15) + "2a",
	}
	for _, input := range inputs {
		v, err := Decode(input)
		require.NoError(t, err, input)

		out, err := Encode(v)
		require.NoError(t, err, input)
		assert.Equal(t, input, hex.EncodeToString(out))
	}
}

func TestEncode_NegativeInt(t *testing.T) {
	out, err := Encode(Value{Type: TypeInt, Int: big.NewInt(-1)})
	require.NoError(t, err)
	assert.Equal(t, "00"+strings.Repeat("ff", 16), hex.EncodeToString(out))
}

func TestInterface_LargeUInt(t *testing.T) {
	big128 := "01" + "80" + strings.Repeat("00", 15)
	v, err := Decode(big128)
	require.NoError(t, err)
	// Does not fit uint64, falls back to a decimal string.
	assert.Equal(t, "170141183460469231731687303715884105728", v.Interface())
}

func TestDecodePrintEvent(t *testing.T) {
	// (ok {event: "test", amount: u42})
	payload := "07" + "0c00000002" +
		"056576656e74" + "0d0000000474657374" +
		"06616d6f756e74" + "01" + strings.Repeat("00", 15) + "2a"

	data, err := DecodePrintEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "test", data["event"])
	assert.Equal(t, uint64(42), data["amount"])
}

func TestDecodePrintEvent_NotTuple(t *testing.T) {
	_, err := DecodePrintEvent("03")
	require.Error(t, err)
}

package message

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTypes(t *testing.T) {
	tests := []struct {
		name          string
		fieldType     FieldType
		defaultValue  interface{}
		validValues   []interface{}
		invalidValues []interface{}
		table         []struct {
			value interface{}
			wire  []byte
		}
	}{
		{
			name:          "Uint32",
			fieldType:     Uint32Type{},
			defaultValue:  uint32(0),
			validValues:   []interface{}{0, 42, uint32(math.MaxUint32), int64(math.MaxUint32)},
			invalidValues: []interface{}{-1, int64(math.MaxUint32) + 1, 3.14, "1"},
			table: []struct {
				value interface{}
				wire  []byte
			}{
				{uint32(0x1122), []byte{0x22, 0x11, 0x00, 0x00}},
			},
		},
		{
			name:          "Uint8",
			fieldType:     Uint8Type{},
			defaultValue:  uint8(0),
			validValues:   []interface{}{0, 42, 255},
			invalidValues: []interface{}{-1, 256, 3.14},
			table: []struct {
				value interface{}
				wire  []byte
			}{
				{uint8(0x11), []byte{0x11}},
			},
		},
		{
			name:          "Bytes4",
			fieldType:     BytesType{Capacity: 4},
			defaultValue:  "",
			validValues:   []interface{}{"", "abcd", []byte("ab")},
			invalidValues: []interface{}{"abcde", 1, 3.14},
			table: []struct {
				value interface{}
				wire  []byte
			}{
				{"abcd", []byte("abcd")},
				{"ab", []byte("ab\x00\x00")},
				{"", []byte("\x00\x00\x00\x00")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.defaultValue, tt.fieldType.Default())

			for _, v := range tt.validValues {
				assert.NoError(t, tt.fieldType.Check(v), "value %v", v)
			}
			for _, v := range tt.invalidValues {
				err := tt.fieldType.Check(v)
				assert.ErrorIs(t, err, ErrInvalidValue, "value %v", v)
			}

			for _, row := range tt.table {
				wire, err := tt.fieldType.Serialize(row.value)
				require.NoError(t, err)
				assert.Equal(t, row.wire, wire)
				assert.Len(t, wire, tt.fieldType.Size())

				value, err := tt.fieldType.Deserialize(row.wire)
				require.NoError(t, err)
				assert.Equal(t, row.value, value)
			}
		})
	}
}

func TestUint32Deserialize_ShortData(t *testing.T) {
	_, err := Uint32Type{}.Deserialize([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestBytesSerialize_TooLong(t *testing.T) {
	_, err := BytesType{Capacity: 4}.Serialize("abcde")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestButtonFromChar(t *testing.T) {
	for c := '0'; c <= '9'; c++ {
		b, err := ButtonFromChar(c)
		require.NoError(t, err)
		assert.Equal(t, uint32(c-'0'), b)
	}

	b, err := ButtonFromChar('*')
	require.NoError(t, err)
	assert.Equal(t, uint32(14), b)

	b, err = ButtonFromChar('#')
	require.NoError(t, err)
	assert.Equal(t, uint32(15), b)

	_, err = ButtonFromChar('a')
	assert.ErrorIs(t, err, ErrUnknownButton)
}

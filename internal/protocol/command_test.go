package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func allCommands() []Command {
	return []Command{
		Drink(),
		Relax(),
		Toggle(),
		Get(),
		TestNotification(""),
		TestNotification("hello from the test suite"),
		TestNotification("ümlaut ☕ and emoji 🚀"),
	}
}

func TestCommand_RoundTrip(t *testing.T) {
	for _, cmd := range allCommands() {
		t.Run(cmd.String(), func(t *testing.T) {
			data, err := EncodeCommand(cmd)
			require.NoError(t, err)

			got, err := DecodeCommand(data)

			require.NoError(t, err)
			assert.Equal(t, cmd, got)
			assert.True(t, cmd == got, "decoded command must compare equal")
		})
	}
}

func TestEncodeCommand_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"nil", nil},
		{"zero coffee action", CoffeeCommand{}},
		{"unknown coffee action", CoffeeCommand{Action: 99}},
		{"unknown notification action", NotificationCommand{Action: 7}},
		{"invalid utf8 text", NotificationCommand{Action: NotificationTest, Text: "\xff\xfe"}},
		{"pointer command", &CoffeeCommand{Action: CoffeeDrink}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeCommand(tt.cmd)

			var se *SerializationError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, OpEncode, se.Op)
		})
	}
}

func embedded(num protowire.Number, inner []byte) []byte {
	b := protowire.AppendTag(nil, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func varintField(num protowire.Number, v uint64) []byte {
	b := protowire.AppendTag(nil, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func TestDecodeCommand_Malformed(t *testing.T) {
	drink, err := EncodeCommand(Drink())
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff, 0xff, 0xff}},
		{"truncated", drink[:len(drink)-1]},
		{"top-level varint", varintField(fieldCoffee, 1)},
		{"unknown family", embedded(9, varintField(fieldAction, 1))},
		{"two commands", append(append([]byte{}, drink...), drink...)},
		{"coffee without action", embedded(fieldCoffee, nil)},
		{"coffee unknown action", embedded(fieldCoffee, varintField(fieldAction, 5))},
		{"coffee huge action", embedded(fieldCoffee, varintField(fieldAction, 1<<40))},
		{"coffee extra field", embedded(fieldCoffee, append(varintField(fieldAction, 1), varintField(3, 1)...))},
		{"notification without action", embedded(fieldNotification, nil)},
		{"notification text as varint", embedded(fieldNotification, append(varintField(fieldAction, 1), varintField(fieldText, 1)...))},
		{
			"notification invalid utf8",
			embedded(fieldNotification, append(varintField(fieldAction, 1),
				protowire.AppendBytes(protowire.AppendTag(nil, fieldText, protowire.BytesType), []byte{0xc3})...)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			assert.NotPanics(t, func() {
				cmd, err = DecodeCommand(tt.data)
			})

			assert.Nil(t, cmd)
			var se *SerializationError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, OpDecode, se.Op)
			assert.True(t, IsSerializationError(err))
		})
	}
}

func TestParseCoffeeAction(t *testing.T) {
	tests := []struct {
		in      string
		want    CoffeeAction
		wantErr bool
	}{
		{"drink", CoffeeDrink, false},
		{"relax", CoffeeRelax, false},
		{"toggle", CoffeeToggle, false},
		{"get", CoffeeGet, false},
		{"espresso", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCoffeeAction(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func FuzzDecodeCommand(f *testing.F) {
	for _, cmd := range allCommands() {
		data, err := EncodeCommand(cmd)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(data)
	}
	f.Add([]byte{})
	f.Add([]byte{0x0a, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		cmd, err := DecodeCommand(data)
		if err != nil {
			return
		}
		again, err := EncodeCommand(cmd)
		if err != nil {
			t.Fatalf("decoded command %v does not re-encode: %v", cmd, err)
		}
		back, err := DecodeCommand(again)
		if err != nil || back != cmd {
			t.Fatalf("re-encoded command does not round trip: %v, %v", back, err)
		}
	})
}

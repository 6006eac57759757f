package protocol

import (
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Command is a single client request. The set of implementations is closed:
// CoffeeCommand and NotificationCommand.
type Command interface {
	fmt.Stringer
	command()
}

// CoffeeAction selects an idle-inhibit operation.
type CoffeeAction uint8

const (
	CoffeeDrink CoffeeAction = iota + 1
	CoffeeRelax
	CoffeeToggle
	CoffeeGet
)

var coffeeActionNames = map[CoffeeAction]string{
	CoffeeDrink:  "drink",
	CoffeeRelax:  "relax",
	CoffeeToggle: "toggle",
	CoffeeGet:    "get",
}

func (a CoffeeAction) String() string {
	if name, ok := coffeeActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("CoffeeAction(%d)", uint8(a))
}

// Valid reports whether a is a known action.
func (a CoffeeAction) Valid() bool {
	_, ok := coffeeActionNames[a]
	return ok
}

// ParseCoffeeAction converts a CLI name ("drink", "relax", "toggle", "get")
// into a CoffeeAction.
func ParseCoffeeAction(s string) (CoffeeAction, error) {
	for a, name := range coffeeActionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown coffee action %q", s)
}

// NotificationAction selects a notification operation.
type NotificationAction uint8

const (
	NotificationTest NotificationAction = iota + 1
)

func (a NotificationAction) String() string {
	if a == NotificationTest {
		return "test"
	}
	return fmt.Sprintf("NotificationAction(%d)", uint8(a))
}

// Valid reports whether a is a known action.
func (a NotificationAction) Valid() bool {
	return a == NotificationTest
}

// CoffeeCommand is the Coffee::* request family.
type CoffeeCommand struct {
	Action CoffeeAction
}

func (CoffeeCommand) command() {}

func (c CoffeeCommand) String() string {
	return "coffee " + c.Action.String()
}

// NotificationCommand is the Notification::* request family.
type NotificationCommand struct {
	Action NotificationAction
	Text   string
}

func (NotificationCommand) command() {}

func (c NotificationCommand) String() string {
	return "notification " + c.Action.String()
}

// Drink returns the Coffee::Drink command.
func Drink() Command { return CoffeeCommand{Action: CoffeeDrink} }

// Relax returns the Coffee::Relax command.
func Relax() Command { return CoffeeCommand{Action: CoffeeRelax} }

// Toggle returns the Coffee::Toggle command.
func Toggle() Command { return CoffeeCommand{Action: CoffeeToggle} }

// Get returns the Coffee::Get command.
func Get() Command { return CoffeeCommand{Action: CoffeeGet} }

// TestNotification returns the Notification::Test command.
func TestNotification(text string) Command {
	return NotificationCommand{Action: NotificationTest, Text: text}
}

// Field numbers of the command message. The top-level message is a oneof of
// the two families, each carried as an embedded message.
const (
	fieldCoffee       protowire.Number = 1
	fieldNotification protowire.Number = 2

	fieldAction protowire.Number = 1
	fieldText   protowire.Number = 2
)

// EncodeCommand serializes cmd into its compact binary form.
func EncodeCommand(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case CoffeeCommand:
		if !c.Action.Valid() {
			return nil, &SerializationError{Op: OpEncode, Err: fmt.Errorf("invalid coffee action %d", c.Action)}
		}
		var inner []byte
		inner = protowire.AppendTag(inner, fieldAction, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(c.Action))
		return appendEmbedded(nil, fieldCoffee, inner), nil

	case NotificationCommand:
		if !c.Action.Valid() {
			return nil, &SerializationError{Op: OpEncode, Err: fmt.Errorf("invalid notification action %d", c.Action)}
		}
		if !utf8.ValidString(c.Text) {
			return nil, &SerializationError{Op: OpEncode, Err: fmt.Errorf("notification text is not valid UTF-8")}
		}
		var inner []byte
		inner = protowire.AppendTag(inner, fieldAction, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(c.Action))
		if c.Text != "" {
			inner = protowire.AppendTag(inner, fieldText, protowire.BytesType)
			inner = protowire.AppendString(inner, c.Text)
		}
		return appendEmbedded(nil, fieldNotification, inner), nil

	case nil:
		return nil, &SerializationError{Op: OpEncode, Err: fmt.Errorf("nil command")}

	default:
		return nil, &SerializationError{Op: OpEncode, Err: fmt.Errorf("unsupported command type %T", cmd)}
	}
}

func appendEmbedded(b []byte, num protowire.Number, inner []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

// DecodeCommand parses the binary form produced by EncodeCommand.
// Unknown fields, unknown actions and truncated input are errors.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, decodeErr("command tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			return nil, decodeErr("field %d: unexpected wire type %d", num, typ)
		}
		inner, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, decodeErr("field %d: %v", num, protowire.ParseError(n))
		}
		data = data[n:]

		if cmd != nil {
			return nil, decodeErr("more than one command in message")
		}

		var err error
		switch num {
		case fieldCoffee:
			cmd, err = decodeCoffee(inner)
		case fieldNotification:
			cmd, err = decodeNotification(inner)
		default:
			return nil, decodeErr("unknown command field %d", num)
		}
		if err != nil {
			return nil, err
		}
	}

	if cmd == nil {
		return nil, decodeErr("empty command")
	}
	return cmd, nil
}

func decodeCoffee(data []byte) (Command, error) {
	var action CoffeeAction
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, decodeErr("coffee tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		if num != fieldAction || typ != protowire.VarintType {
			return nil, decodeErr("coffee: unexpected field %d (wire type %d)", num, typ)
		}
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, decodeErr("coffee action: %v", protowire.ParseError(n))
		}
		data = data[n:]
		if v > 0xff {
			return nil, decodeErr("coffee action %d out of range", v)
		}
		action = CoffeeAction(v)
	}

	if !action.Valid() {
		return nil, decodeErr("unknown coffee action %d", action)
	}
	return CoffeeCommand{Action: action}, nil
}

func decodeNotification(data []byte) (Command, error) {
	var c NotificationCommand
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, decodeErr("notification tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldAction && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, decodeErr("notification action: %v", protowire.ParseError(n))
			}
			data = data[n:]
			if v > 0xff {
				return nil, decodeErr("notification action %d out of range", v)
			}
			c.Action = NotificationAction(v)

		case num == fieldText && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, decodeErr("notification text: %v", protowire.ParseError(n))
			}
			data = data[n:]
			if !utf8.ValidString(v) {
				return nil, decodeErr("notification text is not valid UTF-8")
			}
			c.Text = v

		default:
			return nil, decodeErr("notification: unexpected field %d (wire type %d)", num, typ)
		}
	}

	if !c.Action.Valid() {
		return nil, decodeErr("unknown notification action %d", c.Action)
	}
	return c, nil
}

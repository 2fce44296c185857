// Package boxon is a declarative, schema-driven binary codec: it encodes
// values to, and decodes values from, bit-packed wire formats using a
// description attached to user types via schema.Builder.
//
// A Core is assembled once from a Builder and then shared by value across
// any number of Parse/Compose/Describe calls and goroutines — it holds no
// mutable state beyond what codec.Registry and eval.Evaluator themselves
// guarantee are safe for concurrent read-only use. Construct one with:
//
//	core := boxon.NewBuilder().Build()
//	data, err := core.Compose(reflect.TypeOf(Message{}), &msg)
//	out, err := core.Parse(reflect.TypeOf(Message{}), data)
//
// User types participate by implementing schema.Describable:
//
//	func (m *Message) DescribeSchema(b *schema.Builder) {
//		b.Integer("Length", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"})
//	}
package boxon

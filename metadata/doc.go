// Package metadata provides typed record attributes and attribute filtering for crossval.
//
// # Value Types
//
// Attribute values can be:
//
//   - String: metadata.String("M")
//   - Int: metadata.Int(3)
//   - Float: metadata.Float(0.5)
//   - Bool: metadata.Bool(true)
//   - Array: metadata.Strings([]string{"a", "b"})
//   - Point: metadata.Pt(20, 40)
//
// Example:
//
//	meta := metadata.Document{
//	    "Subject":   metadata.String("s042"),
//	    "Partition": metadata.Int(2),
//	    "Age":       metadata.Pt(20, 40),
//	}
//
// # Typed Access
//
// Documents expose lenient getters that convert between kinds the same way
// the gating distances expect:
//
//	meta.GetString("Partition", "")  // "2"
//	meta.GetInt("Partition", 0)      // 2
//	meta.GetPoint("Age")             // (20, 40), true
//
// # Filters
//
// Filter and FilterSet evaluate simple predicates (eq, ne, gt, gte, lt, lte,
// in, contains) against a Document. FilterSet uses AND logic.
//
//	fs := metadata.NewFilterSet(
//	    metadata.Filter{Key: "Gender", Operator: metadata.OpIn, Value: metadata.Strings([]string{"M"})},
//	)
//
// # Position Sets
//
// PositionSet is a Roaring Bitmap of dataset positions. It deduplicates
// positions and iterates them in descending order, which is the order
// positional removal needs.
package metadata

// Package record defines the data units crossval trains on and evaluates.
//
// # Data Types
//
//   - Record: typed attributes (metadata.Document) plus a feature vector
//   - Dataset: an ordered sequence of records
//
// Two attributes have special meaning:
//
//   - "Subject": identity of the record; leave-one-out selection groups by it
//   - "Partition": cross-validation partition index, 0 when absent
//
// # Record Builder
//
// Use the fluent API to construct records:
//
//	rec := record.New(vec).
//	    With(record.KeySubject, metadata.String("s042")).
//	    With(record.KeyPartition, metadata.Int(1)).
//	    Build()
//
// # JSONL
//
// Datasets can be read from and written to JSON Lines, one record per line:
//
//	{"metadata":{"Subject":"s042","Partition":1},"vector":[0.1,0.2]}
package record

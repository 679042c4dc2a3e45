// Package distance provides gating distances: comparisons that decide
// whether two records may be matched at all, before any similarity scoring.
//
// Every gate returns Accept (0) or Reject (-math.MaxFloat32).
//
// # Supported Gates
//
//   - PartitionGate ("CrossValidate"): records must share a partition
//   - FilterGate ("Filter"): the target's attributes must be in an allowlist
//   - MetadataGate ("Metadata"): target attributes must match query values or ranges
//
// # Usage
//
//	gate := distance.Chain(
//	    distance.NewPartitionGate(),
//	    distance.NewFilterGate(map[string][]string{"Gender": {"M"}}),
//	)
//	if gate.Compare(target, query) == distance.Reject {
//	    // never a match
//	}
package distance

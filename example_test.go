package crossval_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/crossval"
	"github.com/hupe1980/crossval/blobstore"
	"github.com/hupe1980/crossval/distance"
	"github.com/hupe1980/crossval/persistence"
	"github.com/hupe1980/crossval/record"
)

func dataset() record.Dataset {
	var ds record.Dataset
	for i := range 6 {
		ds = append(ds, record.New([]float32{float32(i), 1}).
			Subject(fmt.Sprintf("s%d", i)).
			Partition(i % 3).
			Build())
	}
	return ds
}

// Example_train trains one Center model per partition and projects a record
// with the model that never saw its partition.
func Example_train() {
	ctx := context.Background()
	ds := dataset()

	tr := crossval.New(crossval.WithDescription("Center"))
	if err := tr.Train(ctx, ds); err != nil {
		log.Fatal(err)
	}

	var out record.Record
	if err := tr.Project(ds[0], &out); err != nil {
		log.Fatal(err)
	}

	fmt.Println(tr.Len(), out.Vector)
	// Output: 3 [-3 0]
}

// Example_saveOpen persists an ensemble to a blob store and restores it.
func Example_saveOpen() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	tr := crossval.New(
		crossval.WithDescription("Scale"),
		crossval.WithCompression(persistence.CompressionZSTD),
	)
	if err := tr.Train(ctx, dataset()); err != nil {
		log.Fatal(err)
	}
	if err := tr.Save(ctx, store, "scale.xval"); err != nil {
		log.Fatal(err)
	}

	restored := crossval.New()
	if err := restored.Open(ctx, store, "scale.xval"); err != nil {
		log.Fatal(err)
	}

	fmt.Println(restored.Description(), restored.Len())
	// Output: Scale 3
}

// Example_projectOutOfRange shows the error for a partition without a model.
func Example_projectOutOfRange() {
	tr := crossval.New()
	_ = tr.Train(context.Background(), dataset())

	var out record.Record
	err := tr.Project(record.New(nil).Partition(7).Build(), &out)
	fmt.Println(errors.Is(err, crossval.ErrPartitionRange))
	// Output: true
}

// Example_gate keeps probe and gallery records of different partitions apart.
func Example_gate() {
	gate, err := distance.New("CrossValidate", distance.Config{})
	if err != nil {
		log.Fatal(err)
	}

	ds := dataset()
	fmt.Println(gate.Compare(ds[0], ds[3]) == distance.Accept)
	fmt.Println(gate.Compare(ds[0], ds[1]) == distance.Reject)
	// Output:
	// true
	// true
}

// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible services (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.New("localhost:9000", "minioadmin", "minioadmin", "ensembles",
//	    minio.WithPrefix("runs/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = trainer.Save(ctx, store, "face-recognition.xval")
package minio

// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("ensembles/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = trainer.Save(ctx, store, "face-recognition.xval")
//
// # Features
//
//   - Range reads for streaming downloads
//   - Multipart uploads for large ensembles
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3

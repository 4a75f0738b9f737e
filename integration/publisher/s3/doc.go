// Package s3 publishes http-01 challenge responses to an S3 bucket that
// serves the domain's static site. Objects are written as text/plain under
// .well-known/acme-challenge/ and removed once the order settles. Works with
// AWS S3 and S3-compatible services such as MinIO via a custom endpoint.
package s3

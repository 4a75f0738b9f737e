// Package azureblob publishes http-01 challenge responses to Azure Blob
// Storage. The target container backs the domain's static site, so a blob
// written under .well-known/acme-challenge/ is immediately reachable by the
// CA's validation probes. Blobs are uploaded as text/plain and removed once
// the order settles.
package azureblob

// Package azure selects and verifies the cloud identity a renewal run acts
// as. Credential selection follows the usual precedence: an explicit service
// principal when a client secret is configured, a managed identity when only
// a client ID is given, and the default credential chain otherwise.
package azure

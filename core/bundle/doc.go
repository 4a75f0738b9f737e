// Package bundle exports issued certificates as password-protected PFX
// (PKCS#12) containers, the format cloud gateways accept when a certificate
// slot is replaced. Input is the PEM chain and key exactly as the issuance
// flow produces them; nothing is written to disk.
package bundle

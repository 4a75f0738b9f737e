// Package appgateway installs issued certificates on an Azure Application
// Gateway by replacing the data and password of an existing SSL certificate
// slot. The gateway document is read, modified in place and written back
// through the ARM long-running update, so listeners referencing the slot
// serve the new certificate without any listener reconfiguration.
package appgateway

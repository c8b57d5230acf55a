// Package services holds the shared error taxonomy for external tool
// invocations plus clients for auxiliary executables (metadata translation).
package services

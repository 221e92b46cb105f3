// Package environment names the deployment environments the service runs in
// and normalises the short aliases operators tend to type ("prod", "stage",
// "dev").
package environment

// Package rules contains the built-in project-wide lint rules.
//
// Each rule registers itself from init(); importing this package (usually
// as a blank import from a command) makes the full set available:
//
//	PD01  project.unreachable     document unreachable from the index
//	PD02  project.duplicate-slug  two documents publish to one URL
//	PD03  assets.case-divergence  asset referenced under several casings
//	IM02  images.orphaned-asset   asset no document references
package rules

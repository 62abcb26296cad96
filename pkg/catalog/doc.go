// Package catalog defines the domain model for the parts catalog: parts,
// part images, technical guides, and the confidence-scored associations
// between parts and guides. It also defines the sentinel errors shared by
// the storage, search, and API layers.
package catalog

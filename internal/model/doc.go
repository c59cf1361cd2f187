// Package model defines the domain types shared across the pipeline.
//
// Types here are plain data: the discovery and value packages depend only
// on these shapes, never on the transport or cache that produced them.
package model
